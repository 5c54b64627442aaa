package model

// Роли сообщений в диалоге с моделью.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message представляет одно сообщение в истории диалога.
// Своя структура вместо типов из библиотеки API, чтобы ядро игры
// не зависело от конкретного провайдера.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StoryTurn представляет один ход истории: текст и варианты выбора.
// Не сохраняется в сессии, живет только в рамках одного запроса.
type StoryTurn struct {
	Story   string   `json:"story"`
	Choices []string `json:"choices"`
}

// Метки морального выравнивания, вычисляются из накопленного moral_score.
const (
	AlignmentGood       = "good"
	AlignmentMostlyGood = "mostly_good"
	AlignmentNeutral    = "neutral"
	AlignmentMostlyEvil = "mostly_evil"
	AlignmentEvil       = "evil"
)

// MoralDescriptors описывает характер выбора по его рангу (1 = самый добрый).
var MoralDescriptors = [4]string{"virtuous", "good", "selfish", "dark"}

// AlignmentForScore возвращает метку выравнивания по накопленному счету.
// Пороги: >3 good, >0 mostly_good, 0 neutral, >-3 mostly_evil, иначе evil.
func AlignmentForScore(score int) string {
	switch {
	case score > 3:
		return AlignmentGood
	case score > 0:
		return AlignmentMostlyGood
	case score == 0:
		return AlignmentNeutral
	case score > -3:
		return AlignmentMostlyEvil
	default:
		return AlignmentEvil
	}
}

// MoralDelta возвращает изменение счета для выбора с данным рангом.
// Ранг 1 -> +2, 2 -> +1, 3 -> -1, 4 -> -2. Ранги больше 4 приравниваются к 4.
func MoralDelta(rank int) int {
	deltas := [4]int{2, 1, -1, -2}
	if rank < 1 {
		rank = 1
	}
	if rank > 4 {
		rank = 4
	}
	return deltas[rank-1]
}

// DescriptorForRank возвращает описание морального характера выбора.
func DescriptorForRank(rank int) string {
	idx := rank - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(MoralDescriptors)-1 {
		idx = len(MoralDescriptors) - 1
	}
	return MoralDescriptors[idx]
}
