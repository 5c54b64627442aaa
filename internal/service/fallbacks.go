package service

import "fmt"

// Детерминированные fallback-нагрузки. Игровые эндпоинты предпочитают
// продолжаемую заглушку жесткой ошибке: игрок всегда получает историю
// и варианты, даже если модель недоступна или ответ нечитаем.

const (
	startTransportFallbackStory = "There was an error connecting to the AI service. Please try again."
	startParseFallbackStory     = "There was an issue generating the story. Please try again."
	choiceParseFallbackStory    = "There was an issue generating the next part of the story. The AI's response couldn't be parsed correctly."
)

var (
	// Выборы для заглушки старта при недоступной модели.
	startTransportFallbackChoices = map[Mode][]string{
		ModeMoral: {
			"Make the virtuous choice",
			"Make a good choice",
			"Make a selfish choice",
			"Make a dark choice",
		},
		ModeClassic: {
			"Try again",
			"Exit",
		},
	}

	// Выборы для заглушки старта при нечитаемом ответе.
	startParseFallbackChoices = map[Mode][]string{
		ModeMoral: {
			"Retry",
			"Exit",
			"Start a new story",
			"Try a different theme",
		},
		ModeClassic: {
			"Retry",
			"Exit",
		},
	}

	// Подстановка прошлых выборов, когда последний ответ ассистента
	// не распарсился: индекс выбора не должен выйти за границы списка.
	priorTurnFallbackChoices = map[Mode][]string{
		ModeMoral: {
			"Continue virtuously",
			"Take a good path",
			"Choose selfishly",
			"Embrace darkness",
		},
		ModeClassic: {
			"Continue forward",
			"Turn back",
		},
	}

	// Выборы для заглушки хода при нечитаемом продолжении.
	choiceParseFallbackChoices = map[Mode][]string{
		ModeMoral: {
			"Try again",
			"Go back",
			"Start over",
			"End game",
		},
		ModeClassic: {
			"Try again",
			"End game",
		},
	}

	// Фиксированный моральный спектр для /moral_choice.
	moralChoicesFallback = []string{
		"Do the selfless thing and help others",
		"Take a balanced approach that's mostly good",
		"Look out for your own interests first",
		"Take advantage of the situation for your gain",
	}
)

const summaryGenericFallback = "Chapter in your ongoing adventure..."

// summaryFallback возвращает шаблонную сводку из входных данных.
func summaryFallback(choice string) string {
	if choice != "" {
		return fmt.Sprintf("You chose %s as the world unfolded around you...", choice)
	}
	return summaryGenericFallback
}
