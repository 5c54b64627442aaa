package service

import (
	"context"
	"errors"
	"fmt"

	"moral-game-server/internal/extractor"
	"moral-game-server/internal/metrics"
	"moral-game-server/internal/model"
	"moral-game-server/internal/session"

	"go.uber.org/zap"
)

// Mode определяет режим игры: мораль с 4 выборами или классика с 2.
type Mode string

const (
	ModeMoral   Mode = "moral"
	ModeClassic Mode = "classic"
)

// ChoiceCount возвращает число выборов на ход для режима.
func (m Mode) ChoiceCount() int {
	if m == ModeClassic {
		return 2
	}
	return 4
}

// CompletionClient — контракт удаленного completion-эндпоинта.
// Сетевые заботы (таймаут, авторизация) целиком на стороне реализации.
type CompletionClient interface {
	ChatCompletion(ctx context.Context, messages []model.Message) (string, error)
}

// StartResult — результат запуска игры. SessionID пуст на fallback-пути:
// сессия при сбое не создается.
type StartResult struct {
	SessionID string
	Story     string
	Choices   []string
}

// ChoiceResult — результат хода. MoralAlignment заполняется только
// в моральном режиме.
type ChoiceResult struct {
	SessionID      string
	Story          string
	Choices        []string
	MoralAlignment string
}

// GameService оркестрирует клиент модели, извлечение и хранилище сессий.
type GameService struct {
	client   CompletionClient
	store    *session.Store
	metrics  *metrics.Metrics
	logger   *zap.Logger
	mode     Mode
	maxTurns int // 0 — без ограничения
}

// NewGameService создает игровой сервис.
func NewGameService(client CompletionClient, store *session.Store, m *metrics.Metrics, logger *zap.Logger, mode Mode, maxTurns int) *GameService {
	if mode != ModeClassic {
		mode = ModeMoral
	}
	return &GameService{
		client:   client,
		store:    store,
		metrics:  m,
		logger:   logger.Named("GameService"),
		mode:     mode,
		maxTurns: maxTurns,
	}
}

// Mode возвращает активный режим игры.
func (g *GameService) Mode() Mode {
	return g.mode
}

// observeExtraction фиксирует в метриках, какой уровень каскада сработал.
func (g *GameService) observeExtraction(res *extractor.Result) {
	tier := extractor.TierNone
	if res != nil {
		tier = res.Tier
	}
	g.metrics.ExtractionTier.WithLabelValues(tier.String()).Inc()
}

// Start запускает новую игру. На сбое транспорта или извлечения возвращает
// заглушку без session_id — сессия в этом случае не создается.
func (g *GameService) Start(ctx context.Context) (*StartResult, error) {
	messages := []model.Message{
		{Role: model.RoleSystem, Content: systemPromptFor(g.mode)},
		{Role: model.RoleUser, Content: openingPrompt(g.mode)},
	}

	raw, err := g.client.ChatCompletion(ctx, messages)
	if err != nil {
		g.logger.Warn("Completion failed on start, serving fallback", zap.Error(err))
		g.metrics.CompletionErrors.Inc()
		g.metrics.FallbacksServed.WithLabelValues("start").Inc()
		return &StartResult{
			Story:   startTransportFallbackStory,
			Choices: startTransportFallbackChoices[g.mode],
		}, nil
	}

	res := extractor.Extract(raw)
	g.observeExtraction(res)
	story, storyOK := res.Story()
	choices, choicesOK := res.Choices()
	if !storyOK || !choicesOK {
		g.logger.Warn("Could not extract story from start response",
			zap.String("tier", tierName(res)),
			zap.Int("response_len", len(raw)))
		g.metrics.FallbacksServed.WithLabelValues("start").Inc()
		return &StartResult{
			Story:   startParseFallbackStory,
			Choices: startParseFallbackChoices[g.mode],
		}, nil
	}

	s := g.store.Create(append(messages, model.Message{
		Role:    model.RoleAssistant,
		Content: raw,
	}))
	// Id еще не отдан клиенту, конкурентных обращений к сессии нет.
	s.StoryContext = story

	g.metrics.GamesStarted.Inc()
	g.logger.Info("Game started", zap.String("session_id", s.ID), zap.String("mode", string(g.mode)))

	return &StartResult{
		SessionID: s.ID,
		Story:     story,
		Choices:   choices,
	}, nil
}

// Choice обрабатывает ход игрока. Валидация (диапазон номера, существование
// сессии, лимит ходов) выполняется до обращения к модели. Весь ход идет под
// мьютексом сессии: параллельные ходы по одному id сериализуются, по разным —
// нет, т.к. удаленный вызов не держит общих блокировок.
func (g *GameService) Choice(ctx context.Context, sessionID string, choice int) (*ChoiceResult, error) {
	if choice < 1 || choice > g.mode.ChoiceCount() {
		return nil, fmt.Errorf("%w: %d, valid range: 1-%d", ErrInvalidChoice, choice, g.mode.ChoiceCount())
	}

	var result *ChoiceResult
	var turnErr error

	err := g.store.WithSession(sessionID, func(s *session.Session) error {
		result, turnErr = g.playTurn(ctx, s, choice)
		return nil
	})
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return result, turnErr
}

// playTurn выполняет один ход под мьютексом сессии. При сбое транспорта
// или извлечения откатывает добавленное сообщение игрока и изменение
// счета: неудавшийся ход не оставляет следов в сессии.
func (g *GameService) playTurn(ctx context.Context, s *session.Session, choice int) (*ChoiceResult, error) {
	if g.maxTurns > 0 && s.Turns >= g.maxTurns {
		return nil, ErrStoryComplete
	}

	chosenOption, err := g.resolveChosenOption(s, choice)
	if err != nil {
		return nil, err
	}

	descriptor := ""
	delta := 0
	if g.mode == ModeMoral {
		descriptor = model.DescriptorForRank(choice)
		delta = model.MoralDelta(choice)
		s.MoralScore += delta
	}

	s.Messages = append(s.Messages, model.Message{
		Role:    model.RoleUser,
		Content: continuationPrompt(g.mode, s.StoryContext, chosenOption, descriptor),
	})

	// Откат: неудавшийся ход не должен оставить в истории пользовательский
	// ход без ответа ассистента и не должен сдвинуть счет.
	rollback := func() {
		s.Messages = s.Messages[:len(s.Messages)-1]
		s.MoralScore -= delta
	}

	// Единственное место, где полная история уходит в модель:
	// так модель сохраняет память о предыдущих ходах.
	raw, err := g.client.ChatCompletion(ctx, s.Messages)
	if err != nil {
		rollback()
		g.logger.Warn("Completion failed on choice",
			zap.String("session_id", s.ID), zap.Error(err))
		g.metrics.CompletionErrors.Inc()
		return nil, ErrCompletionFailed
	}

	res := extractor.Extract(raw)
	g.observeExtraction(res)
	story, storyOK := res.Story()
	choices, choicesOK := res.Choices()
	if !storyOK || !choicesOK {
		rollback()
		g.logger.Warn("Could not extract story from choice response",
			zap.String("session_id", s.ID),
			zap.String("tier", tierName(res)))
		g.metrics.FallbacksServed.WithLabelValues("choice").Inc()
		return &ChoiceResult{
			SessionID: s.ID,
			Story:     choiceParseFallbackStory,
			Choices:   choiceParseFallbackChoices[g.mode],
		}, ErrTurnNotParsed
	}

	s.Messages = append(s.Messages, model.Message{Role: model.RoleAssistant, Content: raw})
	s.AppendStory(story)
	s.Turns++

	g.metrics.TurnsPlayed.Inc()

	result := &ChoiceResult{
		SessionID: s.ID,
		Story:     story,
		Choices:   choices,
	}
	if g.mode == ModeMoral {
		result.MoralAlignment = model.AlignmentForScore(s.MoralScore)
	}
	return result, nil
}

// resolveChosenOption восстанавливает список выборов прошлого хода,
// повторно извлекая последний ответ ассистента. Если ответ нечитаем,
// используется фиксированный список; индекс при этом прижимается к его
// границе, чтобы номер выбора никогда не вышел за пределы.
func (g *GameService) resolveChosenOption(s *session.Session, choice int) (string, error) {
	last, ok := s.LastAssistantContent()
	if ok {
		if res := extractor.Extract(last); res != nil {
			if choices, ok := res.Choices(); ok {
				if choice > len(choices) {
					return "", fmt.Errorf("%w: %d, valid range: 1-%d", ErrInvalidChoice, choice, len(choices))
				}
				return choices[choice-1], nil
			}
		}
	}

	g.logger.Warn("Failed to parse previous assistant response, using fallback choices",
		zap.String("session_id", s.ID))
	fallback := priorTurnFallbackChoices[g.mode]
	idx := choice - 1
	if idx > len(fallback)-1 {
		idx = len(fallback) - 1
	}
	return fallback[idx], nil
}

// End завершает сессию и удаляет ее из хранилища.
func (g *GameService) End(sessionID string) error {
	if err := g.store.Delete(sessionID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	g.logger.Info("Game ended", zap.String("session_id", sessionID))
	return nil
}

// Summarize строит краткий поэтический пересказ фрагмента истории.
// Сессия не нужна. Никогда не возвращает ошибку: лестница fallback'ов
// заканчивается шаблонной строкой из входных данных.
func (g *GameService) Summarize(ctx context.Context, story, choice string) string {
	messages := []model.Message{
		{Role: model.RoleSystem, Content: summarySystemPrompt},
		{Role: model.RoleUser, Content: summaryPrompt(story, choice)},
	}

	raw, err := g.client.ChatCompletion(ctx, messages)
	if err != nil {
		g.logger.Warn("Completion failed on summarize, serving fallback", zap.Error(err))
		g.metrics.CompletionErrors.Inc()
		g.metrics.FallbacksServed.WithLabelValues("summarize").Inc()
		return summaryFallback(choice)
	}

	// Лестница: извлеченное поле summary -> голая подстрока "summary": "..."
	// -> очищенный текст ответа -> шаблон из входных данных.
	res := extractor.Extract(raw)
	g.observeExtraction(res)
	if summary, ok := res.Summary(); ok {
		return summary
	}
	if summary, ok := extractor.ExtractSummaryText(raw); ok {
		return summary
	}
	if clean := extractor.StripJSONSyntax(raw); clean != "" {
		if len(clean) > 100 {
			return clean[:100] + "..."
		}
		return clean
	}

	g.metrics.FallbacksServed.WithLabelValues("summarize").Inc()
	return summaryFallback(choice)
}

// MoralChoices генерирует 4 выбора по моральному спектру для текущей
// ситуации. Сессия не нужна. Принимается только массив ровно из 4 строк,
// иначе возвращается фиксированный спектр.
func (g *GameService) MoralChoices(ctx context.Context, storyContext, currentSituation string) []string {
	messages := []model.Message{
		{Role: model.RoleSystem, Content: moralChoicesSystemPrompt},
		{Role: model.RoleUser, Content: moralChoicesPrompt(storyContext, currentSituation)},
	}

	raw, err := g.client.ChatCompletion(ctx, messages)
	if err != nil {
		g.logger.Warn("Completion failed on moral choices, serving fallback", zap.Error(err))
		g.metrics.CompletionErrors.Inc()
		g.metrics.FallbacksServed.WithLabelValues("moral_choice").Inc()
		return moralChoicesFallback
	}

	res := extractor.Extract(raw)
	g.observeExtraction(res)
	if choices, ok := res.Choices(); ok && len(choices) == 4 {
		return choices
	}

	g.metrics.FallbacksServed.WithLabelValues("moral_choice").Inc()
	return moralChoicesFallback
}

func tierName(res *extractor.Result) string {
	if res == nil {
		return extractor.TierNone.String()
	}
	return res.Tier.String()
}
