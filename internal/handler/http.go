package handler

import (
	"errors"
	"net/http"

	"moral-game-server/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// GameHandler обрабатывает HTTP запросы игрового API.
type GameHandler struct {
	service *service.GameService
	logger  *zap.Logger
	metrics prometheus.Gatherer
}

// NewGameHandler создает новый GameHandler.
func NewGameHandler(s *service.GameService, logger *zap.Logger, metrics prometheus.Gatherer) *GameHandler {
	return &GameHandler{
		service: s,
		logger:  logger.Named("GameHandler"),
		metrics: metrics,
	}
}

// RegisterRoutes регистрирует маршруты игрового API.
func (h *GameHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/start", h.startGame)
	e.POST("/choice", h.makeChoice)
	e.POST("/end", h.endGame)
	e.POST("/summarize", h.summarize)
	e.POST("/moral_choice", h.moralChoice)

	e.GET("/health", h.health)
	if h.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(h.metrics, promhttp.HandlerOpts{})))
	}
}

// startGame начинает новую игру.
// Сбой модели или извлечения — это 200 с заглушкой без session_id,
// жесткая 500 остается только для неожиданных внутренних ошибок.
func (h *GameHandler) startGame(c echo.Context) error {
	result, err := h.service.Start(c.Request().Context())
	if err != nil {
		h.logger.Error("Error starting game", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, APIError{Error: "Error starting game: " + err.Error()})
	}

	return c.JSON(http.StatusOK, StartResponse{
		SessionID: result.SessionID,
		Story:     result.Story,
		Choices:   result.Choices,
	})
}

// makeChoice обрабатывает ход игрока.
func (h *GameHandler) makeChoice(c echo.Context) error {
	var req ChoiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Error: "invalid request body"})
	}
	if req.SessionID == "" || req.Choice == nil {
		return c.JSON(http.StatusBadRequest, APIError{Error: "Missing choice or session_id"})
	}

	result, err := h.service.Choice(c.Request().Context(), req.SessionID, *req.Choice)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTurnNotParsed):
			// Ошибка парсинга отдается вместе с продолжаемой заглушкой.
			return c.JSON(http.StatusBadRequest, ChoiceErrorResponse{
				Error:   err.Error(),
				Story:   result.Story,
				Choices: result.Choices,
			})
		case errors.Is(err, service.ErrInvalidChoice),
			errors.Is(err, service.ErrSessionNotFound),
			errors.Is(err, service.ErrCompletionFailed),
			errors.Is(err, service.ErrStoryComplete):
			return c.JSON(http.StatusBadRequest, APIError{Error: err.Error()})
		default:
			h.logger.Error("Error processing choice", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, APIError{Error: "Error processing choice: " + err.Error()})
		}
	}

	return c.JSON(http.StatusOK, ChoiceResponse{
		SessionID:      result.SessionID,
		Story:          result.Story,
		Choices:        result.Choices,
		MoralAlignment: result.MoralAlignment,
	})
}

// endGame завершает игровую сессию.
func (h *GameHandler) endGame(c echo.Context) error {
	var req EndRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Error: "invalid request body"})
	}
	if req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, APIError{Error: "Missing session_id"})
	}

	if err := h.service.End(req.SessionID); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return c.JSON(http.StatusBadRequest, APIError{Error: err.Error()})
		}
		h.logger.Error("Error ending game", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, APIError{Error: "Error ending game: " + err.Error()})
	}

	return c.JSON(http.StatusOK, EndResponse{Message: "Game ended successfully"})
}

// summarize строит краткий пересказ фрагмента истории.
// Эндпоинт никогда не падает: любой сбой дает 200 с шаблонной сводкой.
func (h *GameHandler) summarize(c echo.Context) error {
	var req SummarizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Error: "invalid request body"})
	}
	if req.Story == "" {
		return c.JSON(http.StatusBadRequest, APIError{Error: "Missing story content"})
	}

	summary := h.service.Summarize(c.Request().Context(), req.Story, req.Choice)
	return c.JSON(http.StatusOK, SummarizeResponse{Summary: summary})
}

// moralChoice генерирует 4 выбора по моральному спектру.
// Как и summarize, всегда отвечает 200 с пригодной нагрузкой.
func (h *GameHandler) moralChoice(c echo.Context) error {
	var req MoralChoiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Error: "invalid request body"})
	}
	if req.StoryContext == "" {
		return c.JSON(http.StatusBadRequest, APIError{Error: "Missing story context"})
	}

	choices := h.service.MoralChoices(c.Request().Context(), req.StoryContext, req.CurrentSituation)
	return c.JSON(http.StatusOK, MoralChoiceResponse{Choices: choices})
}

// health — проба живости сервиса.
func (h *GameHandler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
