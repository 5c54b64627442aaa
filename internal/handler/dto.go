package handler

// DTO игрового API. Формат полей (snake_case) — часть стабильного
// контракта с клиентом.

// StartResponse — ответ /start. SessionID пуст на fallback-пути и
// тогда не сериализуется: сессия при сбое не создается.
type StartResponse struct {
	SessionID string   `json:"session_id,omitempty"`
	Story     string   `json:"story"`
	Choices   []string `json:"choices"`
}

// ChoiceRequest — тело запроса /choice.
type ChoiceRequest struct {
	SessionID string `json:"session_id"`
	Choice    *int   `json:"choice"` // указатель, чтобы отличить 0 от отсутствия поля
}

// ChoiceResponse — ответ /choice.
type ChoiceResponse struct {
	SessionID      string   `json:"session_id"`
	Story          string   `json:"story"`
	Choices        []string `json:"choices"`
	MoralAlignment string   `json:"moral_alignment,omitempty"`
}

// ChoiceErrorResponse — ответ /choice при нечитаемом продолжении:
// ошибка вместе с продолжаемой заглушкой.
type ChoiceErrorResponse struct {
	Error   string   `json:"error"`
	Story   string   `json:"story"`
	Choices []string `json:"choices"`
}

// EndRequest — тело запроса /end.
type EndRequest struct {
	SessionID string `json:"session_id"`
}

// EndResponse — ответ /end.
type EndResponse struct {
	Message string `json:"message"`
}

// SummarizeRequest — тело запроса /summarize.
type SummarizeRequest struct {
	Story  string `json:"story"`
	Choice string `json:"choice,omitempty"`
}

// SummarizeResponse — ответ /summarize.
type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// MoralChoiceRequest — тело запроса /moral_choice.
type MoralChoiceRequest struct {
	StoryContext     string `json:"story_context"`
	CurrentSituation string `json:"current_situation,omitempty"`
}

// MoralChoiceResponse — ответ /moral_choice.
type MoralChoiceResponse struct {
	Choices []string `json:"choices"`
}

// APIError представляет стандартизированный ответ об ошибке.
type APIError struct {
	Error string `json:"error"`
}
