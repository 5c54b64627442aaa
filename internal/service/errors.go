package service

import "errors"

var (
	// ErrInvalidChoice — номер выбора вне допустимого диапазона для режима игры.
	ErrInvalidChoice = errors.New("invalid choice number")
	// ErrSessionNotFound — сессия не существует или уже завершена.
	ErrSessionNotFound = errors.New("invalid or expired session")
	// ErrCompletionFailed — удаленный вызов модели не дал ответа.
	ErrCompletionFailed = errors.New("failed to generate response from AI service")
	// ErrTurnNotParsed — ответ модели получен, но структуру извлечь не удалось.
	// Вместе с ошибкой возвращается fallback-нагрузка для игрока.
	ErrTurnNotParsed = errors.New("failed to parse AI response")
	// ErrStoryComplete — достигнут лимит ходов, история завершена.
	ErrStoryComplete = errors.New("story has reached its maximum length")
)
