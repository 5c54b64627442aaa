package deepseek

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"moral-game-server/internal/model"

	"github.com/sashabaranov/go-openai"
)

const defaultTimeout = 60 * time.Second

// Config содержит настройки клиента DeepSeek API.
type Config struct {
	APIKey      string
	BaseURL     string // OpenAI-совместимый endpoint, например https://api.deepseek.com/v1
	Model       string // имя модели, например deepseek-chat
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Client — клиент для обращения к DeepSeek через OpenAI-совместимый API.
type Client struct {
	openaiClient *openai.Client
	modelName    string
	temperature  float32
	maxTokens    int
}

// NewClient создает новый экземпляр клиента.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("deepseek: api key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	// Таймаут на HTTP клиенте: зависший удаленный вызов равносилен
	// отсутствию ответа, повторных попыток не делаем.
	config.HTTPClient = &http.Client{
		Timeout: timeout,
	}

	return &Client{
		openaiClient: openai.NewClientWithConfig(config),
		modelName:    cfg.Model,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
	}, nil
}

// ChatCompletion отправляет историю диалога и возвращает текст ответа модели.
func (c *Client) ChatCompletion(ctx context.Context, messages []model.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages cannot be empty")
	}

	request := openai.ChatCompletionRequest{
		Model:       c.modelName,
		Messages:    convertMessages(messages),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	resp, err := c.openaiClient.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("received empty response from API")
	}

	return resp.Choices[0].Message.Content, nil
}

// convertMessages переводит доменные сообщения в формат библиотеки.
func convertMessages(messages []model.Message) []openai.ChatCompletionMessage {
	converted := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		converted[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}
	return converted
}
