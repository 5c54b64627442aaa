package config

import (
	"fmt"
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию игрового сервера.
type Config struct {
	// Настройки сервера
	Port        string `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	// Настройки CORS
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// Настройки DeepSeek API
	APIKey      string        `envconfig:"DEEPSEEK_API_KEY" required:"true"`
	BaseURL     string        `envconfig:"DEEPSEEK_BASE_URL" default:"https://api.deepseek.com/v1"`
	Model       string        `envconfig:"DEEPSEEK_MODEL" default:"deepseek-chat"`
	Temperature float32       `envconfig:"AI_TEMPERATURE" default:"0.7"`
	MaxTokens   int           `envconfig:"AI_MAX_TOKENS" default:"250"`
	AITimeout   time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`

	// Настройки игры
	GameMode string `envconfig:"GAME_MODE" default:"moral"`  // moral или classic
	MaxTurns int    `envconfig:"GAME_MAX_TURNS" default:"0"` // 0 - без ограничения
}

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	if cfg.GameMode != "moral" && cfg.GameMode != "classic" {
		return nil, fmt.Errorf("неизвестный режим игры GAME_MODE=%q (ожидается moral или classic)", cfg.GameMode)
	}

	log.Printf("Конфигурация загружена:")
	log.Printf("  Port: %s", cfg.Port)
	log.Printf("  LogLevel: %s", cfg.LogLevel)
	log.Printf("  Model: %s (%s)", cfg.Model, cfg.BaseURL)
	log.Printf("  AI Timeout: %v", cfg.AITimeout)
	log.Printf("  Game Mode: %s", cfg.GameMode)
	log.Printf("  Max Turns: %d", cfg.MaxTurns)
	log.Println("  DeepSeek API Key: [ЗАГРУЖЕН]")

	return &cfg, nil
}
