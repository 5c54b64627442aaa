package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moral-game-server/internal/config"
	"moral-game-server/internal/deepseek"
	"moral-game-server/internal/handler"
	"moral-game-server/internal/metrics"
	"moral-game-server/internal/middleware"
	"moral-game-server/internal/service"
	"moral-game-server/internal/session"
	"moral-game-server/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	log.Println("Запуск Moral Game Server...")

	// Загружаем конфиг ДО инициализации логгера
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err) // Используем стандартный логгер, т.к. zap еще нет
	}

	// --- Инициализация логгера ---
	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
	})
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer zapLogger.Sync() // Flush буфера логгера при выходе
	zapLogger.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))

	// Инициализация зависимостей
	aiClient, err := deepseek.NewClient(deepseek.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.AITimeout,
	})
	if err != nil {
		zapLogger.Fatal("Не удалось создать клиент DeepSeek", zap.Error(err))
	}

	gameMetrics := metrics.New()
	sessionStore := session.NewStore(nil)
	gameService := service.NewGameService(aiClient, sessionStore, gameMetrics, zapLogger, service.Mode(cfg.GameMode), cfg.MaxTurns)
	gameHandler := handler.NewGameHandler(gameService, zapLogger, gameMetrics.Registry)

	// Настройка Echo
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.ZapLogger(zapLogger))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	// Регистрация маршрутов
	gameHandler.RegisterRoutes(e)

	log.Printf("Игровой сервер слушает на порту %s", cfg.Port)

	// Запуск HTTP сервера
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("Ошибка запуска HTTP сервера: ", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Получен сигнал завершения, начинаем graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal("Ошибка при graceful shutdown Echo: ", err)
	}

	log.Println("Moral Game Server успешно остановлен")
}
