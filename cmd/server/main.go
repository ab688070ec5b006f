package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"whatsapp-chat-analyzer/internal/adapters/parser"
	"whatsapp-chat-analyzer/internal/cache"
	"whatsapp-chat-analyzer/internal/core/services"
	"whatsapp-chat-analyzer/internal/events"
	applog "whatsapp-chat-analyzer/internal/log"
	"whatsapp-chat-analyzer/internal/pkg/config"
	"whatsapp-chat-analyzer/internal/ports"
	"whatsapp-chat-analyzer/internal/server"
	"whatsapp-chat-analyzer/internal/server/usecase"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}

// run инкапсулирует всю логику инициализации и запуска приложения.
func run() error {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		// Логгер еще не инициализирован, выводим в stderr
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Инициализация логгера
	logger := applog.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	// 3. Валидация конфигурации (после инициализации логгера)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Инициализация зависимостей
	cacheStore, err := openCacheStore(cfg)
	if err != nil {
		return err
	}
	defer cacheStore.Close()

	publisher, err := openPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	taskStore := server.NewTaskStore()
	parserSvc := parser.NewTranscriptParser()
	analyzerSvc := services.NewAnalysisService(
		services.WithMediaPlaceholder(cfg.Analysis.MediaPlaceholder),
		services.WithTopUsers(cfg.Analysis.TopUsers),
		services.WithTopWords(cfg.Analysis.TopWords),
	)
	processor := usecase.NewAnalyzeChatUseCase(cfg, parserSvc, analyzerSvc, cacheStore, publisher)

	// 5. Создание HTTP-сервера
	srv, err := server.New(cfg, processor, taskStore, cacheStore)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()
	srv.StartBackground(appCtx)

	// 6. Запуск сервера и graceful shutdown
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		slog.Info("Starting server", "addr", cfg.Address(), "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		slog.Info("Signal received, shutting down...")
	case <-serverDone:
		return fmt.Errorf("server stopped unexpectedly")
	}

	// Сначала останавливаем фоновые очистки
	appCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	<-serverDone
	slog.Info("Application exited gracefully")
	return nil
}

func openCacheStore(cfg *config.Config) (cache.Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageSQLite:
		store, err := cache.OpenSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite cache: %w", err)
		}
		slog.Info("Using sqlite cache", "path", cfg.Storage.SQLitePath)
		return store, nil
	default:
		return cache.NewCacheStore(), nil
	}
}

func openPublisher(cfg *config.Config, logger *slog.Logger) (ports.EventPublisher, error) {
	if cfg.Events.NATSURL == "" {
		return events.NewNopPublisher(), nil
	}
	publisher, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.NATSToken, cfg.Events.Subject, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return publisher, nil
}
