package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sevlyar/go-daemon"

	"whatsapp-chat-analyzer/cmd/bot/config"
	"whatsapp-chat-analyzer/internal/apiclient"
	"whatsapp-chat-analyzer/internal/bot"
	"whatsapp-chat-analyzer/internal/log"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigFile, "path to bot config")
	flag.Parse()

	// Загрузка конфигурации бота
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load bot config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.ValidateFull(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to validate bot config: %v\n", err)
		os.Exit(1)
	}

	// В режиме демона родительский процесс завершается сразу после запуска дочернего
	if cfg.Daemon.Enabled {
		dctx := &daemon.Context{
			PidFileName: cfg.Daemon.PidFile,
			PidFilePerm: 0o644,
			LogFileName: cfg.Daemon.LogFile,
			LogFilePerm: 0o640,
			WorkDir:     cfg.Daemon.WorkDir,
			Umask:       0o27,
		}
		child, err := dctx.Reborn()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to daemonize: %v\n", err)
			os.Exit(1)
		}
		if child != nil {
			fmt.Printf("bot started in background, pid %d\n", child.Pid)
			return
		}
		defer dctx.Release()
	}

	// Инициализация логгера с маскировкой токенов и настройками из конфига
	logger := log.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)
	if err := tgbotapi.SetLogger(&log.TGBotAPIAdapter{Logger: logger.With(slog.String("component", "tgbotapi")), Level: slog.LevelDebug}); err != nil {
		slog.Warn("failed to set telegram api logger", slog.String("error", err.Error()))
	}

	// Инициализация компонентов
	taskStore := bot.NewTaskStore()
	serverClient := apiclient.New(cfg.Bot.BackendURL, cfg.Bot.HTTPTimeout())

	b, err := bot.NewBot(cfg.Bot, serverClient, taskStore, logger.With(slog.String("component", "bot")))
	if err != nil {
		slog.Error("failed to create bot", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("Bot created successfully, starting...", slog.String("backend", cfg.Bot.BackendURL))

	// Ожидание сигналов для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Start(ctx)
	}()

	<-ctx.Done()
	slog.Info("Shutting down bot...")
	<-done
	slog.Info("Bot stopped gracefully")
}
