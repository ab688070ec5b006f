package bot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"whatsapp-chat-analyzer/cmd/bot/config"
	"whatsapp-chat-analyzer/internal/apiclient"
	"whatsapp-chat-analyzer/internal/domain"
)

const (
	startCommand = "start"
	helpCommand  = "help"
	usersCommand = "users"
	userCommand  = "user"
)

// ServerAPI описывает методы API сервера, которые нужны боту.
type ServerAPI interface {
	StartTask(ctx context.Context, file apiclient.DocumentFile) (*apiclient.StartTaskResponse, error)
	GetTaskStatus(ctx context.Context, taskID string) (*apiclient.TaskStatusResponse, error)
	GetAuthors(ctx context.Context, taskID string) ([]string, error)
	GetReport(ctx context.Context, taskID, user string) (*domain.Report, error)
	GetReportXLSX(ctx context.Context, taskID, user string) ([]byte, error)
}

// Bot представляет собой основной объект Telegram-бота.
type Bot struct {
	api          *tgbotapi.BotAPI
	cfg          config.BotConfig
	serverClient ServerAPI
	// taskStore хранит активные задачи, lastTasks - последнюю завершенную задачу чата
	taskStore  *TaskStore
	lastTasks  *TaskStore
	logger     *slog.Logger
	httpClient *http.Client

	sendMessageFunc      func(msg tgbotapi.Chattable) (tgbotapi.Message, error)
	getFileDirectURLFunc func(fileID string) (string, error)
}

// NewBot создает и инициализирует новый экземпляр бота.
func NewBot(cfg config.BotConfig, serverClient ServerAPI, taskStore *TaskStore, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}

	logger.Info("Authorized on account", slog.String("username", api.Self.UserName))

	return &Bot{
		api:                  api,
		cfg:                  cfg,
		serverClient:         serverClient,
		taskStore:            taskStore,
		lastTasks:            NewTaskStore(),
		logger:               logger,
		httpClient:           &http.Client{Timeout: cfg.HTTPTimeout()},
		sendMessageFunc:      api.Send,
		getFileDirectURLFunc: api.GetFileDirectURL,
	}, nil
}

// Start запускает основной цикл обработки обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Context cancelled, stopping bot...")
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if msg.Document != nil {
		b.handleDocument(ctx, msg)
		return
	}

	b.reply(msg.Chat.ID, "Пожалуйста, отправьте мне файл экспорта чата WhatsApp (.txt или .zip).")
}

// handleCommand обрабатывает команды.
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case startCommand, helpCommand:
		b.reply(chatID, "Добро пожаловать! Я бот для анализа чатов WhatsApp.\n\n"+
			"Экспортируйте чат в WhatsApp (Меню → Еще → Экспорт чата) и отправьте мне полученный .txt или .zip файл.\n\n"+
			"Команды:\n"+
			"/users - участники последнего разобранного чата\n"+
			"/user ИМЯ - отчет по одному участнику\n\n"+
			"Я обрабатываю только один файл за раз. Файлы не сохраняются и обрабатываются на лету.")
	case usersCommand:
		b.handleUsers(ctx, chatID)
	case userCommand:
		name := strings.TrimSpace(msg.CommandArguments())
		if name == "" {
			b.reply(chatID, "Укажите имя участника: /user ИМЯ")
			return
		}
		b.handleUserReport(ctx, chatID, name)
	default:
		b.reply(chatID, "Я не знаю такой команды.")
	}
}

// handleUsers отправляет список авторов последнего разобранного чата.
func (b *Bot) handleUsers(ctx context.Context, chatID int64) {
	taskID, ok := b.lastTasks.Get(chatID)
	if !ok {
		b.reply(chatID, "Сначала отправьте файл экспорта чата.")
		return
	}

	authors, err := b.serverClient.GetAuthors(ctx, taskID)
	if err != nil {
		b.logger.Error("failed to get authors", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		b.reply(chatID, "Не удалось получить список участников. Возможно, результат устарел: отправьте файл еще раз.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Участники чата:\n")
	for _, a := range authors {
		if a == domain.OverallFilter {
			continue
		}
		sb.WriteString("• ")
		sb.WriteString(a)
		sb.WriteString("\n")
	}
	b.reply(chatID, sb.String())
}

// handleUserReport отправляет отчет, отфильтрованный по одному автору.
func (b *Bot) handleUserReport(ctx context.Context, chatID int64, name string) {
	taskID, ok := b.lastTasks.Get(chatID)
	if !ok {
		b.reply(chatID, "Сначала отправьте файл экспорта чата.")
		return
	}

	authors, err := b.serverClient.GetAuthors(ctx, taskID)
	if err != nil {
		b.logger.Error("failed to get authors", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		b.reply(chatID, "Не удалось получить список участников. Возможно, результат устарел: отправьте файл еще раз.")
		return
	}
	if !contains(authors, name) {
		b.reply(chatID, fmt.Sprintf("Участник %q не найден. Список участников: /users", name))
		return
	}

	b.sendReport(ctx, chatID, taskID, name)
}

// handleDocument обрабатывает входящий документ (файл).
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	logger := b.logger.With(slog.Int64("chat_id", chatID))

	// 1. Занимаем чат, если у него нет активной задачи.
	if !b.taskStore.Reserve(chatID) {
		logger.Warn("user tried to start a new task while another is active")
		b.reply(chatID, "Пожалуйста, подождите завершения предыдущей задачи, прежде чем начинать новую.")
		return
	}
	started := false
	defer func() {
		if !started {
			b.taskStore.Delete(chatID)
		}
	}()

	// 2. Проверяем тип и размер файла.
	doc := msg.Document
	if !isTranscriptFile(doc.FileName) {
		b.reply(chatID, "Поддерживаются только файлы .txt и .zip, полученные при экспорте чата WhatsApp.")
		return
	}
	maxSize := int64(b.cfg.MaxFileSizeMB) << 20
	if maxSize > 0 && int64(doc.FileSize) > maxSize {
		b.reply(chatID, fmt.Sprintf("Файл слишком большой. Максимальный размер: %d МБ.", b.cfg.MaxFileSizeMB))
		return
	}

	// 3. Скачиваем файл.
	content, err := b.downloadFile(ctx, doc.FileID, maxSize)
	if err != nil {
		logger.Error("failed to download file", slog.String("error", err.Error()))
		b.reply(chatID, "Не удалось скачать файл. Попробуйте отправить его еще раз.")
		return
	}

	// 4. Запускаем задачу на бэкенде.
	startResp, err := b.serverClient.StartTask(ctx, apiclient.DocumentFile{Name: doc.FileName, Content: bytes.NewReader(content)})
	if err != nil {
		logger.Error("failed to start task on backend", slog.String("error", err.Error()))
		b.reply(chatID, "Не удалось начать обработку файла на сервере. Пожалуйста, попробуйте позже.")
		return
	}

	taskID := startResp.TaskID
	logger.Info("task started on backend", slog.String("task_id", taskID))

	// 5. Сохраняем task_id и запускаем опрос.
	b.taskStore.Set(chatID, taskID)
	started = true
	go b.pollTaskStatus(context.Background(), chatID, taskID)

	b.reply(chatID, "✅ Файл получен и поставлен в очередь на обработку. Ожидайте результата.")
}

// downloadFile скачивает файл с серверов Telegram, ограничивая размер.
func (b *Bot) downloadFile(ctx context.Context, fileID string, maxSize int64) ([]byte, error) {
	fileURL, err := b.getFileDirectURLFunc(fileID)
	if err != nil {
		return nil, fmt.Errorf("get file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if maxSize > 0 {
		body = io.LimitReader(resp.Body, maxSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, fmt.Errorf("file exceeds %d bytes", maxSize)
	}
	return data, nil
}

// pollTaskStatus асинхронно опрашивает статус задачи на бэкенд-сервере.
func (b *Bot) pollTaskStatus(ctx context.Context, chatID int64, taskID string) {
	logger := b.logger.With(slog.Int64("chat_id", chatID), slog.String("task_id", taskID))
	defer b.taskStore.Delete(chatID) // Гарантированно удаляем задачу по завершении.

	if b.cfg.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.TaskTimeout)
		defer cancel()
	}

	interval := b.cfg.PollingInterval()
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Warn("polling cancelled by context")
			b.reply(chatID, "Не удалось дождаться результата обработки. Попробуйте позже.")
			return
		case <-ticker.C:
			logger.Debug("polling task status")
			status, err := b.serverClient.GetTaskStatus(ctx, taskID)
			if err != nil {
				logger.Error("failed to get task status", slog.String("error", err.Error()))
				continue
			}

			switch status.Status {
			case apiclient.StatusCompleted:
				logger.Info("task completed", slog.Int("records", status.Records))
				b.lastTasks.Set(chatID, taskID)
				b.sendReport(ctx, chatID, taskID, "")
				return
			case apiclient.StatusFailed:
				logger.Warn("task failed", slog.String("kind", status.ErrorKind), slog.String("reason", status.ErrorMessage))
				b.reply(chatID, failureText(status.ErrorKind, status.ErrorMessage))
				return
			case apiclient.StatusPending, apiclient.StatusProcessing:
				logger.Debug("task is in progress", slog.String("status", status.Status))
			default:
				logger.Warn("unknown task status", slog.String("status", status.Status))
			}
		}
	}
}

// sendReport отправляет сводку отчета текстом и полный отчет файлом Excel.
func (b *Bot) sendReport(ctx context.Context, chatID int64, taskID, user string) {
	logger := b.logger.With(slog.Int64("chat_id", chatID), slog.String("task_id", taskID))

	report, err := b.serverClient.GetReport(ctx, taskID, user)
	if err != nil {
		logger.Error("failed to fetch report", slog.String("error", err.Error()))
		b.reply(chatID, "Не удалось получить результаты для выполненной задачи. Пожалуйста, попробуйте позже.")
		return
	}

	summary := tgbotapi.NewMessage(chatID, renderSummary(report, b.cfg.Render))
	summary.ParseMode = tgbotapi.ModeHTML
	b.sendMessage(summary)

	data, err := b.serverClient.GetReportXLSX(ctx, taskID, user)
	if err != nil {
		logger.Error("failed to fetch excel report", slog.String("error", err.Error()))
		b.reply(chatID, "Не удалось сформировать Excel-файл.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  reportFileName(report.Filter, time.Now()),
		Bytes: data,
	})
	doc.Caption = fmt.Sprintf("Полный отчет: %s. Сообщений: %d.", report.Filter, report.Stats.Messages)
	b.sendMessage(doc)
}

func (b *Bot) reply(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendMessage(msg tgbotapi.Chattable) {
	if _, err := b.sendMessageFunc(msg); err != nil {
		b.logger.Error("failed to send message", slog.String("error", err.Error()))
	}
}

// isTranscriptFile проверяет расширение файла экспорта.
func isTranscriptFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".zip":
		return true
	}
	return false
}

// reportFileName формирует имя файла отчета, заменяя небезопасные символы в имени автора.
func reportFileName(filter string, now time.Time) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, filter)
	return fmt.Sprintf("chat_report_%s_%s.xlsx", safe, now.Format("2006-01-02_15-04-05"))
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}
