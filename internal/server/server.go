package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"whatsapp-chat-analyzer/internal/adapters/exporter"
	"whatsapp-chat-analyzer/internal/cache"
	"whatsapp-chat-analyzer/internal/domain"
	"whatsapp-chat-analyzer/internal/pkg/config"
	"whatsapp-chat-analyzer/internal/server/usecase"
)

// Виды ошибок задачи помимо ошибок разбора (domain.ParseErrorKind).
const (
	ErrorKindTimeout   = "Timeout"
	ErrorKindNotCached = "NotCached"
	ErrorKindInternal  = "Internal"
)

const (
	defaultTaskTTL  = 24 * time.Hour
	defaultPageSize = 50
	maxPageSize     = 1000
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ChatProcessor определяет интерфейс для варианта использования, который обрабатывает чаты.
type ChatProcessor interface {
	ProcessChat(ctx context.Context, filePath string) (*usecase.Result, error)
	ProcessCached(hash string) (*usecase.Result, error)
	Report(transcript *domain.Transcript, filter string) *domain.Report
}

// Server представляет HTTP-сервер
type Server struct {
	HTTPServer *http.Server
	cfg        *config.Config
	taskStore  *TaskStore
	cacheStore cache.Store
	processor  ChatProcessor
}

// New создает новый экземпляр Server
func New(cfg *config.Config, processor ChatProcessor, taskStore *TaskStore, cacheStore cache.Store) (*Server, error) {
	if processor == nil || taskStore == nil {
		return nil, fmt.Errorf("processor и taskStore обязательны")
	}

	s := &Server{
		cfg:        cfg,
		taskStore:  taskStore,
		cacheStore: cacheStore,
		processor:  processor,
	}

	s.HTTPServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	chiRouter := chi.NewRouter()

	// Промежуточное ПО
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.Logger)
	chiRouter.Use(middleware.Recoverer)

	// Конечная точка для проверки работоспособности
	chiRouter.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Маршруты API
	chiRouter.Route("/api/v1", func(r chi.Router) {
		r.Post("/process", s.handleProcess)
		r.Post("/process-by-hash", s.handleProcessByHash)

		r.Route("/tasks/{taskID}", func(r chi.Router) {
			r.Get("/", s.handleTaskStatus)
			r.Get("/authors", s.handleAuthors)
			r.Get("/records", s.handleRecords)
			r.Get("/report", s.handleReport)
			r.Get("/report.xlsx", s.handleReportXLSX)
		})
	})

	return chiRouter
}

// StartBackground запускает периодическую очистку задач и кэша до отмены ctx.
func (s *Server) StartBackground(ctx context.Context) {
	interval := s.cfg.Processing.CleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}
	s.taskStore.StartCleanupTicker(ctx, interval)
	if s.cacheStore != nil {
		cache.StartCleanupTicker(ctx, s.cacheStore, interval)
	}
}

// ListenAndServe запускает HTTP-сервер
func (s *Server) ListenAndServe() error {
	return s.HTTPServer.ListenAndServe()
}

// Shutdown корректно завершает работу HTTP-сервера
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Завершение работы HTTP-сервера")
	return s.HTTPServer.Shutdown(ctx)
}

// handleProcess принимает файл экспорта (.txt или .zip) и запускает задачу разбора.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	maxUpload := s.cfg.Server.MaxUploadSizeMB << 20
	if maxUpload <= 0 {
		maxUpload = config.DefaultMaxUploadSizeMB << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, "Не удалось разобрать форму", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Не удалось получить файл из формы", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// Генерация уникального идентификатора задачи
	taskID := uuid.NewString()

	tempFilePath, err := saveUpload(taskID, file)
	if err != nil {
		slog.Error("Не удалось сохранить загруженный файл", "error", err)
		http.Error(w, "Не удалось сохранить загруженный файл", http.StatusInternalServerError)
		return
	}
	slog.Info("Файл получен", "task_id", taskID, "file_name", header.Filename, "size", header.Size)

	s.taskStore.CreateTask(taskID, s.taskTTL())
	go s.runTask(taskID, tempFilePath)

	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
}

// saveUpload копирует загруженный файл во временный файл.
func saveUpload(taskID string, file io.Reader) (string, error) {
	out, err := os.CreateTemp("", fmt.Sprintf("chat_%s_*", taskID))
	if err != nil {
		return "", fmt.Errorf("не удалось создать временный файл: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}

// runTask выполняет разбор в фоне с таймаутом из конфигурации.
func (s *Server) runTask(taskID, tempFilePath string) {
	defer os.Remove(tempFilePath)

	s.taskStore.UpdateTaskStatus(taskID, TaskStatusProcessing)

	taskCtx := context.Background()
	if s.cfg.Processing.TaskTimeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(taskCtx, s.cfg.Processing.TaskTimeout)
		defer cancel()
	}

	result, err := s.processor.ProcessChat(taskCtx, tempFilePath)
	if err != nil {
		kind := errorKind(err)
		slog.Warn("Задача завершилась с ошибкой", "task_id", taskID, "kind", kind, "error", err)
		s.taskStore.UpdateTaskError(taskID, err.Error(), kind)
		return
	}

	s.taskStore.UpdateTaskResult(taskID, result.Hash, result.Transcript)
	slog.Info("Задача завершена", "task_id", taskID, "hash", result.Hash, "cached", result.Cached)
}

// handleProcessByHash создает задачу по хешу ранее загруженного файла. Обслуживается только из кэша.
func (s *Server) handleProcessByHash(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hash string `json:"hash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Не удалось декодировать тело запроса", http.StatusBadRequest)
		return
	}
	if req.Hash == "" {
		http.Error(w, "Требуется хеш", http.StatusBadRequest)
		return
	}

	taskID := uuid.NewString()
	s.taskStore.CreateTask(taskID, s.taskTTL())

	result, err := s.processor.ProcessCached(req.Hash)
	if err != nil {
		slog.Info("Промах кеша для хеша", "hash", req.Hash, "task_id", taskID)
		s.taskStore.UpdateTaskError(taskID, "Файл не найден в кеше для данного хеша", errorKind(err))
	} else {
		slog.Info("Попадание в кеш для хеша", "hash", req.Hash, "task_id", taskID)
		s.taskStore.UpdateTaskResult(taskID, result.Hash, result.Transcript)
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
}

// handleTaskStatus возвращает статус задачи
func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	task, err := s.taskStore.GetTask(chi.URLParam(r, "taskID"))
	if err != nil {
		http.Error(w, "Задача не найдена", http.StatusNotFound)
		return
	}

	resp := map[string]interface{}{
		"task_id":       task.ID,
		"status":        task.Status,
		"error_message": task.ErrorMessage,
		"error_kind":    task.ErrorKind,
		"hash":          task.Hash,
	}
	if task.Transcript != nil {
		resp["records"] = len(task.Transcript.Records)
		resp["unresolved"] = task.Transcript.Unresolved
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAuthors возвращает варианты фильтра: "Overall" и авторов по алфавиту.
func (s *Server) handleAuthors(w http.ResponseWriter, r *http.Request) {
	task, ok := s.completedTask(w, r)
	if !ok {
		return
	}
	authors := append([]string{domain.OverallFilter}, task.Transcript.Authors()...)
	writeJSON(w, http.StatusOK, authors)
}

// Pagination описывает страницу списка записей.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
}

// handleRecords возвращает записи транскрипта постранично.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	task, ok := s.completedTask(w, r)
	if !ok {
		return
	}

	page, err := queryInt(r, "page", 1)
	if err != nil || page < 1 {
		http.Error(w, "Некорректный параметр page", http.StatusBadRequest)
		return
	}
	pageSize, err := queryInt(r, "page_size", defaultPageSize)
	if err != nil || pageSize < 1 || pageSize > maxPageSize {
		http.Error(w, "Некорректный параметр page_size", http.StatusBadRequest)
		return
	}

	records := task.Transcript.Records
	total := len(records)
	totalPages := (total + pageSize - 1) / pageSize
	// Номер страницы сравнивается до умножения, иначе большой page переполняет int.
	start := total
	if page <= totalPages {
		start = (page - 1) * pageSize
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	response := struct {
		Pagination Pagination             `json:"pagination"`
		Data       []domain.MessageRecord `json:"data"`
	}{
		Pagination: Pagination{
			CurrentPage: page,
			PageSize:    pageSize,
			TotalItems:  total,
			TotalPages:  totalPages,
		},
		Data: records[start:end],
	}
	writeJSON(w, http.StatusOK, response)
}

// handleReport возвращает все представления для фильтра ?user=.
// Неизвестный автор дает пустой отчет, а не ошибку.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	task, ok := s.completedTask(w, r)
	if !ok {
		return
	}
	report := s.processor.Report(task.Transcript, r.URL.Query().Get("user"))
	writeJSON(w, http.StatusOK, report)
}

// handleReportXLSX возвращает отчет в виде книги Excel.
func (s *Server) handleReportXLSX(w http.ResponseWriter, r *http.Request) {
	task, ok := s.completedTask(w, r)
	if !ok {
		return
	}
	report := s.processor.Report(task.Transcript, r.URL.Query().Get("user"))

	data, err := exporter.ReportXLSX(report)
	if err != nil {
		slog.Error("Не удалось сформировать Excel-отчет", "task_id", task.ID, "error", err)
		http.Error(w, "Не удалось сформировать отчет", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="chat_report_%s.xlsx"`, task.ID))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// completedTask находит задачу и проверяет, что она завершена. При неудаче ответ уже записан.
func (s *Server) completedTask(w http.ResponseWriter, r *http.Request) (*Task, bool) {
	task, err := s.taskStore.GetTask(chi.URLParam(r, "taskID"))
	if err != nil {
		http.Error(w, "Задача не найдена", http.StatusNotFound)
		return nil, false
	}
	if task.Status != TaskStatusCompleted || task.Transcript == nil {
		http.Error(w, "Задача не завершена", http.StatusBadRequest)
		return nil, false
	}
	return task, true
}

func (s *Server) taskTTL() time.Duration {
	if s.cfg.Processing.TaskTTL > 0 {
		return s.cfg.Processing.TaskTTL
	}
	return defaultTaskTTL
}

// errorKind классифицирует ошибку задачи для клиента.
func errorKind(err error) string {
	if kind, ok := domain.ParseErrorKindOf(err); ok {
		return string(kind)
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorKindTimeout
	case errors.Is(err, usecase.ErrNotCached):
		return ErrorKindNotCached
	default:
		return ErrorKindInternal
	}
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Не удалось записать ответ", "error", err)
	}
}
