// Package apiclient содержит HTTP-клиент API сервера анализа чатов.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"whatsapp-chat-analyzer/internal/domain"
)

// Статусы задачи на сервере.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

const defaultTimeout = 30 * time.Second

// Client — клиент для взаимодействия с API бэкенд-сервера.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New создает новый экземпляр Client. Нулевой таймаут заменяется значением по умолчанию.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// StartTaskResponse - ответ на запуск задачи.
type StartTaskResponse struct {
	TaskID string `json:"task_id"`
}

// TaskStatusResponse - состояние задачи.
type TaskStatusResponse struct {
	TaskID       string `json:"task_id"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	ErrorKind    string `json:"error_kind,omitempty"`
	Hash         string `json:"hash,omitempty"`
	Records      int    `json:"records"`
	Unresolved   int    `json:"unresolved"`
}

// Finished сообщает, что задача больше не изменится.
func (s *TaskStatusResponse) Finished() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}

// PaginationDTO представляет собой объект пагинации из ответа сервера.
type PaginationDTO struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
}

// RecordsResponse - страница записей транскрипта.
type RecordsResponse struct {
	Pagination PaginationDTO          `json:"pagination"`
	Data       []domain.MessageRecord `json:"data"`
}

// DocumentFile представляет файл для загрузки.
type DocumentFile struct {
	Name    string
	Content io.Reader
}

// StartTask отправляет файл экспорта на сервер для начала обработки.
func (c *Client) StartTask(ctx context.Context, file DocumentFile) (*StartTaskResponse, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file for %s: %w", file.Name, err)
	}
	if _, err = io.Copy(fw, file.Content); err != nil {
		return nil, fmt.Errorf("failed to copy file content for %s: %w", file.Name, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/process", &b)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var result StartTaskResponse
	if err := c.do(req, http.StatusAccepted, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ProcessByHash создает задачу по хешу ранее загруженного файла.
func (c *Client) ProcessByHash(ctx context.Context, hash string) (*StartTaskResponse, error) {
	body, err := json.Marshal(map[string]string{"hash": hash})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/process-by-hash", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result StartTaskResponse
	if err := c.do(req, http.StatusAccepted, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTaskStatus запрашивает статус задачи.
func (c *Client) GetTaskStatus(ctx context.Context, taskID string) (*TaskStatusResponse, error) {
	var result TaskStatusResponse
	if err := c.get(ctx, c.taskURL(taskID, "", nil), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// WaitForTask опрашивает статус задачи, пока она не завершится или не истечет контекст.
func (c *Client) WaitForTask(ctx context.Context, taskID string, interval time.Duration) (*TaskStatusResponse, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := c.GetTaskStatus(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if status.Finished() {
			return status, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// GetAuthors возвращает варианты фильтра: "Overall" и авторов по алфавиту.
func (c *Client) GetAuthors(ctx context.Context, taskID string) ([]string, error) {
	var authors []string
	if err := c.get(ctx, c.taskURL(taskID, "/authors", nil), &authors); err != nil {
		return nil, err
	}
	return authors, nil
}

// GetRecords запрашивает страницу записей транскрипта.
func (c *Client) GetRecords(ctx context.Context, taskID string, page, pageSize int) (*RecordsResponse, error) {
	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	q.Set("page_size", fmt.Sprint(pageSize))

	var result RecordsResponse
	if err := c.get(ctx, c.taskURL(taskID, "/records", q), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetReport запрашивает отчет для фильтра. Пустой user означает "Overall".
func (c *Client) GetReport(ctx context.Context, taskID, user string) (*domain.Report, error) {
	var report domain.Report
	if err := c.get(ctx, c.taskURL(taskID, "/report", userQuery(user)), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// GetReportXLSX скачивает отчет в виде книги Excel.
func (c *Client) GetReportXLSX(ctx context.Context, taskID, user string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.taskURL(taskID, "/report.xlsx", userQuery(user)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) taskURL(taskID, suffix string, q url.Values) string {
	u := c.baseURL + "/api/v1/tasks/" + url.PathEscape(taskID) + suffix
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) get(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, http.StatusOK, out)
}

func (c *Client) do(req *http.Request, wantStatus int, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return statusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// StatusError - неожиданный код ответа сервера.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status code: %d", e.Code)
	}
	return fmt.Sprintf("unexpected status code: %d: %s", e.Code, e.Message)
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}

func userQuery(user string) url.Values {
	if user == "" {
		return nil
	}
	return url.Values{"user": []string{user}}
}
