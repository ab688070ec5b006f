package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-chat-analyzer/internal/domain"
)

func TestClient_StartTask(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/process", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "chat.txt", header.Filename)
		assert.Equal(t, "hello", string(data))

		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"task_id": "task-1"})
	}))
	defer ts.Close()

	c := New(ts.URL, time.Second)
	resp, err := c.StartTask(context.Background(), DocumentFile{Name: "chat.txt", Content: strings.NewReader("hello")})
	require.NoError(t, err)
	assert.Equal(t, "task-1", resp.TaskID)
}

func TestClient_StatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Задача не найдена", http.StatusNotFound)
	}))
	defer ts.Close()

	c := New(ts.URL, time.Second)
	_, err := c.GetTaskStatus(context.Background(), "missing")
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Equal(t, "Задача не найдена", statusErr.Message)
}

func TestClient_WaitForTask(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := StatusProcessing
		if atomic.AddInt32(&calls, 1) >= 3 {
			status = StatusCompleted
		}
		json.NewEncoder(w).Encode(TaskStatusResponse{TaskID: "t", Status: status, Records: 3})
	}))
	defer ts.Close()

	c := New(ts.URL, time.Second)

	t.Run("дожидается завершения", func(t *testing.T) {
		status, err := c.WaitForTask(context.Background(), "t", 10*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, status.Status)
		assert.Equal(t, 3, status.Records)
	})

	t.Run("отмена контекста", func(t *testing.T) {
		pending := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(TaskStatusResponse{Status: StatusPending})
		}))
		defer pending.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := New(pending.URL, time.Second).WaitForTask(ctx, "t", 10*time.Millisecond)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestClient_ReportEndpoints(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/tasks/t1/authors":
			json.NewEncoder(w).Encode([]string{"Overall", "Alice", "Bob"})
		case "/api/v1/tasks/t1/report":
			json.NewEncoder(w).Encode(domain.Report{
				Filter: r.URL.Query().Get("user"),
				Stats:  domain.MessageStats{Messages: 2},
			})
		case "/api/v1/tasks/t1/report.xlsx":
			w.Write([]byte("PK-xlsx"))
		case "/api/v1/tasks/t1/records":
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.Equal(t, "10", r.URL.Query().Get("page_size"))
			json.NewEncoder(w).Encode(RecordsResponse{
				Pagination: PaginationDTO{CurrentPage: 2, PageSize: 10, TotalItems: 11, TotalPages: 2},
				Data:       []domain.MessageRecord{{Author: "Alice", Message: "hi"}},
			})
		case "/api/v1/process-by-hash":
			var req map[string]string
			json.NewDecoder(r.Body).Decode(&req)
			assert.Equal(t, "abc", req["hash"])
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(StartTaskResponse{TaskID: "t2"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	c := New(ts.URL+"/", 0)
	ctx := context.Background()

	authors, err := c.GetAuthors(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Overall", "Alice", "Bob"}, authors)

	report, err := c.GetReport(ctx, "t1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", report.Filter)
	assert.Equal(t, 2, report.Stats.Messages)

	data, err := c.GetReportXLSX(ctx, "t1", "")
	require.NoError(t, err)
	assert.Equal(t, "PK-xlsx", string(data))

	records, err := c.GetRecords(ctx, "t1", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, records.Pagination.TotalPages)
	require.Len(t, records.Data, 1)
	assert.Equal(t, "Alice", records.Data[0].Author)

	started, err := c.ProcessByHash(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "t2", started.TaskID)
}
