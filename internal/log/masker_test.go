package log

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestMaskingHandler_Handle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "mask telegram token in message",
			input:    `Post "https://api.telegram.org/bot8462697481:AAEJSXuTcb2F1Js2sWiK0TVWvxbHL9xX05Q/getUpdates": net/http: request canceled`,
			expected: `Post "https://api.telegram.org/bot***:***masked-token***/getUpdates": net/http: request canceled`,
		},
		{
			name:     "mask phone author in message",
			input:    "report built for +7 912 345-67-89",
			expected: "report built for +***89",
		},
		{
			name:     "no sensitive data in message",
			input:    "Parsed 120 records, 3 unresolved",
			expected: "Parsed 120 records, 3 unresolved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			logger := NewMaskedLogger(slog.NewJSONHandler(&buf, nil))

			logger.Info(tt.input)

			output := buf.String()
			expectedEscaped := strings.ReplaceAll(tt.expected, "\"", "\\\"")
			if !strings.Contains(output, expectedEscaped) {
				t.Errorf("expected output to contain %q, got %q", expectedEscaped, output)
			}
		})
	}
}

func TestMaskingHandler_Attrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewMaskedLogger(slog.NewJSONHandler(&buf, nil))

	token := "bot8462697481:AAEJSXuTcb2F1Js2sWiK0TVWvxbHL9xX05Q"
	logger = logger.With(slog.String("token", token))

	logger.Info("message with sensitive attrs",
		"author", "+1 (555) 123-4567",
		"error", errors.New("get "+token+" failed"),
		"authors", []string{"Alice", "+491701234567"},
		slog.Group("user", slog.String("name", "+44 7700 900123")),
	)

	output := buf.String()
	for _, secret := range []string{token, "(555) 123-4567", "+491701234567", "7700 900123"} {
		if strings.Contains(output, secret) {
			t.Errorf("expected output to not contain %q, got %q", secret, output)
		}
	}
	for _, want := range []string{"***masked-token***", `"author":"+***67"`, `"+***67"`, `"name":"+***23"`, `"Alice"`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got %q", want, output)
		}
	}
}

func TestMaskingHandler_AttrsAreNotDuplicated(t *testing.T) {
	var buf bytes.Buffer
	logger := NewMaskedLogger(slog.NewJSONHandler(&buf, nil))

	logger.Info("once", "hash", "abc")

	if n := strings.Count(buf.String(), `"hash"`); n != 1 {
		t.Errorf("expected attribute to appear once, got %d in %q", n, buf.String())
	}
}

func TestMaskSensitive(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			input:    `Post "https://api.telegram.org/bot8462697481:AAEJSXuTcb2F1Js2sWiK0TVWvxbHL9xX05Q/getUpdates"`,
			expected: `Post "https://api.telegram.org/bot***:***masked-token***/getUpdates"`,
		},
		{input: "No token here", expected: "No token here"},
		{input: "+491701234567", expected: "+***67"},
		{input: "+7 912 345-67-89: hi", expected: "+***89: hi"},
		{input: "score +12", expected: "score +12"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := maskSensitive(tt.input); result != tt.expected {
				t.Errorf("maskSensitive(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", "text")

	logger.Info("hidden")
	logger.Warn("visible", "phone", "+491701234567")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("info message should be filtered at warn level, got %q", output)
	}
	if !strings.Contains(output, "level=WARN") || !strings.Contains(output, "phone=+***67") {
		t.Errorf("unexpected text output %q", output)
	}
}

func TestTGBotAPIAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := &TGBotAPIAdapter{Logger: New(&buf, "info", "json")}

	adapter.Printf("Endpoint: %s, params: %v", "getUpdates", "bot8462697481:AAEJSXuTcb2F1Js2sWiK0TVWvxbHL9xX05Q")
	adapter.Println("plain", "line")

	output := buf.String()
	if strings.Contains(output, "AAEJSXuTcb2F1Js2sWiK0TVWvxbHL9xX05Q") {
		t.Errorf("token leaked through adapter: %q", output)
	}
	if !strings.Contains(output, `"msg":"plain line"`) {
		t.Errorf("expected Println output, got %q", output)
	}
}

func TestTGBotAPIAdapter_Levels(t *testing.T) {
	var buf bytes.Buffer
	adapter := &TGBotAPIAdapter{Logger: New(&buf, "info", "json"), Level: slog.LevelDebug}

	adapter.Println("Endpoint: getMe")
	if buf.Len() != 0 {
		t.Errorf("debug message should be filtered, got %q", buf.String())
	}

	adapter.Printf("request error: %s", "timeout")
	if !strings.Contains(buf.String(), `"level":"WARN"`) {
		t.Errorf("errors should be logged as warnings, got %q", buf.String())
	}
}
