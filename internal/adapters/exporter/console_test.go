package exporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-chat-analyzer/internal/domain"
)

func TestConsoleExporter(t *testing.T) {
	t.Run("NewConsoleExporter создает корректный экземпляр", func(t *testing.T) {
		assert.NotNil(t, NewConsoleExporter(nil, 0))
	})

	t.Run("Export выводит все разделы отчета", func(t *testing.T) {
		var buf bytes.Buffer
		exporter := NewConsoleExporter(&buf, 80)

		require.NoError(t, exporter.Export(sampleReport()))

		output := buf.String()
		assert.Contains(t, output, "=== Chat analysis: Overall ===")
		assert.Contains(t, output, "Messages: 6   Words: 14   Media shared: 1   Links shared: 1")
		assert.Contains(t, output, "| January-2024  | 3        |")
		assert.Contains(t, output, "| 2024-01-02 | 1        |")
		assert.Contains(t, output, "--- Most busy users ---")
		assert.Contains(t, output, "| Bob    | 33.33   |")
		assert.Contains(t, output, "| Day     | 09 | 23 |")
		assert.Contains(t, output, "| Tuesday | 0  | 1  |")
		assert.Contains(t, output, "| 😀    | 2     |")
	})

	t.Run("Отчет по автору без раздела активных пользователей", func(t *testing.T) {
		report := sampleReport()
		report.Filter = "Alice"

		output := RenderReport(report, 0)

		assert.Contains(t, output, "=== Chat analysis: Alice ===")
		assert.NotContains(t, output, "Most busy users")
	})

	t.Run("Пустые представления", func(t *testing.T) {
		output := RenderReport(&domain.Report{Filter: "Nobody"}, 0)

		assert.Equal(t, 7, strings.Count(output, "No data."))
	})

	t.Run("Export без отчета возвращает ошибку", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, NewConsoleExporter(&buf, 0).Export(nil))
	})
}
