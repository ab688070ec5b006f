package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"whatsapp-chat-analyzer/cmd/bot/config"
	"whatsapp-chat-analyzer/internal/adapters/exporter"
	"whatsapp-chat-analyzer/internal/domain"
)

// Максимальная длина сообщения в Telegram
const maxMessageLength = 4096

// renderSummary форматирует краткую сводку отчета в HTML с таблицами внутри <pre>.
// Если сводка не помещается в одно сообщение, таблицы отбрасываются с конца.
func renderSummary(report *domain.Report, render config.ColumnWidths) string {
	header := fmt.Sprintf("<b>Анализ чата: %s</b>\nСообщений: %d\nСлов: %d\nВложений: %d\nСсылок: %d\n",
		html.EscapeString(report.Filter),
		report.Stats.Messages, report.Stats.Words, report.Stats.Media, report.Stats.Links)

	width := render.Key + render.Count + 7
	var tables []string
	if report.Filter == domain.OverallFilter {
		tables = append(tables, summaryTable("Самые активные", "User", report.BusyUsers.Top, render.TopRows, width))
	}
	tables = append(tables,
		summaryTable("Дни недели", "Day", report.WeekActivity, render.TopRows, width),
		summaryTable("Частые слова", "Word", report.CommonWords, render.TopRows, width),
		summaryTable("Эмодзи", "Emoji", report.Emojis, render.TopRows, width),
	)

	for n := len(tables); n >= 0; n-- {
		text := header + strings.Join(tables[:n], "")
		if len(text) <= maxMessageLength {
			return text
		}
	}
	return header
}

func summaryTable(title, keyHeader string, items []domain.KeyCount, limit, width int) string {
	if len(items) == 0 {
		return ""
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{it.Key, strconv.Itoa(it.Count)})
	}
	t := exporter.Table{Headers: []string{keyHeader, "Count"}, Rows: rows, MaxWidth: width}

	return fmt.Sprintf("\n<b>%s</b>\n<pre>%s</pre>", title, html.EscapeString(t.Render()))
}

// failureText объясняет пользователю причину ошибки задачи.
func failureText(kind, message string) string {
	switch kind {
	case string(domain.KindStructureMismatch):
		return "Файл не похож на экспорт чата WhatsApp: не удалось сопоставить даты и сообщения."
	case string(domain.KindNoValidDates):
		return "В файле не найдено ни одной даты в формате WhatsApp."
	case "Timeout":
		return "Обработка файла заняла слишком много времени. Попробуйте файл меньшего размера."
	default:
		return fmt.Sprintf("Произошла ошибка при обработке файла: %s", message)
	}
}
