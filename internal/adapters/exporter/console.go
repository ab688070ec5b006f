package exporter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"whatsapp-chat-analyzer/internal/domain"
	"whatsapp-chat-analyzer/internal/ports"
)

// ConsoleExporter реализует интерфейс Exporter для вывода отчета в терминал.
type ConsoleExporter struct {
	out   io.Writer
	width int
}

// NewConsoleExporter создает новый экземпляр ConsoleExporter.
// width ограничивает ширину таблиц; 0 - без ограничений. nil out означает stdout.
func NewConsoleExporter(out io.Writer, width int) ports.Exporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleExporter{out: out, width: width}
}

// Export выводит все представления отчета.
func (e *ConsoleExporter) Export(report *domain.Report) error {
	if report == nil {
		return fmt.Errorf("отчет не передан")
	}
	_, err := io.WriteString(e.out, RenderReport(report, e.width))
	return err
}

// RenderReport форматирует отчет в виде текста с таблицами.
func RenderReport(report *domain.Report, width int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "=== Chat analysis: %s ===\n", report.Filter)
	fmt.Fprintf(&sb, "Messages: %d   Words: %d   Media shared: %d   Links shared: %d\n",
		report.Stats.Messages, report.Stats.Words, report.Stats.Media, report.Stats.Links)

	section(&sb, "Monthly timeline", Table{
		Headers:  []string{"Month", "Messages"},
		Rows:     monthlyRows(report.MonthlyTimeline),
		MaxWidth: width,
	})
	section(&sb, "Daily timeline", Table{
		Headers:  []string{"Date", "Messages"},
		Rows:     dailyRows(report.DailyTimeline),
		MaxWidth: width,
	})
	section(&sb, "Most busy day", keyCountTable("Day", report.WeekActivity, width))
	section(&sb, "Most busy month", keyCountTable("Month", report.MonthActivity, width))
	section(&sb, "Weekly activity map", heatmapTable(report.Heatmap, width))

	// Для одного автора список самых активных не имеет смысла
	if report.Filter == domain.OverallFilter {
		section(&sb, "Most busy users", keyCountTable("User", report.BusyUsers.Top, width))
		section(&sb, "Share of messages", sharesTable(report.BusyUsers.Shares, width))
	}

	section(&sb, "Most common words", keyCountTable("Word", report.CommonWords, width))
	section(&sb, "Emoji analysis", keyCountTable("Emoji", report.Emojis, width))

	return sb.String()
}

func section(sb *strings.Builder, title string, t Table) {
	fmt.Fprintf(sb, "\n--- %s ---\n", title)
	if len(t.Rows) == 0 {
		sb.WriteString("No data.\n")
		return
	}
	sb.WriteString(t.Render())
}

func monthlyRows(points []domain.MonthlyPoint) [][]string {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{p.Label, strconv.Itoa(p.Count)})
	}
	return rows
}

func dailyRows(points []domain.DailyPoint) [][]string {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{p.Date, strconv.Itoa(p.Count)})
	}
	return rows
}

func keyCountTable(keyHeader string, items []domain.KeyCount, width int) Table {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{it.Key, strconv.Itoa(it.Count)})
	}
	return Table{Headers: []string{keyHeader, "Count"}, Rows: rows, MaxWidth: width}
}

func sharesTable(shares []domain.UserShare, width int) Table {
	rows := make([][]string, 0, len(shares))
	for _, s := range shares {
		rows = append(rows, []string{s.Name, strconv.FormatFloat(s.Percent, 'f', 2, 64)})
	}
	return Table{Headers: []string{"Name", "Percent"}, Rows: rows, MaxWidth: width}
}

// heatmapTable использует начало интервала ("09") как заголовок колонки, чтобы таблица помещалась в терминал.
func heatmapTable(h domain.Heatmap, width int) Table {
	headers := make([]string, 0, len(h.Columns)+1)
	headers = append(headers, "Day")
	for _, c := range h.Columns {
		headers = append(headers, strings.SplitN(c, ":", 2)[0])
	}

	rows := make([][]string, 0, len(h.Rows))
	for i, day := range h.Rows {
		row := make([]string, 0, len(h.Columns)+1)
		row = append(row, day)
		for _, v := range h.Cells[i] {
			row = append(row, strconv.Itoa(v))
		}
		rows = append(rows, row)
	}
	return Table{Headers: headers, Rows: rows, MaxWidth: width}
}
