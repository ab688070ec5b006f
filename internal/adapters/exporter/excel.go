package exporter

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"whatsapp-chat-analyzer/internal/domain"
	"whatsapp-chat-analyzer/internal/ports"
)

// Названия листов книги отчета.
const (
	SheetSummary  = "Summary"
	SheetMonthly  = "Monthly"
	SheetDaily    = "Daily"
	SheetWeekdays = "Weekdays"
	SheetMonths   = "Months"
	SheetHeatmap  = "Heatmap"
	SheetUsers    = "Users"
	SheetWords    = "Words"
	SheetEmojis   = "Emojis"
)

const defaultSheet = "Sheet1"

// ExcelExporter записывает отчет в книгу .xlsx, по листу на каждое представление.
type ExcelExporter struct {
	out io.Writer
}

// NewExcelExporter создает новый экземпляр ExcelExporter.
func NewExcelExporter(out io.Writer) ports.Exporter {
	return &ExcelExporter{out: out}
}

// Export записывает книгу в writer.
func (e *ExcelExporter) Export(report *domain.Report) error {
	if report == nil {
		return fmt.Errorf("отчет не передан")
	}
	return WriteWorkbook(e.out, report)
}

// ReportXLSX возвращает книгу отчета в виде байтов.
func ReportXLSX(report *domain.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteWorkbook строит книгу отчета и записывает ее в w.
func WriteWorkbook(w io.Writer, report *domain.Report) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("failed to close excel file", slog.String("error", err.Error()))
		}
	}()

	sheets := []struct {
		name    string
		headers []string
		rows    [][]interface{}
	}{
		{SheetSummary, []string{"Metric", "Value"}, summaryRows(report)},
		{SheetMonthly, []string{"Year", "Month", "Label", "Messages"}, monthlySheetRows(report.MonthlyTimeline)},
		{SheetDaily, []string{"Date", "Messages"}, dailySheetRows(report.DailyTimeline)},
		{SheetWeekdays, []string{"Day", "Messages"}, keyCountSheetRows(report.WeekActivity)},
		{SheetMonths, []string{"Month", "Messages"}, keyCountSheetRows(report.MonthActivity)},
		{SheetHeatmap, append([]string{"Day"}, report.Heatmap.Columns...), heatmapSheetRows(report.Heatmap)},
		{SheetUsers, []string{"Name", "Messages", "Percent"}, usersSheetRows(report.BusyUsers)},
		{SheetWords, []string{"Word", "Count"}, keyCountSheetRows(report.CommonWords)},
		{SheetEmojis, []string{"Emoji", "Count"}, keyCountSheetRows(report.Emojis)},
	}

	for i, s := range sheets {
		// Первый лист переименовывает "Sheet1", созданный по умолчанию
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, s.name); err != nil {
				return fmt.Errorf("failed to rename default sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}

		if err := setRow(f, s.name, 1, toInterfaces(s.headers)); err != nil {
			return err
		}
		for r, row := range s.rows {
			if err := setRow(f, s.name, r+2, row); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write excel: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
	}
	return nil
}

func toInterfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func summaryRows(report *domain.Report) [][]interface{} {
	return [][]interface{}{
		{"Filter", report.Filter},
		{"Total messages", report.Stats.Messages},
		{"Total words", report.Stats.Words},
		{"Media shared", report.Stats.Media},
		{"Links shared", report.Stats.Links},
	}
}

func monthlySheetRows(points []domain.MonthlyPoint) [][]interface{} {
	rows := make([][]interface{}, 0, len(points))
	for _, p := range points {
		rows = append(rows, []interface{}{p.Year, p.Month, p.Label, p.Count})
	}
	return rows
}

func dailySheetRows(points []domain.DailyPoint) [][]interface{} {
	rows := make([][]interface{}, 0, len(points))
	for _, p := range points {
		rows = append(rows, []interface{}{p.Date, p.Count})
	}
	return rows
}

func keyCountSheetRows(items []domain.KeyCount) [][]interface{} {
	rows := make([][]interface{}, 0, len(items))
	for _, it := range items {
		rows = append(rows, []interface{}{it.Key, it.Count})
	}
	return rows
}

func heatmapSheetRows(h domain.Heatmap) [][]interface{} {
	rows := make([][]interface{}, 0, len(h.Rows))
	for i, day := range h.Rows {
		row := make([]interface{}, 0, len(h.Columns)+1)
		row = append(row, day)
		for _, v := range h.Cells[i] {
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return rows
}

// usersSheetRows объединяет счетчики топа с долями всех авторов.
func usersSheetRows(busy domain.BusyUsers) [][]interface{} {
	counts := make(map[string]int, len(busy.Top))
	for _, kc := range busy.Top {
		counts[kc.Key] = kc.Count
	}
	rows := make([][]interface{}, 0, len(busy.Shares))
	for _, s := range busy.Shares {
		var messages interface{} = ""
		if c, ok := counts[s.Name]; ok {
			messages = c
		}
		rows = append(rows, []interface{}{s.Name, messages, s.Percent})
	}
	return rows
}
