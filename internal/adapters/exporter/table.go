package exporter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// minColumnWidth - ширина, меньше которой колонка не сжимается при подгонке под терминал.
const minColumnWidth = 6

// Table - текстовая таблица с колонками, выровненными по ширине отображения.
// Эмодзи и CJK-символы занимают две позиции, поэтому ширина считается через runewidth.
type Table struct {
	Headers []string
	Rows    [][]string
	// MaxWidth ограничивает ширину строки таблицы; 0 - без ограничений.
	MaxWidth int
}

// Render возвращает таблицу в виде текста. Не помещающиеся значения переносятся по словам.
func (t Table) Render() string {
	if len(t.Headers) == 0 {
		return ""
	}
	widths := t.columnWidths()

	var sb strings.Builder
	writeRow(&sb, t.Headers, widths)

	sb.WriteString("|")
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w+2))
		sb.WriteString("|")
	}
	sb.WriteString("\n")

	for _, row := range t.Rows {
		writeRow(&sb, row, widths)
	}
	return sb.String()
}

// columnWidths вычисляет ширину колонок и при необходимости сжимает самые широкие.
func (t Table) columnWidths() []int {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.Rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	if t.MaxWidth <= 0 {
		return widths
	}

	// Каждая колонка добавляет "| " и " ", плюс завершающая "|"
	overhead := 3*len(widths) + 1
	for total(widths)+overhead > t.MaxWidth {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumnWidth {
			break
		}
		widths[widest]--
	}
	return widths
}

func total(widths []int) int {
	sum := 0
	for _, w := range widths {
		sum += w
	}
	return sum
}

// writeRow печатает одну логическую строку, которая может занимать несколько физических.
func writeRow(sb *strings.Builder, cells []string, widths []int) {
	wrapped := make([][]string, len(widths))
	height := 1
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = strings.ReplaceAll(cells[i], "\n", " ")
		}
		wrapped[i] = wrapString(cell, w)
		if len(wrapped[i]) > height {
			height = len(wrapped[i])
		}
	}

	for line := 0; line < height; line++ {
		for i, w := range widths {
			part := ""
			if line < len(wrapped[i]) {
				part = wrapped[i][line]
			}
			sb.WriteString("| ")
			sb.WriteString(part)
			sb.WriteString(padding(part, w))
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}
}

// padding возвращает пробелы, дополняющие строку до ширины колонки.
func padding(s string, colWidth int) string {
	if n := colWidth - runewidth.StringWidth(s); n > 0 {
		return strings.Repeat(" ", n)
	}
	return ""
}

// wrapString переносит строку по границам слов с учетом ширины символов.
// Слово длиннее колонки разбивается посередине.
func wrapString(s string, width int) []string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}

	var lines []string
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var currentLine strings.Builder
	lineWidth := 0
	for _, word := range words {
		wordWidth := runewidth.StringWidth(word)

		if wordWidth > width {
			if currentLine.Len() > 0 {
				lines = append(lines, currentLine.String())
				currentLine.Reset()
				lineWidth = 0
			}
			chunks := breakWord(word, width)
			lines = append(lines, chunks[:len(chunks)-1]...)
			last := chunks[len(chunks)-1]
			currentLine.WriteString(last)
			lineWidth = runewidth.StringWidth(last)
			continue
		}

		if lineWidth > 0 && lineWidth+1+wordWidth > width {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if currentLine.Len() > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}
	return lines
}

// breakWord режет слово на куски не шире width.
func breakWord(word string, width int) []string {
	var chunks []string
	runes := []rune(word)
	for len(runes) > 0 {
		i, w := 0, 0
		for i < len(runes) {
			rw := runewidth.RuneWidth(runes[i])
			if w+rw > width && i > 0 {
				break
			}
			w += rw
			i++
		}
		chunks = append(chunks, string(runes[:i]))
		runes = runes[i:]
	}
	return chunks
}
