package parser

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"whatsapp-chat-analyzer/internal/domain"
	"whatsapp-chat-analyzer/internal/ports"
)

// timestampToken - метка вида [D/M/Y, H:MM(:SS)? (AM|PM)?].
const timestampToken = `\[\d{1,2}/\d{1,2}/\d{2,4},\s\d{1,2}:\d{2}(?::\d{2})?\s?(?:AM|PM|am|pm)?\]`

var (
	// tokenRegex находит метки в любом месте текста.
	tokenRegex = regexp.MustCompile(timestampToken)
	// entryRegex находит только метки в начале строки: они открывают новую запись.
	// Мобильные экспорты иногда ставят перед меткой символ направления текста,
	// а при копировании строки бывают с отступом.
	entryRegex = regexp.MustCompile(`(?m)^[ \t]*[\x{200E}\x{200F}]?(` + timestampToken + `)`)

	// BOM удаляется целиком: в начале файла он сдвигает первую метку с начала строки.
	nbspReplacer = strings.NewReplacer("\u00a0", " ", "\u202f", " ", "\u2007", " ", "\ufeff", "")
)

// dateLayouts - форматы дат в порядке приоритета.
var dateLayouts = buildLayouts()

func buildLayouts() []string {
	dates := []string{"2/1/06", "1/2/06", "2/1/2006", "1/2/2006"}
	times := []string{"3:04:05 PM", "3:04 PM", "15:04:05", "15:04"}
	layouts := make([]string, 0, len(dates)*len(times))
	for _, t := range times {
		for _, d := range dates {
			layouts = append(layouts, d+", "+t)
		}
	}
	return layouts
}

// TranscriptParser разбирает текстовый экспорт чата WhatsApp.
type TranscriptParser struct {
	layouts []string
}

// NewTranscriptParser создает новый экземпляр TranscriptParser.
func NewTranscriptParser() ports.Parser {
	return &TranscriptParser{layouts: dateLayouts}
}

// Parse разбивает текст на записи по меткам времени.
//
// Текст до первой метки (преамбула экспорта) отбрасывается. Строки продолжения без
// собственной метки остаются в теле предыдущей записи. Записи с неразобранной датой
// сохраняются с Timestamp == nil; если не разобралась ни одна дата, весь транскрипт
// отклоняется.
func (p *TranscriptParser) Parse(data []byte) (*domain.Transcript, error) {
	text := nbspReplacer.Replace(string(data))

	tokens, bodies := segment(text)
	if len(tokens) != len(bodies) {
		return nil, &domain.ParseError{
			Kind:   domain.KindStructureMismatch,
			Tokens: len(tokens),
			Bodies: len(bodies),
		}
	}

	records := make([]domain.MessageRecord, 0, len(bodies))
	unresolved := 0
	for i, body := range bodies {
		var ts *time.Time
		if t, ok := p.ResolveTimestamp(strings.Trim(tokens[i], "[]")); ok {
			ts = &t
		} else {
			unresolved++
		}
		author, message := SplitAuthor(body)
		records = append(records, domain.NewMessageRecord(ts, author, message))
	}

	if unresolved == len(records) {
		return nil, &domain.ParseError{
			Kind:   domain.KindNoValidDates,
			Tokens: len(tokens),
			Bodies: len(bodies),
		}
	}

	return &domain.Transcript{Records: records, Unresolved: unresolved}, nil
}

// segment возвращает все найденные метки и тела записей.
// Метка в середине строки попадает в tokens, но не открывает запись,
// поэтому длины срезов расходятся.
func segment(text string) (tokens []string, bodies []string) {
	for _, loc := range tokenRegex.FindAllStringIndex(text, -1) {
		tokens = append(tokens, text[loc[0]:loc[1]])
	}

	entries := entryRegex.FindAllStringSubmatchIndex(text, -1)
	for i, loc := range entries {
		end := len(text)
		if i+1 < len(entries) {
			end = entries[i+1][0]
		}
		bodies = append(bodies, text[loc[3]:end])
	}
	return tokens, bodies
}

// ResolveTimestamp пробует форматы по порядку и возвращает первый успешный результат.
func (p *TranscriptParser) ResolveTimestamp(raw string) (time.Time, bool) {
	s := canonicalDateTime(raw)
	for _, layout := range p.layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// canonicalDateTime схлопывает пробелы и приводит AM/PM к виду " AM"/" PM".
func canonicalDateTime(raw string) string {
	s := strings.ToUpper(strings.Join(strings.Fields(raw), " "))
	for _, m := range []string{"AM", "PM"} {
		if strings.HasSuffix(s, m) && !strings.HasSuffix(s, " "+m) {
			s = strings.TrimSuffix(s, m) + " " + m
		}
	}
	return s
}

// SplitAuthor отделяет автора по первому ": " после хотя бы одного символа.
// Тела без разделителя считаются служебными сообщениями. Имена авторов с ": "
// внутри разбиваются неверно: это свойство формата экспорта.
func SplitAuthor(body string) (author, message string) {
	body = strings.TrimLeftFunc(body, unicode.IsSpace)
	if len(body) > 1 {
		if idx := strings.Index(body[1:], ": "); idx >= 0 {
			idx++
			return body[:idx], strings.TrimSpace(body[idx+2:])
		}
	}
	return domain.SystemAuthor, strings.TrimSpace(body)
}
