package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

const (
	// SystemAuthor - автор служебных записей (вход/выход участников, смена темы и т.д.),
	// у которых нет префикса "автор: ".
	SystemAuthor = "SYSTEM"
	// OverallFilter означает отсутствие фильтра по автору.
	OverallFilter = "Overall"
	// DefaultMediaPlaceholder - текст, который экспорт подставляет вместо вложений.
	DefaultMediaPlaceholder = "<Media omitted>"
	// LocalTimeLayout - формат Timestamp в JSON. Экспорт не содержит часового пояса,
	// поэтому время пишется без смещения.
	LocalTimeLayout = "2006-01-02T15:04:05"
)

// MessageRecord представляет одну запись транскрипта.
type MessageRecord struct {
	// Timestamp равен nil, если дату не удалось разобрать ни одним из форматов.
	Timestamp  *time.Time `json:"timestamp"`
	Author     string     `json:"author"`
	Message    string     `json:"message"`
	Date       string     `json:"date,omitempty"`
	Year       int        `json:"year,omitempty"`
	Month      string     `json:"month,omitempty"`
	MonthNum   int        `json:"month_num,omitempty"`
	Day        int        `json:"day,omitempty"`
	DayName    string     `json:"day_name,omitempty"`
	Hour       int        `json:"hour"`
	Minute     int        `json:"minute"`
	HourBucket string     `json:"period,omitempty"`
}

// Resolved сообщает, удалось ли разобрать дату записи.
func (r MessageRecord) Resolved() bool {
	return r.Timestamp != nil
}

type messageRecordJSON MessageRecord

// MarshalJSON пишет Timestamp в формате LocalTimeLayout, null для неразобранной даты.
func (r MessageRecord) MarshalJSON() ([]byte, error) {
	var ts *string
	if r.Timestamp != nil {
		s := r.Timestamp.Format(LocalTimeLayout)
		ts = &s
	}
	return json.Marshal(struct {
		messageRecordJSON
		Timestamp *string `json:"timestamp"`
	}{messageRecordJSON(r), ts})
}

// UnmarshalJSON читает Timestamp, записанный MarshalJSON.
func (r *MessageRecord) UnmarshalJSON(data []byte) error {
	var aux struct {
		*messageRecordJSON
		Timestamp *string `json:"timestamp"`
	}
	aux.messageRecordJSON = (*messageRecordJSON)(r)
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Timestamp = nil
	if aux.Timestamp != nil {
		t, err := time.Parse(LocalTimeLayout, *aux.Timestamp)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", *aux.Timestamp, err)
		}
		r.Timestamp = &t
	}
	return nil
}

// IsSystem сообщает, является ли запись служебной.
func (r MessageRecord) IsSystem() bool {
	return r.Author == SystemAuthor
}

// NewMessageRecord собирает запись и заполняет производные календарные поля.
func NewMessageRecord(ts *time.Time, author, message string) MessageRecord {
	rec := MessageRecord{
		Timestamp: ts,
		Author:    author,
		Message:   message,
	}
	if ts == nil {
		return rec
	}
	t := *ts
	rec.Date = t.Format("2006-01-02")
	rec.Year = t.Year()
	rec.Month = t.Month().String()
	rec.MonthNum = int(t.Month())
	rec.Day = t.Day()
	rec.DayName = t.Weekday().String()
	rec.Hour = t.Hour()
	rec.Minute = t.Minute()
	rec.HourBucket = HourBucket(t.Hour())
	return rec
}

// HourBucket возвращает метку часового интервала, например "09:00-10:00".
// Час 23 переходит через полночь: "23:00-00:00".
func HourBucket(hour int) string {
	return fmt.Sprintf("%02d:00-%02d:00", hour, (hour+1)%24)
}

// Transcript - неизменяемый результат разбора одного экспорта.
type Transcript struct {
	Records []MessageRecord `json:"records"`
	// Unresolved - количество записей без разобранной даты.
	Unresolved int `json:"unresolved"`
}

// Authors возвращает отсортированный список авторов без служебного автора.
// Список вычисляется при каждом вызове и не кэшируется.
func (t *Transcript) Authors() []string {
	seen := make(map[string]bool)
	var authors []string
	for _, rec := range t.Records {
		if rec.IsSystem() || seen[rec.Author] {
			continue
		}
		seen[rec.Author] = true
		authors = append(authors, rec.Author)
	}
	sort.Strings(authors)
	return authors
}
