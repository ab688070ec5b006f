package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"
)

func TestHourBucket(t *testing.T) {
	testCases := map[int]string{
		0:  "00:00-01:00",
		9:  "09:00-10:00",
		12: "12:00-13:00",
		23: "23:00-00:00",
	}
	for hour, want := range testCases {
		if got := HourBucket(hour); got != want {
			t.Errorf("Для часа %d ожидалось '%s', получено '%s'", hour, want, got)
		}
	}
}

func TestNewMessageRecord(t *testing.T) {
	t.Run("Производные поля заполняются из даты", func(t *testing.T) {
		ts := time.Date(2023, time.December, 31, 23, 45, 0, 0, time.UTC)
		rec := NewMessageRecord(&ts, "Alice", "happy new year")

		if !rec.Resolved() {
			t.Fatal("Ожидалась запись с разобранной датой")
		}
		if rec.Date != "2023-12-31" {
			t.Errorf("Ожидалась дата '2023-12-31', получено '%s'", rec.Date)
		}
		if rec.Year != 2023 || rec.MonthNum != 12 || rec.Month != "December" {
			t.Errorf("Неверные поля месяца: %d %d %s", rec.Year, rec.MonthNum, rec.Month)
		}
		if rec.Day != 31 || rec.DayName != "Sunday" {
			t.Errorf("Неверные поля дня: %d %s", rec.Day, rec.DayName)
		}
		if rec.Hour != 23 || rec.Minute != 45 {
			t.Errorf("Неверное время: %d:%d", rec.Hour, rec.Minute)
		}
		if rec.HourBucket != "23:00-00:00" {
			t.Errorf("Ожидался интервал '23:00-00:00', получено '%s'", rec.HourBucket)
		}
	})

	t.Run("Запись без даты", func(t *testing.T) {
		rec := NewMessageRecord(nil, SystemAuthor, "Bob left")

		if rec.Resolved() {
			t.Error("Ожидалась запись без даты")
		}
		if !rec.IsSystem() {
			t.Error("Ожидалась служебная запись")
		}
		if rec.Date != "" || rec.HourBucket != "" || rec.Year != 0 {
			t.Errorf("Ожидались пустые производные поля, получено %+v", rec)
		}
	})
}

func TestMessageRecordJSON(t *testing.T) {
	t.Run("Время пишется без часового пояса", func(t *testing.T) {
		ts := time.Date(2024, time.January, 1, 9, 5, 30, 0, time.UTC)
		data, err := json.Marshal(NewMessageRecord(&ts, "Alice", "hi"))
		if err != nil {
			t.Fatalf("Неожиданная ошибка: %v", err)
		}

		var raw map[string]interface{}
		if err := json.Unmarshal(data, &raw); err != nil {
			t.Fatalf("Неожиданная ошибка: %v", err)
		}
		if raw["timestamp"] != "2024-01-01T09:05:30" {
			t.Errorf("Ожидалось '2024-01-01T09:05:30', получено %v", raw["timestamp"])
		}
		if raw["author"] != "Alice" || raw["period"] != "09:00-10:00" {
			t.Errorf("Неверные поля записи: %v", raw)
		}

		var back MessageRecord
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("Неожиданная ошибка: %v", err)
		}
		if !reflect.DeepEqual(back, NewMessageRecord(&ts, "Alice", "hi")) {
			t.Errorf("Запись изменилась после чтения: %+v", back)
		}
	})

	t.Run("Неразобранная дата пишется как null", func(t *testing.T) {
		data, err := json.Marshal(NewMessageRecord(nil, SystemAuthor, "Bob left"))
		if err != nil {
			t.Fatalf("Неожиданная ошибка: %v", err)
		}
		var back MessageRecord
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("Неожиданная ошибка: %v", err)
		}
		if back.Timestamp != nil || back.Author != SystemAuthor {
			t.Errorf("Ожидалась запись без даты, получено %+v", back)
		}
	})

	t.Run("Некорректное время", func(t *testing.T) {
		var rec MessageRecord
		if err := json.Unmarshal([]byte(`{"timestamp":"yesterday"}`), &rec); err == nil {
			t.Error("Ожидалась ошибка")
		}
	})
}

func TestTranscriptAuthors(t *testing.T) {
	transcript := &Transcript{Records: []MessageRecord{
		NewMessageRecord(nil, "Charlie", "hi"),
		NewMessageRecord(nil, SystemAuthor, "Alice joined"),
		NewMessageRecord(nil, "Alice", "hello"),
		NewMessageRecord(nil, "Charlie", "again"),
	}}

	want := []string{"Alice", "Charlie"}
	if got := transcript.Authors(); !reflect.DeepEqual(got, want) {
		t.Errorf("Ожидались авторы %v, получено %v", want, got)
	}

	empty := &Transcript{}
	if got := empty.Authors(); len(got) != 0 {
		t.Errorf("Ожидался пустой список авторов, получено %v", got)
	}
}

func TestParseError(t *testing.T) {
	t.Run("StructureMismatch", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", &ParseError{Kind: KindStructureMismatch, Tokens: 4, Bodies: 3})

		if !errors.Is(err, ErrStructureMismatch) {
			t.Error("Ожидалось совпадение с ErrStructureMismatch")
		}
		if errors.Is(err, ErrNoValidDates) {
			t.Error("Не ожидалось совпадение с ErrNoValidDates")
		}
		kind, ok := ParseErrorKindOf(err)
		if !ok || kind != KindStructureMismatch {
			t.Errorf("Ожидался вид StructureMismatch, получено '%s'", kind)
		}
		want := "mismatch between the number of messages (3) and dates (4), please check the data format"
		if err.(interface{ Unwrap() error }).Unwrap().Error() != want {
			t.Errorf("Неожиданное сообщение: %v", err)
		}
	})

	t.Run("Обычная ошибка не является ParseError", func(t *testing.T) {
		if _, ok := ParseErrorKindOf(errors.New("boom")); ok {
			t.Error("Не ожидался ParseError")
		}
	})
}
