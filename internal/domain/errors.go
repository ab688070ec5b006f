package domain

import (
	"errors"
	"fmt"
)

// ParseErrorKind - вид фатальной ошибки разбора транскрипта.
type ParseErrorKind string

const (
	// KindStructureMismatch - число найденных меток времени не совпадает с числом сообщений.
	KindStructureMismatch ParseErrorKind = "StructureMismatch"
	// KindNoValidDates - ни одна метка времени не разобралась.
	KindNoValidDates ParseErrorKind = "NoValidDates"
)

var (
	ErrStructureMismatch = errors.New("structure mismatch")
	ErrNoValidDates      = errors.New("no valid dates")
)

// ParseError описывает отказ от разбора всего транскрипта.
type ParseError struct {
	Kind   ParseErrorKind
	Tokens int
	Bodies int
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case KindStructureMismatch:
		return fmt.Sprintf("mismatch between the number of messages (%d) and dates (%d), please check the data format", e.Bodies, e.Tokens)
	case KindNoValidDates:
		return "no valid dates found in the provided data, please check the date format"
	default:
		return fmt.Sprintf("parse error: %s", e.Kind)
	}
}

// Is позволяет сравнивать ошибку с ErrStructureMismatch и ErrNoValidDates через errors.Is.
func (e *ParseError) Is(target error) bool {
	switch e.Kind {
	case KindStructureMismatch:
		return target == ErrStructureMismatch
	case KindNoValidDates:
		return target == ErrNoValidDates
	}
	return false
}

// ParseErrorKindOf извлекает вид ошибки разбора из цепочки ошибок.
func ParseErrorKindOf(err error) (ParseErrorKind, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}
