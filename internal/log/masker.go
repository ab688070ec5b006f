package log

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// MaskingHandler - обертка для slog.Handler, которая маскирует токены бота
// и номера телефонов в логах. Авторы в экспорте WhatsApp часто записаны номерами.
type MaskingHandler struct {
	handler slog.Handler
}

// NewMaskingHandler создает новый обработчик с маскировкой
func NewMaskingHandler(handler slog.Handler) *MaskingHandler {
	return &MaskingHandler{
		handler: handler,
	}
}

var (
	// токены в формате botID:token, где ID - числа, token - буквенно-цифровой
	telegramTokenRegex = regexp.MustCompile(`(\bbot\d+:[A-Za-z0-9_-]{35,})`)
	// международные номера: +7 912 345-67-89, +1 (555) 123-4567, +491701234567
	phoneRegex = regexp.MustCompile(`\+\d[\d ().-]{6,}\d`)
)

// maskSensitive заменяет токены и номера телефонов на маску.
// От номера остаются две последние цифры, чтобы записи можно было различать.
func maskSensitive(text string) string {
	text = telegramTokenRegex.ReplaceAllString(text, "bot***:***masked-token***")
	return phoneRegex.ReplaceAllStringFunc(text, func(phone string) string {
		var digits strings.Builder
		for _, r := range phone {
			if r >= '0' && r <= '9' {
				digits.WriteRune(r)
			}
		}
		d := digits.String()
		return "+***" + d[len(d)-2:]
	})
}

// Enabled реализует интерфейс slog.Handler
func (h *MaskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle реализует интерфейс slog.Handler
func (h *MaskingHandler) Handle(ctx context.Context, record slog.Record) error {
	// Новая запись без атрибутов: исходные добавляются уже замаскированными
	r := slog.NewRecord(record.Time, record.Level, maskSensitive(record.Message), record.PC)

	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(slog.Attr{
			Key:   a.Key,
			Value: maskAttributeValue(a.Value),
		})
		return true
	})

	return h.handler.Handle(ctx, r)
}

// WithAttrs реализует интерфейс slog.Handler
func (h *MaskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	maskedAttrs := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		maskedAttrs[i] = slog.Attr{
			Key:   attr.Key,
			Value: maskAttributeValue(attr.Value),
		}
	}
	return &MaskingHandler{
		handler: h.handler.WithAttrs(maskedAttrs),
	}
}

// WithGroup реализует интерфейс slog.Handler
func (h *MaskingHandler) WithGroup(name string) slog.Handler {
	return &MaskingHandler{
		handler: h.handler.WithGroup(name),
	}
}

// maskAttributeValue рекурсивно маскирует значения атрибутов
func maskAttributeValue(value slog.Value) slog.Value {
	switch value.Kind() {
	case slog.KindString:
		return slog.StringValue(maskSensitive(value.String()))
	case slog.KindAny:
		// Ошибки часто содержат URL с токеном
		if err, ok := value.Any().(error); ok {
			return slog.StringValue(maskSensitive(err.Error()))
		}
		if ss, ok := value.Any().([]string); ok {
			masked := make([]string, len(ss))
			for i, s := range ss {
				masked[i] = maskSensitive(s)
			}
			return slog.AnyValue(masked)
		}
		return value
	case slog.KindGroup:
		group := value.Group()
		maskedGroup := make([]slog.Attr, len(group))
		for i, attr := range group {
			maskedGroup[i] = slog.Attr{
				Key:   attr.Key,
				Value: maskAttributeValue(attr.Value),
			}
		}
		return slog.GroupValue(maskedGroup...)
	default:
		return value
	}
}

// NewMaskedLogger создает новый экземпляр slog.Logger с маскировкой
func NewMaskedLogger(handler slog.Handler) *slog.Logger {
	return slog.New(NewMaskingHandler(handler))
}
