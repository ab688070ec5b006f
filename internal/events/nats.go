package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"whatsapp-chat-analyzer/internal/domain"
	"whatsapp-chat-analyzer/internal/ports"
)

// SubjectTranscriptParsed - тема по умолчанию для событий о разобранных транскриптах.
const SubjectTranscriptParsed = "whatsapp.transcript.parsed"

// publisherConn - часть *nats.Conn, которая нужна издателю.
type publisherConn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSPublisher публикует события в NATS в виде JSON.
type NATSPublisher struct {
	conn    publisherConn
	subject string
	logger  *slog.Logger
}

// NewNATSPublisher подключается к NATS. Подключение повторяется в фоне,
// поэтому недоступный при старте сервер не мешает запуску.
func NewNATSPublisher(url, token, subject string, logger *slog.Logger) (ports.EventPublisher, error) {
	if subject == "" {
		subject = SubjectTranscriptParsed
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "events")

	opts := []nats.Option{
		nats.Name("whatsapp-chat-analyzer"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return newPublisher(nc, subject, logger), nil
}

func newPublisher(conn publisherConn, subject string, logger *slog.Logger) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: subject, logger: logger}
}

// PublishTranscriptParsed отправляет событие о разобранном транскрипте.
func (p *NATSPublisher) PublishTranscriptParsed(ctx context.Context, event domain.TranscriptParsedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}

	p.logger.Debug("event published", "subject", p.subject, "hash", event.Hash)
	return nil
}

// Close дожидается отправки буферизованных сообщений и закрывает соединение.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// NopPublisher используется, когда адрес NATS не настроен.
type NopPublisher struct{}

// NewNopPublisher возвращает издателя, который ничего не отправляет.
func NewNopPublisher() ports.EventPublisher {
	return NopPublisher{}
}

func (NopPublisher) PublishTranscriptParsed(context.Context, domain.TranscriptParsedEvent) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
