package ports

import (
	"context"
	"whatsapp-chat-analyzer/internal/domain"
)

// DataSource определяет интерфейс для получения исходных данных чата.
type DataSource interface {
	// Fetch загружает данные из источника и возвращает их в виде байтового среза.
	Fetch() ([]byte, error)
}

// Parser определяет интерфейс для разбора текстового экспорта чата.
type Parser interface {
	// Parse преобразует сырой текст в упорядоченную последовательность записей.
	Parse(data []byte) (*domain.Transcript, error)
}

// Analyzer определяет операции агрегации над записями транскрипта.
// Все операции - чистые функции: входная последовательность не изменяется.
type Analyzer interface {
	MessageStats(records []domain.MessageRecord, filter string) domain.MessageStats
	MonthlyTimeline(records []domain.MessageRecord, filter string) []domain.MonthlyPoint
	DailyTimeline(records []domain.MessageRecord, filter string) []domain.DailyPoint
	WeekActivityMap(records []domain.MessageRecord, filter string) []domain.KeyCount
	MonthActivityMap(records []domain.MessageRecord, filter string) []domain.KeyCount
	ActivityHeatmap(records []domain.MessageRecord, filter string) domain.Heatmap
	MostBusyUsers(records []domain.MessageRecord, filter string) domain.BusyUsers
	MostCommonWords(records []domain.MessageRecord, filter string) []domain.KeyCount
	MostFrequentEmojis(records []domain.MessageRecord, filter string) []domain.KeyCount
	BuildReport(records []domain.MessageRecord, filter string) *domain.Report
}

// EventPublisher публикует события о разобранных транскриптах.
type EventPublisher interface {
	PublishTranscriptParsed(ctx context.Context, event domain.TranscriptParsedEvent) error
	Close() error
}

// Exporter определяет интерфейс для вывода отчета.
type Exporter interface {
	// Export принимает готовый отчет и выводит его.
	Export(report *domain.Report) error
}
