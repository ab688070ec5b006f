package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/xerrors"

	"whatsapp-chat-analyzer/internal/adapters/source"
	"whatsapp-chat-analyzer/internal/cache"
	"whatsapp-chat-analyzer/internal/domain"
	"whatsapp-chat-analyzer/internal/pkg/config"
	"whatsapp-chat-analyzer/internal/ports"
)

// ErrNotCached возвращается, когда транскрипта с указанным хешем нет в кэше.
var ErrNotCached = errors.New("транскрипт с таким хешем не найден в кэше")

// Result - итог обработки одного экспорта.
type Result struct {
	Hash       string
	Transcript *domain.Transcript
	// Cached сообщает, что транскрипт взят из кэша без повторного разбора.
	Cached bool
}

// AnalyzeChatUseCase инкапсулирует бизнес-логику обработки файла экспорта WhatsApp.
type AnalyzeChatUseCase struct {
	cfg        *config.Config
	parser     ports.Parser
	analyzer   ports.Analyzer
	cacheStore cache.Store
	publisher  ports.EventPublisher
}

// NewAnalyzeChatUseCase создает новый экземпляр AnalyzeChatUseCase.
// nil publisher отключает публикацию событий.
func NewAnalyzeChatUseCase(
	cfg *config.Config,
	parser ports.Parser,
	analyzer ports.Analyzer,
	cacheStore cache.Store,
	publisher ports.EventPublisher,
) *AnalyzeChatUseCase {
	return &AnalyzeChatUseCase{
		cfg:        cfg,
		parser:     parser,
		analyzer:   analyzer,
		cacheStore: cacheStore,
		publisher:  publisher,
	}
}

// ProcessChat разбирает файл экспорта. Повторная загрузка того же файла
// обслуживается из кэша по SHA256 содержимого.
func (uc *AnalyzeChatUseCase) ProcessChat(ctx context.Context, filePath string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fileHash, err := cache.CalculateFileHash(filePath)
	if err != nil {
		return nil, xerrors.Errorf("не удалось вычислить хеш файла %s: %w", filePath, err)
	}

	if cachedItem, found := uc.cacheStore.Get(fileHash); found {
		slog.Info("Попадание в кеш", "hash", fileHash)
		return &Result{Hash: fileHash, Transcript: cachedItem.Transcript, Cached: true}, nil
	}

	slog.Info("Обработка файла", "path", filePath, "hash", fileHash)
	data, err := source.NewCliSource(filePath).Fetch()
	if err != nil {
		return nil, xerrors.Errorf("не удалось извлечь данные из %s: %w", filePath, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	transcript, err := uc.parser.Parse(data)
	if err != nil {
		return nil, xerrors.Errorf("не удалось разобрать переписку: %w", err)
	}
	slog.Info("Разобран транскрипт",
		"hash", fileHash,
		"records", len(transcript.Records),
		"unresolved", transcript.Unresolved,
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ttl := uc.cfg.Processing.CacheTTL
	if err := uc.cacheStore.Put(fileHash, transcript, ttl); err != nil {
		// Без кэша результат все равно корректен
		slog.Warn("Не удалось кешировать транскрипт", "hash", fileHash, "error", err)
	} else {
		slog.Info("Транскрипт кеширован", "hash", fileHash, "ttl", ttl.String())
	}

	uc.publishParsed(ctx, fileHash, transcript)

	return &Result{Hash: fileHash, Transcript: transcript}, nil
}

// ProcessCached возвращает ранее разобранный транскрипт по хешу файла.
func (uc *AnalyzeChatUseCase) ProcessCached(hash string) (*Result, error) {
	cachedItem, found := uc.cacheStore.Get(hash)
	if !found {
		return nil, ErrNotCached
	}
	return &Result{Hash: hash, Transcript: cachedItem.Transcript, Cached: true}, nil
}

// Report строит отчет по транскрипту для автора или "Overall".
func (uc *AnalyzeChatUseCase) Report(transcript *domain.Transcript, filter string) *domain.Report {
	return uc.analyzer.BuildReport(transcript.Records, filter)
}

func (uc *AnalyzeChatUseCase) publishParsed(ctx context.Context, hash string, transcript *domain.Transcript) {
	if uc.publisher == nil {
		return
	}
	event := domain.TranscriptParsedEvent{
		Hash:       hash,
		Records:    len(transcript.Records),
		Unresolved: transcript.Unresolved,
		Authors:    transcript.Authors(),
		ParsedAt:   time.Now().UTC(),
	}
	if err := uc.publisher.PublishTranscriptParsed(ctx, event); err != nil {
		slog.Warn("Не удалось опубликовать событие", "hash", hash, "error", err)
	}
}
