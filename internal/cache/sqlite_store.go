package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"whatsapp-chat-analyzer/internal/domain"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS transcripts (
    hash        TEXT PRIMARY KEY,
    records     INTEGER NOT NULL DEFAULT 0,
    unresolved  INTEGER NOT NULL DEFAULT 0,
    payload     BLOB NOT NULL,
    created_at  INTEGER NOT NULL,
    expires_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS transcripts_expires_at ON transcripts(expires_at);
`

// SQLiteStore хранит разобранные транскрипты в файле SQLite,
// поэтому кэш переживает перезапуск сервера.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore открывает (или создает) базу по указанному пути.
func OpenSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Одно соединение: запись в SQLite все равно сериализуется
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get извлекает транскрипт по хешу файла. Просроченные записи не возвращаются.
func (s *SQLiteStore) Get(key string) (*CacheItem, bool) {
	var (
		payload   []byte
		expiresAt int64
	)
	err := s.db.QueryRow(
		"SELECT payload, expires_at FROM transcripts WHERE hash = ?",
		key,
	).Scan(&payload, &expiresAt)
	if err != nil {
		// Любая ошибка чтения равносильна промаху: транскрипт будет разобран заново
		return nil, false
	}

	expires := time.Unix(0, expiresAt)
	if time.Now().After(expires) {
		return nil, false
	}

	var transcript domain.Transcript
	if err := json.Unmarshal(payload, &transcript); err != nil {
		return nil, false
	}

	return &CacheItem{Transcript: &transcript, ExpiresAt: expires}, true
}

// Put сохраняет транскрипт, заменяя предыдущую запись с тем же хешем.
func (s *SQLiteStore) Put(key string, transcript *domain.Transcript, ttl time.Duration) error {
	if transcript == nil {
		return fmt.Errorf("нельзя кэшировать пустой транскрипт")
	}

	payload, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}

	now := time.Now()
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO transcripts (hash, records, unresolved, payload, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		key, len(transcript.Records), transcript.Unresolved, payload, now.UnixNano(), now.Add(ttl).UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("store transcript %s: %w", key, err)
	}
	return nil
}

// CleanupExpired удаляет просроченные транскрипты.
func (s *SQLiteStore) CleanupExpired() error {
	if _, err := s.db.Exec("DELETE FROM transcripts WHERE expires_at < ?", time.Now().UnixNano()); err != nil {
		return fmt.Errorf("cleanup expired transcripts: %w", err)
	}
	return nil
}

// Count возвращает количество сохраненных транскриптов.
func (s *SQLiteStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM transcripts").Scan(&n)
	return n, err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
