package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"whatsapp-chat-analyzer/internal/domain"
)

// CacheItem представляет кэшированный результат разбора
type CacheItem struct {
	Transcript *domain.Transcript
	ExpiresAt  time.Time
}

// Store - хранилище разобранных транскриптов, ключом служит хеш файла.
type Store interface {
	Get(key string) (*CacheItem, bool)
	Put(key string, transcript *domain.Transcript, ttl time.Duration) error
	CleanupExpired() error
	Close() error
}

// CacheStore хранит результаты разбора в памяти процесса
type CacheStore struct {
	cache map[string]*CacheItem
	mutex sync.RWMutex
}

// NewCacheStore создает новый экземпляр CacheStore
func NewCacheStore() *CacheStore {
	return &CacheStore{
		cache: make(map[string]*CacheItem),
	}
}

// Get извлекает кэшированный элемент по его ключу (хешу)
func (cs *CacheStore) Get(key string) (*CacheItem, bool) {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	item, exists := cs.cache[key]
	if !exists || time.Now().After(item.ExpiresAt) {
		// Элемент не существует или срок его действия истек
		return nil, false
	}

	return item, true
}

// Put сохраняет транскрипт в кэш с указанным сроком действия
func (cs *CacheStore) Put(key string, transcript *domain.Transcript, ttl time.Duration) error {
	if transcript == nil {
		return fmt.Errorf("нельзя кэшировать пустой транскрипт")
	}

	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.cache[key] = &CacheItem{
		Transcript: transcript,
		ExpiresAt:  time.Now().Add(ttl),
	}
	return nil
}

// CleanupExpired удаляет просроченные элементы из кэша
func (cs *CacheStore) CleanupExpired() error {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	now := time.Now()
	for key, item := range cs.cache {
		if now.After(item.ExpiresAt) {
			delete(cs.cache, key)
		}
	}
	return nil
}

// Len возвращает количество элементов, включая еще не удаленные просроченные.
func (cs *CacheStore) Len() int {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()
	return len(cs.cache)
}

// Close ничего не делает: память освобождается сборщиком мусора.
func (cs *CacheStore) Close() error {
	return nil
}

// StartCleanupTicker запускает таймер для периодической очистки просроченных элементов
func StartCleanupTicker(ctx context.Context, store Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := store.CleanupExpired(); err != nil {
					slog.Warn("Не удалось очистить кэш", "error", err)
				}
			}
		}
	}()
}

// CalculateFileHash вычисляет хеш SHA256 содержимого файла
func CalculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("не удалось открыть файл: %w", err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("не удалось прочитать файл: %w", err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// CalculateDataHash вычисляет хеш SHA256 данных в памяти.
// Для одинакового содержимого результат совпадает с CalculateFileHash.
func CalculateDataHash(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
