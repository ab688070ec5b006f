// Package config предоставляет управление конфигурацией приложения
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultConfigFile - файл конфигурации, который ищется в рабочем каталоге.
const DefaultConfigFile = "config.yml"

// Server содержит конфигурацию HTTP-сервера
type Server struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadSizeMB int64         `yaml:"max_upload_size_mb"`
}

// Processing содержит конфигурацию обработки
type Processing struct {
	TaskTimeout     time.Duration `yaml:"task_timeout"` // 0 - без ограничений
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	TaskTTL         time.Duration `yaml:"task_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// Analysis содержит параметры построения отчетов
type Analysis struct {
	MediaPlaceholder string `yaml:"media_placeholder"`
	TopUsers         int    `yaml:"top_users"`
	TopWords         int    `yaml:"top_words"`
}

// Storage определяет, где хранится кэш разобранных транскриптов
type Storage struct {
	Backend    string `yaml:"backend"` // memory, sqlite
	SQLitePath string `yaml:"sqlite_path"`
}

// Events содержит настройки публикации событий. Пустой NATSURL отключает публикацию.
type Events struct {
	NATSURL   string `yaml:"nats_url"`
	NATSToken string `yaml:"nats_token"`
	Subject   string `yaml:"subject"`
}

// Logging содержит конфигурацию логирования
type Logging struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Config содержит конфигурацию приложения
type Config struct {
	Server     Server     `yaml:"server"`
	Processing Processing `yaml:"processing"`
	Analysis   Analysis   `yaml:"analysis"`
	Storage    Storage    `yaml:"storage"`
	Events     Events     `yaml:"events"`
	Logging    Logging    `yaml:"logging"`
}

func defaultConfig() *Config {
	return &Config{
		Server: Server{
			Host:            DefaultServerHost,
			Port:            DefaultServerPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxUploadSizeMB: DefaultMaxUploadSizeMB,
		},
		Processing: Processing{
			TaskTimeout:     DefaultTaskTimeout,
			CacheTTL:        DefaultCacheTTL,
			TaskTTL:         DefaultTaskTTL,
			CleanupInterval: DefaultCleanupInterval,
		},
		Analysis: Analysis{
			MediaPlaceholder: DefaultMediaPlaceholder,
			TopUsers:         DefaultTopUsers,
			TopWords:         DefaultTopWords,
		},
		Storage: Storage{
			Backend:    DefaultStorage,
			SQLitePath: DefaultSQLitePath,
		},
		Events: Events{
			Subject: DefaultEventsSubject,
		},
		Logging: Logging{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// LoadConfig собирает конфигурацию: значения по умолчанию, затем config.yml,
// затем .env и переменные окружения.
func LoadConfig() (*Config, error) {
	return Load(DefaultConfigFile)
}

// Load работает как LoadConfig, но читает YAML из указанного файла.
func Load(path string) (*Config, error) {
	// Отсутствие .env файла не является ошибкой
	_ = godotenv.Load()

	cfg := defaultConfig()
	if err := loadFromYAML(path, cfg); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию из env: %w", err)
	}
	return cfg, nil
}

// loadFromYAML накладывает значения из YAML-файла поверх cfg.
// Отсутствующий файл не является ошибкой.
func loadFromYAML(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("не удалось разобрать YAML конфигурацию: %w", err)
	}
	return nil
}

// applyEnv переопределяет значения переменными окружения.
func applyEnv(cfg *Config) error {
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Storage.Backend = getEnv("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.SQLitePath = getEnv("SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Events.NATSURL = getEnv("NATS_URL", cfg.Events.NATSURL)
	cfg.Events.NATSToken = getEnv("NATS_TOKEN", cfg.Events.NATSToken)
	cfg.Events.Subject = getEnv("NATS_SUBJECT", cfg.Events.Subject)
	cfg.Analysis.MediaPlaceholder = getEnv("MEDIA_PLACEHOLDER", cfg.Analysis.MediaPlaceholder)
	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("недопустимый SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"TASK_TIMEOUT", &cfg.Processing.TaskTimeout},
		{"CACHE_TTL", &cfg.Processing.CacheTTL},
		{"TASK_TTL", &cfg.Processing.TaskTTL},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("недопустимый %s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	return nil
}

// Address возвращает адрес сервера в формате "host:port"
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate проверяет, являются ли значения конфигурации допустимыми
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port должен быть действительным номером порта (1-65535)")
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout должно быть положительным")
	}

	if c.Server.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("server.max_upload_size_mb должно быть положительным")
	}

	if c.Processing.TaskTimeout < 0 {
		return fmt.Errorf("processing.task_timeout должно быть неотрицательным (0 для отсутствия ограничений)")
	}

	if c.Processing.CacheTTL <= 0 {
		return fmt.Errorf("processing.cache_ttl должно быть положительным")
	}

	if c.Processing.TaskTTL <= 0 {
		return fmt.Errorf("processing.task_ttl должно быть положительным")
	}

	if c.Processing.CleanupInterval <= 0 {
		return fmt.Errorf("processing.cleanup_interval должно быть положительным")
	}

	if c.Analysis.MediaPlaceholder == "" {
		return fmt.Errorf("analysis.media_placeholder не может быть пустым")
	}

	if c.Analysis.TopUsers <= 0 || c.Analysis.TopWords <= 0 {
		return fmt.Errorf("analysis.top_users и analysis.top_words должны быть положительными")
	}

	switch c.Storage.Backend {
	case StorageMemory:
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path не может быть пустым для backend sqlite")
		}
	default:
		return fmt.Errorf("storage.backend должен быть одним из: memory, sqlite")
	}

	if c.Events.NATSURL != "" && c.Events.Subject == "" {
		return fmt.Errorf("events.subject не может быть пустым при заданном events.nats_url")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// all good
	default:
		return fmt.Errorf("logging.level должен быть одним из: debug, info, warn, error")
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format должен быть одним из: json, text")
	}

	return nil
}

// getEnv извлекает значение переменной окружения или возвращает значение по умолчанию, если она не установлена
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
