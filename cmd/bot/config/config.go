package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// ColumnWidths определяет ширину колонок для текстового вывода.
type ColumnWidths struct {
	Key   int `yaml:"key"`
	Count int `yaml:"count"`
	// TopRows ограничивает число строк в каждой таблице сводки.
	TopRows int `yaml:"top_rows"`
}

// BotConfig содержит конфигурацию для Telegram-бота
type BotConfig struct {
	Token                  string        `yaml:"token"`
	BackendURL             string        `yaml:"backend_url"`
	PollingIntervalSeconds int           `yaml:"polling_interval_seconds"`
	HTTPTimeoutSeconds     int           `yaml:"http_timeout_seconds"`
	MaxFileSizeMB          int           `yaml:"max_file_size_mb"`
	TaskTimeout            time.Duration `yaml:"task_timeout"`
	Render                 ColumnWidths  `yaml:"render"`
}

// PollingInterval возвращает интервал опроса сервера.
func (c BotConfig) PollingInterval() time.Duration {
	return time.Duration(c.PollingIntervalSeconds) * time.Second
}

// HTTPTimeout возвращает таймаут запросов к серверу.
func (c BotConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// DaemonConfig описывает запуск бота в фоне.
type DaemonConfig struct {
	Enabled bool   `yaml:"enabled"`
	PidFile string `yaml:"pid_file"`
	LogFile string `yaml:"log_file"`
	WorkDir string `yaml:"work_dir"`
}

// LoggingConfig содержит конфигурацию логирования
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config является оберткой для соответствия структуре YAML файла.
type Config struct {
	Bot     BotConfig     `yaml:"bot"`
	Daemon  DaemonConfig  `yaml:"daemon"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoadConfig загружает конфигурацию бота из указанного файла.
// Токен можно переопределить переменной окружения TELEGRAM_BOT_TOKEN.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read bot config file %s: %w", filename, err)
	}
	return Parse(data)
}

// Parse разбирает YAML и заполняет значения по умолчанию.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bot config: %w", err)
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Bot.Token = token
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	bot := &c.Bot
	if bot.BackendURL == "" {
		bot.BackendURL = DefaultBackendURL
	}
	if bot.PollingIntervalSeconds == 0 {
		bot.PollingIntervalSeconds = DefaultPollingIntervalSeconds
	}
	if bot.HTTPTimeoutSeconds == 0 {
		bot.HTTPTimeoutSeconds = DefaultHTTPTimeoutSeconds
	}
	if bot.MaxFileSizeMB == 0 {
		bot.MaxFileSizeMB = DefaultMaxFileSizeMB
	}
	if bot.TaskTimeout == 0 {
		bot.TaskTimeout = DefaultTaskTimeout
	}
	if bot.Render.Key == 0 {
		bot.Render.Key = DefaultKeyColumnWidth
	}
	if bot.Render.Count == 0 {
		bot.Render.Count = DefaultCountColumnWidth
	}
	if bot.Render.TopRows == 0 {
		bot.Render.TopRows = DefaultTopRows
	}

	if c.Daemon.PidFile == "" {
		c.Daemon.PidFile = DefaultPidFile
	}
	if c.Daemon.LogFile == "" {
		c.Daemon.LogFile = DefaultLogFile
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// Validate проверяет корректность конфигурации бота.
func (c *BotConfig) Validate() error {
	if c.Token == "" || c.Token == "YOUR_TELEGRAM_BOT_TOKEN" {
		return fmt.Errorf("bot.token is not configured")
	}
	if c.BackendURL == "" {
		return fmt.Errorf("bot.backend_url cannot be empty")
	}
	if c.PollingIntervalSeconds <= 0 {
		return fmt.Errorf("bot.polling_interval_seconds must be positive")
	}
	if c.MaxFileSizeMB <= 0 {
		return fmt.Errorf("bot.max_file_size_mb must be positive")
	}
	if c.TaskTimeout <= 0 {
		return fmt.Errorf("bot.task_timeout must be positive")
	}
	return nil
}

// ValidateFull проверяет всю конфигурацию, включая логирование.
func (c *Config) ValidateFull() error {
	if err := c.Bot.Validate(); err != nil {
		return err
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	return nil
}
