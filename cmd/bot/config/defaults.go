package config

import "time"

// Значения по умолчанию для конфигурации бота.
const (
	DefaultConfigFile             = "bot_config.yml"
	DefaultBackendURL             = "http://localhost:8080"
	DefaultPollingIntervalSeconds = 2
	DefaultHTTPTimeoutSeconds     = 30
	DefaultMaxFileSizeMB          = 20
	DefaultTaskTimeout            = 5 * time.Minute

	DefaultKeyColumnWidth   = 22
	DefaultCountColumnWidth = 8
	DefaultTopRows          = 10

	DefaultPidFile = "whatsapp-bot.pid"
	DefaultLogFile = "whatsapp-bot.log"
)
