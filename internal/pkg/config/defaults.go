package config

import "time"

// Default values for configuration.
const (
	// Server defaults
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxUploadSizeMB = 20

	// Processing defaults
	DefaultTaskTimeout     = 120 * time.Second
	DefaultCacheTTL        = 60 * time.Minute
	DefaultTaskTTL         = 2 * time.Hour
	DefaultCleanupInterval = 10 * time.Minute

	// Analysis defaults
	DefaultMediaPlaceholder = "<Media omitted>"
	DefaultTopUsers         = 5
	DefaultTopWords         = 20

	// Storage defaults
	StorageMemory     = "memory"
	StorageSQLite     = "sqlite"
	DefaultStorage    = StorageMemory
	DefaultSQLitePath = "data/transcripts.db"

	// Events defaults
	DefaultEventsSubject = "whatsapp.transcript.parsed"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
