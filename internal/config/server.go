package config

import (
	"fmt"
	"strings"
	"time"
)

// ServerConfig holds configuration for the watchlist daemon.
type ServerConfig struct {
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool

	Backend  string
	DataFile string
	DBPath   string

	LogLevel string
	LogFile  string

	JournalDir    string
	JournalMaxMB  int
	JournalBuffer int

	BackupDir      string
	BackupInterval time.Duration
	BackupKeep     int

	NtfyURL string
}

// LoadServer reads daemon configuration from environment variables and an
// optional .env file.
func LoadServer() (*ServerConfig, error) {
	loadDotEnv()

	cfg := &ServerConfig{
		BindAddr:         getEnvOrDefault("WATCHLIST_BIND_ADDR", "127.0.0.1:8190"),
		PortCandidates:   getEnvListOrDefault("WATCHLIST_PORT_CANDIDATES", []string{"127.0.0.1:8191", "127.0.0.1:8192", "127.0.0.1:8193"}),
		PortAutoFallback: getEnvBoolOrDefault("WATCHLIST_PORT_AUTO_FALLBACK", true),
		Backend:          strings.ToLower(getEnvOrDefault("WATCHLIST_BACKEND", "file")),
		DataFile:         getEnvOrDefault("WATCHLIST_DATA_FILE", "./data/watchlist.json"),
		DBPath:           getEnvOrDefault("WATCHLIST_DB_PATH", "./data/watchlist.db"),
		LogLevel:         strings.ToLower(getEnvOrDefault("WATCHLIST_LOG_LEVEL", "info")),
		LogFile:          getEnvOrDefault("WATCHLIST_LOG_FILE", "logs/watchlistd.log"),
		JournalDir:       getEnvOrDefault("WATCHLIST_JOURNAL_DIR", "./data/journal"),
		JournalMaxMB:     getEnvIntOrDefault("WATCHLIST_JOURNAL_MAX_MB", 50),
		JournalBuffer:    getEnvIntOrDefault("WATCHLIST_JOURNAL_BUFFER", 1000),
		BackupDir:        getEnvOrDefault("WATCHLIST_BACKUP_DIR", "./data/backups"),
		BackupInterval:   time.Duration(getEnvIntOrDefault("WATCHLIST_BACKUP_INTERVAL_MIN", 60)) * time.Minute,
		BackupKeep:       getEnvIntOrDefault("WATCHLIST_BACKUP_KEEP", 48),
		NtfyURL:          getEnvOrDefault("WATCHLIST_NTFY_URL", ""),
	}

	switch cfg.Backend {
	case "file", "sqlite", "memory":
	default:
		return nil, fmt.Errorf("WATCHLIST_BACKEND must be file, sqlite or memory, got %q", cfg.Backend)
	}
	if cfg.JournalMaxMB < 1 {
		cfg.JournalMaxMB = 1
	}
	if cfg.JournalBuffer < 1 {
		cfg.JournalBuffer = 1
	}
	if cfg.BackupInterval < 0 {
		cfg.BackupInterval = 0
	}
	return cfg, nil
}

// BackupsScheduled reports whether periodic backups are enabled.
func (c *ServerConfig) BackupsScheduled() bool {
	return c.BackupInterval > 0
}
