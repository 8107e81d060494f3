package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	BotToken          string
	TelegramDebug     bool
	MaxFileSizeMB     int
	DownloadTimeout   time.Duration
	SearchTimeout     time.Duration
	RequestsPerMinute int
	CacheTTL          time.Duration
	SearchConcurrency int
	FetchConcurrency  int
	ResultLimit       int
	LogLevel          string
	LogFormat         string
	MetricsAddr       string
}

func LoadConfig() Config {
	return Config{
		BotToken:          strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		TelegramDebug:     getEnvBool("TELEGRAM_DEBUG", false),
		MaxFileSizeMB:     getEnvInt("MAX_FILE_SIZE_MB", 50),
		DownloadTimeout:   time.Duration(getEnvInt("DOWNLOAD_TIMEOUT", 120)) * time.Second,
		SearchTimeout:     time.Duration(getEnvInt("SEARCH_TIMEOUT", 20)) * time.Second,
		RequestsPerMinute: getEnvInt("REQUESTS_PER_MINUTE", 10),
		CacheTTL:          time.Duration(getEnvInt("CACHE_TTL_MINUTES", 10)) * time.Minute,
		SearchConcurrency: getEnvInt("SEARCH_CONCURRENCY", 3),
		FetchConcurrency:  getEnvInt("FETCH_CONCURRENCY", 2),
		ResultLimit:       getEnvInt("RESULT_LIMIT", 3),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(getEnv("LOG_FORMAT", "text")),
		MetricsAddr:       getEnv("METRICS_ADDR", ":9090"),
	}
}

// MaxFileBytes converts the megabyte limit into the byte ceiling fetchers
// compare file sizes against.
func (c Config) MaxFileBytes() int64 {
	return int64(c.MaxFileSizeMB) << 20
}

// SessionTTL is how long a selection keyboard stays answerable. It outlives
// the result cache so a slow picker still gets their track.
func (c Config) SessionTTL() time.Duration {
	return 4 * c.CacheTTL
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
