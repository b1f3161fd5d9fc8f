package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port         int
	LogLevel     string
	DatabaseURL  string
	NatsURL      string
	NatsToken    string
	APIToken     string
	Workers      int
	LocaleFile   string
	InputCharset string
	Timezone     string
	MaxUploadMB  int
}

func Load() Config {
	return Config{
		Port:         envInt("MANGO_PORT", 8760),
		LogLevel:     envStr("LOG_LEVEL", "info"),
		DatabaseURL:  envStr("DATABASE_URL", ""),
		NatsURL:      envStr("NATS_URL", ""),
		NatsToken:    envStr("NATS_TOKEN", ""),
		APIToken:     envStr("MANGO_API_TOKEN", ""),
		Workers:      envInt("MANGO_WORKERS", 4),
		LocaleFile:   envStr("MANGO_LOCALE_FILE", ""),
		InputCharset: envStr("MANGO_INPUT_CHARSET", ""),
		Timezone:     envStr("MANGO_TIMEZONE", "UTC"),
		MaxUploadMB:  envInt("MANGO_MAX_UPLOAD_MB", 32),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
