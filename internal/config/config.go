// internal/config/config.go
//
// 本檔負責載入設定：先讀取選用的 .env，再由環境變數覆寫預設值。

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Config 為程序設定。
type Config struct {
	InputFile      string
	LogLevel       logrus.Level
	LogFormat      string
	LockTimeout    time.Duration
	MinTransfer    decimal.Decimal
	Offer2Schedule string
}

// Load 讀取選用的 .env 與環境變數；.env 不存在不算錯誤，格式錯誤的值則回傳錯誤。
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	lockTimeout, err := getEnvAsDuration("LOCK_TIMEOUT", 2*time.Second)
	if err != nil {
		return nil, err
	}
	minTransfer, err := getEnvAsDecimal("MIN_TRANSFER", decimal.RequireFromString("0.0001"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		InputFile:      getEnv("WALLET_INPUT", "input.txt"),
		LogLevel:       level,
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		LockTimeout:    lockTimeout,
		MinTransfer:    minTransfer,
		Offer2Schedule: getEnv("OFFER2_SCHEDULE", ""),
	}

	if cfg.LockTimeout <= 0 {
		return nil, fmt.Errorf("LOCK_TIMEOUT must be positive")
	}
	if !cfg.MinTransfer.IsPositive() {
		return nil, fmt.Errorf("MIN_TRANSFER must be positive")
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}
	if cfg.Offer2Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Offer2Schedule); err != nil {
			return nil, fmt.Errorf("OFFER2_SCHEDULE: %w", err)
		}
	}
	return cfg, nil
}

// NewLogger 依設定的層級與格式建立 logger。
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	logger.SetLevel(c.LogLevel)
	return logger
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getEnvAsDecimal(key string, defaultVal decimal.Decimal) (decimal.Decimal, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
