package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv    string
	Port      string
	LogLevel  string
	LogFormat string

	PingInterval      time.Duration
	ConnectionTimeout time.Duration
	MaxConnections    int
	SendQueueSize     int
	MaxMessageSize    int
	DebugEnabled      bool
	DebugLogCapacity  int
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		Port:      getEnv("PORT", "3001"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.PingInterval, err = getEnvDuration("WS_PING_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ConnectionTimeout, err = getEnvDuration("WS_CONNECTION_TIMEOUT", 300*time.Second); err != nil {
		return nil, err
	}
	if cfg.MaxConnections, err = getEnvInt("WS_MAX_CONNECTIONS", 1000); err != nil {
		return nil, err
	}
	if cfg.SendQueueSize, err = getEnvInt("WS_SEND_QUEUE_SIZE", 100); err != nil {
		return nil, err
	}
	if cfg.MaxMessageSize, err = getEnvInt("WS_MAX_MESSAGE_SIZE", 1<<20); err != nil {
		return nil, err
	}
	if cfg.DebugEnabled, err = getEnvBool("WS_DEBUG", false); err != nil {
		return nil, err
	}
	if cfg.DebugLogCapacity, err = getEnvInt("WS_DEBUG_LOG_CAPACITY", 10000); err != nil {
		return nil, err
	}

	if cfg.PingInterval <= 0 {
		return nil, fmt.Errorf("WS_PING_INTERVAL must be positive")
	}
	if cfg.ConnectionTimeout <= 0 {
		return nil, fmt.Errorf("WS_CONNECTION_TIMEOUT must be positive")
	}
	if cfg.MaxConnections <= 0 {
		return nil, fmt.Errorf("WS_MAX_CONNECTIONS must be positive")
	}
	if cfg.SendQueueSize <= 0 {
		return nil, fmt.Errorf("WS_SEND_QUEUE_SIZE must be positive")
	}
	if cfg.MaxMessageSize <= 0 {
		return nil, fmt.Errorf("WS_MAX_MESSAGE_SIZE must be positive")
	}
	if cfg.DebugLogCapacity <= 0 {
		return nil, fmt.Errorf("WS_DEBUG_LOG_CAPACITY must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 30s: %w", key, err)
	}
	return d, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}
