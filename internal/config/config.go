package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	History HistoryConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	history, err := loadHistoryConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, History: history}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3001"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":3001" 或 "127.0.0.1:3001"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig 描述上游大模型补全接口的配置。
type AIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.APIKey != "" && c.Model != ""
}

func loadAIConfig() (AIConfig, error) {
	temperature := 0.6
	if override, err := parseOptionalFloatEnv("ARK_TEMPERATURE"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		temperature = *override
	}

	timeoutSeconds := 60
	if override, err := parseOptionalIntEnv("ARK_TIMEOUT"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return AIConfig{}, fmt.Errorf("ARK_TIMEOUT must be at least 1 second, got %d", *override)
		}
		timeoutSeconds = *override
	}

	return AIConfig{
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3/chat/completions"),
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		Model:       getEnvOrDefault("ARK_MODEL", "deepseek-r1-250120"),
		Temperature: temperature,
		Timeout:     time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// History store backends.
const (
	HistoryBackendFile   = "file"
	HistoryBackendSQLite = "sqlite"
)

// HistoryConfig 描述对话历史存储的配置。
type HistoryConfig struct {
	Backend  string
	FilePath string
	DBPath   string
}

func loadHistoryConfig() (HistoryConfig, error) {
	backend := getEnvOrDefault("HISTORY_BACKEND", HistoryBackendFile)
	if backend != HistoryBackendFile && backend != HistoryBackendSQLite {
		return HistoryConfig{}, fmt.Errorf("invalid HISTORY_BACKEND value %q: expected %q or %q",
			backend, HistoryBackendFile, HistoryBackendSQLite)
	}

	return HistoryConfig{
		Backend:  backend,
		FilePath: getEnvOrDefault("HISTORY_FILE", "data/chat_history.json"),
		DBPath:   getEnvOrDefault("HISTORY_DB", "data/chat_history.db"),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
