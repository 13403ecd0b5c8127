package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates the chat service configuration.
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Store  StoreConfig
	Auth   AuthConfig
}

// Load reads the service configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	auth, err := loadAuthConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		AI:     ai,
		Store:  StoreConfig{Path: strings.TrimSpace(os.Getenv("STORE_PATH"))},
		Auth:   auth,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// StoreConfig selects the conversation store backend. An empty Path keeps
// history in memory; a file path enables the durable store.
type StoreConfig struct {
	Path string
}

// AuthConfig carries the session token registry.
type AuthConfig struct {
	Tokens map[string]string
}

func loadAuthConfig() (AuthConfig, error) {
	spec := strings.TrimSpace(os.Getenv("DEEPCHAT_TOKENS"))
	tokens, err := parseTokenSpec(spec)
	if err != nil {
		return AuthConfig{}, err
	}
	return AuthConfig{Tokens: tokens}, nil
}

func parseTokenSpec(spec string) (map[string]string, error) {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		tok, user, ok := strings.Cut(pair, ":")
		if !ok || strings.TrimSpace(tok) == "" || strings.TrimSpace(user) == "" {
			return nil, fmt.Errorf("invalid DEEPCHAT_TOKENS entry %q, want token:user", pair)
		}
		tokens[strings.TrimSpace(tok)] = strings.TrimSpace(user)
	}
	return tokens, nil
}

// AIConfig describes the completion provider.
type AIConfig struct {
	APIKey       string
	Model        string
	BaseURL      string
	SystemPrompt string
	Temperature  *float64
	TopP         *float64
	MaxTokens    *int
	Timeout      time.Duration
}

// Enabled reports whether the required provider credentials are present.
func (c AIConfig) Enabled() bool {
	return c.APIKey != "" && c.Model != ""
}

// NewChatModel builds a chat model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("completion provider not configured, set DEEPSEEK_API_KEY and DEEPSEEK_MODEL")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		APIKey:      c.APIKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("DEEPSEEK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("DEEPSEEK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("DEEPSEEK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	// Upstream execution ceiling for one send, provider call included.
	timeoutSeconds := 60
	if override, err := parseOptionalIntEnv("CHAT_TIMEOUT"); err != nil {
		return AIConfig{}, err
	} else if override != nil && *override > 0 {
		timeoutSeconds = *override
	}

	return AIConfig{
		APIKey:       strings.TrimSpace(os.Getenv("DEEPSEEK_API_KEY")),
		Model:        getEnvOrDefault("DEEPSEEK_MODEL", "deepseek-chat"),
		BaseURL:      getEnvOrDefault("DEEPSEEK_BASE_URL", "https://api.deepseek.com"),
		SystemPrompt: getEnvOrDefault("CHAT_SYSTEM_PROMPT", "You are a helpful assistant."),
		Temperature:  temperature,
		TopP:         topP,
		MaxTokens:    maxTokens,
		Timeout:      time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// ClientConfig describes the terminal client.
type ClientConfig struct {
	ServerURL      string
	Token          string
	RevealInterval time.Duration
}

// LoadClient reads the terminal client configuration from environment
// variables.
func LoadClient() (*ClientConfig, error) {
	intervalMs := 100
	if override, err := parseOptionalIntEnv("REVEAL_INTERVAL_MS"); err != nil {
		return nil, err
	} else if override != nil && *override > 0 {
		intervalMs = *override
	}

	return &ClientConfig{
		ServerURL:      getEnvOrDefault("DEEPCHAT_SERVER", "http://localhost:8080"),
		Token:          strings.TrimSpace(os.Getenv("DEEPCHAT_TOKEN")),
		RevealInterval: time.Duration(intervalMs) * time.Millisecond,
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
