package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// PlaceholderAPIKey is the value shipped in .env.example. A key left at this
// value is treated the same as a missing key.
const PlaceholderAPIKey = "YOUR_VAPI_PRIVATE_KEY_HERE"

// Config holds application configuration
type Config struct {
	Server  ServerConfig
	Vapi    VapiConfig
	Webhook WebhookConfig
	Redis   RedisConfig
	Speech  SpeechConfig
	Session SessionConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// VapiConfig holds voice platform configuration
type VapiConfig struct {
	// APIKey is the private key used for REST calls (call logs, outbound
	// calls, phone numbers).
	APIKey string
	// PublicKey is used for the live web session stream.
	PublicKey   string
	AssistantID string
	APIBaseURL  string
	StreamURL   string
	// UseMock replaces the live stream with a scripted one (no real
	// platform needed). Development only.
	UseMock bool
}

// WebhookConfig holds the workflow automation webhook configuration
type WebhookConfig struct {
	// BaseURL is the n8n webhook base, e.g. https://example.app.n8n.cloud/webhook
	BaseURL string
	// EventsPath is the webhook path serving calendar events.
	EventsPath string
}

// RedisConfig holds Redis configuration for the settings store.
// When Enabled is false, settings fall back to the in-memory store.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// SpeechConfig holds local speech-capture configuration
type SpeechConfig struct {
	// APIKey for the realtime transcription service. Empty disables local
	// capture; calls still work one-way through the platform.
	APIKey     string
	SampleRate int
	Language   string
}

// SessionConfig holds call-session timing configuration
type SessionConfig struct {
	// SettleDelay is how long to wait after call-start before starting
	// speech capture, to avoid transcribing platform warm-up audio.
	SettleDelay time.Duration
	// EndedDelay is how long the session stays in the ended phase before
	// returning to idle.
	EndedDelay time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Vapi: VapiConfig{
			APIKey:      getEnv("VAPI_API_KEY", ""),
			PublicKey:   getEnv("VAPI_PUBLIC_KEY", ""),
			AssistantID: getEnv("VAPI_ASSISTANT_ID", ""),
			APIBaseURL:  getEnv("VAPI_API_BASE_URL", "https://api.vapi.ai"),
			StreamURL:   getEnv("VAPI_STREAM_URL", "wss://api.vapi.ai/ws"),
			UseMock:     getEnvAsBool("VAPI_USE_MOCK", false),
		},
		Webhook: WebhookConfig{
			BaseURL:    getEnv("N8N_WEBHOOK_BASE_URL", ""),
			EventsPath: getEnv("N8N_CALENDAR_EVENTS_PATH", ""),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Speech: SpeechConfig{
			APIKey:     getEnv("ASSEMBLYAI_API_KEY", ""),
			SampleRate: getEnvAsInt("SPEECH_SAMPLE_RATE", 16000),
			Language:   getEnv("SPEECH_LANGUAGE", "en"),
		},
		Session: SessionConfig{
			SettleDelay: getEnvAsDuration("SESSION_SETTLE_DELAY", "3s"),
			EndedDelay:  getEnvAsDuration("SESSION_ENDED_DELAY", "2s"),
		},
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Vapi.UseMock {
		return nil
	}
	if c.Vapi.APIKey == "" || c.Vapi.APIKey == PlaceholderAPIKey {
		return fmt.Errorf("VAPI_API_KEY is required (set your private key, not the placeholder)")
	}
	if c.Vapi.AssistantID == "" {
		return fmt.Errorf("VAPI_ASSISTANT_ID is required")
	}
	return nil
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
