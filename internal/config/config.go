package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values shared by the API and grader services.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	GraderPort       string
	DatabaseURL      string
	RedisURL         string
	NatsURL          string
	JWTSecret        string
	VaultKey         string
	InternalAPIKey   string
	GraderBaseURL    string
	PrimaryBaseURL   string
	DispatchWorkers  int
	DispatchQueue    int
	DispatchLockTTL  time.Duration
	AdminRateMax     int
	AdminRateWindow  time.Duration
	AITemperature    float32
	AIMaxTokens      int
	AIRequestTimeout time.Duration
	OpenAIBaseURL    string
	AnthropicBaseURL string
	GeminiBaseURL    string
	DeepSeekBaseURL  string
}

// HTTPAddress returns the address the primary HTTP server should listen on.
func (c Config) HTTPAddress() string {
	return listenAddress(c.AppPort)
}

// GraderAddress returns the address the grader HTTP server should listen on.
func (c Config) GraderAddress() string {
	return listenAddress(c.GraderPort)
}

func listenAddress(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// ValidatePrimary checks the settings the primary API cannot run without.
func (c Config) ValidatePrimary() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret must be provided")
	}
	if c.VaultKey == "" {
		return fmt.Errorf("vault key must be provided")
	}
	if c.GraderBaseURL == "" {
		return fmt.Errorf("grader base url must be provided")
	}
	return nil
}

// ValidateGrader checks the settings the grading service cannot run without.
func (c Config) ValidateGrader() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database url must be provided")
	}
	if c.PrimaryBaseURL == "" {
		return fmt.Errorf("primary base url must be provided")
	}
	return nil
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EXAMFORGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "ExamForge API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("grader.port", "8090")
	v.SetDefault("dispatch.workers", 4)
	v.SetDefault("dispatch.queue", 64)
	v.SetDefault("dispatch.lock_ttl", "10m")
	v.SetDefault("admin.rate_max", 60)
	v.SetDefault("admin.rate_window", "1m")
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ai.max_tokens", 4000)
	v.SetDefault("ai.request_timeout", "60s")

	lockTTL, err := time.ParseDuration(v.GetString("dispatch.lock_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid dispatch lock ttl: %w", err)
	}

	requestTimeout, err := time.ParseDuration(v.GetString("ai.request_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid ai request timeout: %w", err)
	}

	rateWindow, err := time.ParseDuration(v.GetString("admin.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid admin rate window: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		GraderPort:       v.GetString("grader.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		NatsURL:          v.GetString("nats.url"),
		JWTSecret:        v.GetString("jwt.secret"),
		VaultKey:         v.GetString("vault.key"),
		InternalAPIKey:   v.GetString("internal.api_key"),
		GraderBaseURL:    strings.TrimSuffix(v.GetString("grader.base_url"), "/"),
		PrimaryBaseURL:   strings.TrimSuffix(v.GetString("primary.base_url"), "/"),
		DispatchWorkers:  v.GetInt("dispatch.workers"),
		DispatchQueue:    v.GetInt("dispatch.queue"),
		DispatchLockTTL:  lockTTL,
		AdminRateMax:     v.GetInt("admin.rate_max"),
		AdminRateWindow:  rateWindow,
		AITemperature:    float32(v.GetFloat64("ai.temperature")),
		AIMaxTokens:      v.GetInt("ai.max_tokens"),
		AIRequestTimeout: requestTimeout,
		OpenAIBaseURL:    strings.TrimSuffix(v.GetString("openai.base_url"), "/"),
		AnthropicBaseURL: strings.TrimSuffix(v.GetString("anthropic.base_url"), "/"),
		GeminiBaseURL:    strings.TrimSuffix(v.GetString("gemini.base_url"), "/"),
		DeepSeekBaseURL:  strings.TrimSuffix(v.GetString("deepseek.base_url"), "/"),
	}

	if cfg.InternalAPIKey == "" {
		return Config{}, fmt.Errorf("internal api key must be provided")
	}

	if cfg.DispatchWorkers <= 0 {
		cfg.DispatchWorkers = 4
	}

	if cfg.DispatchQueue <= 0 {
		cfg.DispatchQueue = 64
	}

	return cfg, nil
}
