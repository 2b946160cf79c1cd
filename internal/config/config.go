package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName              string
	AppEnv               string
	AppPort              string
	DatabaseURL          string
	RedisURL             string
	NATSURL              string
	JWTSecret            string
	Timezone             string
	AIProvider           string
	OllamaURL            string
	OllamaModel          string
	OpenAIAPIKey         string
	OpenAIModel          string
	EvaluationTimeout    time.Duration
	RewardPolicy         string
	SubmissionRateLimit  int
	SubmissionRateWindow time.Duration
	WeekendOnly          bool
	GradingBuffer        int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Location resolves the configured timezone, falling back to UTC on failure.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("KODIGO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Kodigo API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("timezone", "Asia/Manila")
	v.SetDefault("ai.provider", "ollama")
	v.SetDefault("ollama.url", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.2")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("evaluation.timeout", "60s")
	v.SetDefault("reward.policy", "weighted")
	v.SetDefault("submission.rate_limit", 5)
	v.SetDefault("submission.rate_window", "1h")
	v.SetDefault("submission.weekend_only", false)
	v.SetDefault("grading.buffer", 64)

	timeout, err := time.ParseDuration(v.GetString("evaluation.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid evaluation timeout: %w", err)
	}

	window, err := time.ParseDuration(v.GetString("submission.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid submission rate window: %w", err)
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		DatabaseURL:          v.GetString("database.url"),
		RedisURL:             v.GetString("redis.url"),
		NATSURL:              v.GetString("nats.url"),
		JWTSecret:            v.GetString("jwt.secret"),
		Timezone:             v.GetString("timezone"),
		AIProvider:           strings.ToLower(v.GetString("ai.provider")),
		OllamaURL:            strings.TrimRight(v.GetString("ollama.url"), "/"),
		OllamaModel:          v.GetString("ollama.model"),
		OpenAIAPIKey:         v.GetString("openai_api_key"),
		OpenAIModel:          v.GetString("openai.model"),
		EvaluationTimeout:    timeout,
		RewardPolicy:         strings.ToLower(v.GetString("reward.policy")),
		SubmissionRateLimit:  v.GetInt("submission.rate_limit"),
		SubmissionRateWindow: window,
		WeekendOnly:          v.GetBool("submission.weekend_only"),
		GradingBuffer:        v.GetInt("grading.buffer"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.EvaluationTimeout <= 0 {
		cfg.EvaluationTimeout = 60 * time.Second
	}

	if cfg.SubmissionRateLimit <= 0 {
		cfg.SubmissionRateLimit = 5
	}

	if cfg.SubmissionRateWindow <= 0 {
		cfg.SubmissionRateWindow = time.Hour
	}

	if cfg.GradingBuffer <= 0 {
		cfg.GradingBuffer = 64
	}

	return cfg, nil
}
