package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load builds the configuration in three layers: preset defaults
// (selected by APP_ENV), an optional YAML file (CONFIG_PATH), and
// finally environment variable overrides. Later layers win.
func Load() (Config, error) {
	var cfg Config

	switch os.Getenv("APP_ENV") {
	case "production":
		cfg = Production()
	case "development":
		cfg = Development()
	default:
		cfg = Default()
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.Collection = getEnv("COLLECTION_NAME", cfg.Collection)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.EmbeddingModel = getEnv("EMBEDDING_MODEL_ID", cfg.EmbeddingModel)
	cfg.Provider = getEnv("LLM_PROVIDER", cfg.Provider)
	cfg.OpenAIModel = getEnv("OPENAI_MODEL_ID", cfg.OpenAIModel)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OllamaBaseURL = getEnv("OLLAMA_BASE_URL", cfg.OllamaBaseURL)
	cfg.OllamaModel = getEnv("OLLAMA_MODEL_ID", cfg.OllamaModel)
	cfg.Temperature = getEnvFloat("DEFAULT_TEMPERATURE", cfg.Temperature)
	cfg.MaxTokens = getEnvInt("DEFAULT_MAX_TOKENS", cfg.MaxTokens)
	cfg.DefaultK = getEnvInt("DEFAULT_K", cfg.DefaultK)
	cfg.ConfidenceThreshold = getEnvFloat("CONFIDENCE_THRESHOLD", cfg.ConfidenceThreshold)
	cfg.PromptStrategy = getEnv("PROMPT_STRATEGY", cfg.PromptStrategy)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisTTL = getEnv("REDIS_TTL", cfg.RedisTTL)
	cfg.Port = getEnv("API_PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
}

// Validate rejects values that would make the pipeline misbehave
// rather than fail outright.
func (c *Config) Validate() error {
	if c.DefaultK <= 0 {
		return fmt.Errorf("default_k must be positive, got %d", c.DefaultK)
	}
	if c.ConfidenceThreshold < 0.0 || c.ConfidenceThreshold > 1.0 {
		return fmt.Errorf("confidence_threshold must be in [0.0, 1.0], got %f", c.ConfidenceThreshold)
	}
	if c.Temperature < 0.0 || c.Temperature > 1.0 {
		return fmt.Errorf("default_temperature must be in [0.0, 1.0], got %f", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("default_max_tokens must be positive, got %d", c.MaxTokens)
	}
	switch c.Provider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("unknown provider %q (expected openai or ollama)", c.Provider)
	}
	return nil
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		value = defaultValue
	}

	return value
}
