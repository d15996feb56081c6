package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration values.
type Config struct {
	Port        string
	DatabaseURL string
	AI          AIConfig
	Audio       AudioConfig
	Media       MediaConfig
}

// AIConfig selects and configures the vision/chat model provider.
type AIConfig struct {
	Provider string
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
}

// OpenAIConfig holds OpenAI chat-completion settings.
type OpenAIConfig struct {
	APIKey string
	Model  string
}

// GeminiConfig holds Google Generative Language settings.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// AudioConfig configures the singing-model provider.
type AudioConfig struct {
	Provider       string
	HFToken        string
	ReplicateToken string
}

// MediaConfig describes S3/media related configuration.
type MediaConfig struct {
	Bucket         string
	Region         string
	Endpoint       string
	PublicURL      string
	KeyPrefix      string
	ForcePathStyle bool
}

// FromEnv loads configuration from environment variables and applies defaults.
func FromEnv() Config {
	return Config{
		Port:        getenv("APP_PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		AI: AIConfig{
			Provider: getenv("AI_PROVIDER", "openai"),
			OpenAI: OpenAIConfig{
				APIKey: os.Getenv("OPENAI_API_KEY"),
				Model:  getenv("OPENAI_MODEL", "gpt-4o"),
			},
			Gemini: GeminiConfig{
				APIKey: os.Getenv("GEMINI_API_KEY"),
				Model:  getenv("GEMINI_MODEL", "gemini-1.5-flash-001"),
			},
		},
		Audio: AudioConfig{
			Provider:       os.Getenv("AUDIO_PROVIDER"),
			HFToken:        os.Getenv("HF_API_TOKEN"),
			ReplicateToken: os.Getenv("REPLICATE_API_TOKEN"),
		},
		Media: MediaConfig{
			Bucket:         os.Getenv("S3_BUCKET"),
			Region:         os.Getenv("S3_REGION"),
			Endpoint:       os.Getenv("S3_ENDPOINT"),
			PublicURL:      os.Getenv("S3_PUBLIC_URL"),
			KeyPrefix:      strings.Trim(os.Getenv("S3_KEY_PREFIX"), "/"),
			ForcePathStyle: getenvBool("S3_FORCE_PATH_STYLE", false),
		},
	}
}

// OpenAIConfigured reports whether a syntactically plausible OpenAI key is set.
func (c Config) OpenAIConfigured() bool {
	key := c.AI.OpenAI.APIKey
	return key != "" && key != "not-set" && strings.HasPrefix(key, "sk-")
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getenvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}

	return parsed
}
