package config

import (
	"os"
)

// Config holds the application configuration
type Config struct {
	Port               string
	Environment        string
	APIKey             string
	AdvisoryEndpoint   string
	AdvisoryAPIKey     string
	QdrantURL          string
	QdrantAPIKey       string
	DatasetDir         string
	AdvisoryPromptPath string
	AdminUsername      string
	AdminPassword      string
	SeedKnowledgeBase  bool
	MinConfidence      string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		APIKey:             getEnv("API_KEY", ""),
		AdvisoryEndpoint:   getEnv("ADVISORY_BACKEND_ENDPOINT", ""),
		AdvisoryAPIKey:     getEnv("ADVISORY_BACKEND_API_KEY", ""),
		QdrantURL:          getEnv("QDRANT_URL", "localhost:6334"),
		QdrantAPIKey:       getEnv("QDRANT_API_KEY", ""),
		DatasetDir:         getEnv("DATASET_DIR", "data"),
		AdvisoryPromptPath: getEnv("ADVISORY_PROMPT_PATH", "configs/advisory_prompt.yaml"),
		AdminUsername:      getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:      getEnv("ADMIN_PASSWORD", "admin"),
		SeedKnowledgeBase:  getEnv("SEED_KNOWLEDGE_BASE", "true") == "true",
		MinConfidence:      getEnv("MIN_CONFIDENCE_THRESHOLD", ""),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
