package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Meili    MeiliConfig
	Ai       AIConfig
	Draw     DrawConfig
	Storage  StorageConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type MeiliConfig struct {
	Host       string
	APIKey     string
	PaperIndex string
}

type AIConfig struct {
	// Default OpenAI-compatible endpoint, used when a user has no
	// credentials of their own.
	LLMProvider    string // "openai" or "ollama"
	LLMBaseURL     string
	LLMModel       string
	LLMAPIKey      string
	IngestTopic    string
	RetrievalLimit int

	// Minimum cosine similarity for a vector hit to count.
	SimilarityThreshold float64

	EmbeddingProvider string // "gemini" or "ollama"
	GeminiAPIKey      string
	OllamaBaseURL     string
	OllamaModel       string
}

type DrawConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Meili: MeiliConfig{
			Host:       getEnv("MEILI_HOST", "http://localhost:7700"),
			APIKey:     getEnv("MEILI_API_KEY", ""),
			PaperIndex: getEnv("MEILI_PAPER_INDEX", "papers"),
		},
		Ai: AIConfig{
			LLMProvider:    getEnv("LLM_PROVIDER", "openai"),
			LLMBaseURL:     getEnv("LLM_BASE_URL", "https://api.deepseek.com/v1"),
			LLMModel:       getEnv("LLM_MODEL", "deepseek-chat"),
			LLMAPIKey:      getEnv("LLM_API_KEY", ""),
			IngestTopic:    getEnv("PAPER_INGEST_TOPIC_NAME", "INGEST_PAPER_CONTENT"),
			RetrievalLimit: getEnvAsInt("RETRIEVAL_LIMIT", 10),

			SimilarityThreshold: getEnvAsFloat("SIMILARITY_THRESHOLD", 0.3),

			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
		},
		Draw: DrawConfig{
			BaseURL: getEnv("DRAW_URL", ""),
			APIKey:  getEnv("DRAW_API_KEY", ""),
			Model:   getEnv("DRAW_MODEL", "dall-e-3"),
		},
		Storage: StorageConfig{
			Endpoint:      getEnv("S3_ENDPOINT", "localhost:9000"),
			AccessKey:     getEnv("S3_ACCESS_KEY", ""),
			SecretKey:     getEnv("S3_SECRET_KEY", ""),
			Bucket:        getEnv("S3_BUCKET", "solution-images"),
			UseSSL:        getEnvAsBool("S3_USE_SSL", false),
			PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
