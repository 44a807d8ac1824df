package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	Rag      RagConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	SessionStore       string // "memory" or "redis"
	SessionTTL         time.Duration
	AdminSecret        string // plain shared secret, compared in constant time
	AdminSecretHash    string // bcrypt hash, preferred when set
	JWTSecret          string
	JWTTTL             time.Duration
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
	AlertTo    string // operator mailbox for storage alerts
}

type APIKeys struct {
	GoogleGemini string
	Jina         string
	LLM          string // Groq or any OpenAI-compatible endpoint
}

type AIConfig struct {
	EmbeddingProvider  string // "ollama", "gemini" or "jina"
	EmbeddingModel     string
	EmbeddingBaseURL   string
	EmbeddingDimension int // 0 disables the stored dimension check
	LLMProvider        string // "ollama", "openai", "groq"
	LLMModel           string
	LLMBaseURL         string
	Temperature        float64
	MaxTokens          int
	RequestTimeout     time.Duration
	MaxRetries         int
}

type RagConfig struct {
	FAQThreshold      float64
	FAQTopK           int
	ContextBudget     int
	PerSourceK        int
	HistoryLimit      int
	RecorderBackend   string // "csv" or "postgres"
	UnansweredCSVPath string
	CourseCatalogPath string
	CourseCutoff      float64
	IngestTopic       string
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	SampleRatio float64
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			SessionStore:       getEnv("SESSION_STORE", "memory"),
			SessionTTL:         getEnvAsDuration("SESSION_TTL", time.Hour),
			AdminSecret:        getEnv("ADMIN_SECRET", ""),
			AdminSecretHash:    getEnv("ADMIN_SECRET_HASH", ""),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			JWTTTL:             getEnvAsDuration("JWT_TTL", 12*time.Hour),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "JOTHA"),
			AlertTo:    getEnv("SMTP_ALERT_TO", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			LLM:          getEnv("LLM_API_KEY", getEnv("GROQ_API", "")),
		},
		Ai: AIConfig{
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:     getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:11434"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 768),
			LLMProvider:        getEnv("LLM_PROVIDER", "groq"),
			LLMModel:           getEnv("LLM_MODEL", "llama3-8b-8192"),
			LLMBaseURL:         getEnv("LLM_BASE_URL", ""),
			Temperature:        getEnvAsFloat("LLM_TEMPERATURE", 0.3),
			MaxTokens:          getEnvAsInt("LLM_MAX_TOKENS", 512),
			RequestTimeout:     getEnvAsDuration("AI_REQUEST_TIMEOUT", 60*time.Second),
			MaxRetries:         getEnvAsInt("LLM_MAX_RETRIES", 2),
		},
		Rag: RagConfig{
			FAQThreshold:      getEnvAsFloat("RAG_FAQ_THRESHOLD", 0.85),
			FAQTopK:           getEnvAsInt("RAG_FAQ_TOP_K", 15),
			ContextBudget:     getEnvAsInt("RAG_CONTEXT_BUDGET", 15000),
			PerSourceK:        getEnvAsInt("RAG_PER_SOURCE_K", 4),
			HistoryLimit:      getEnvAsInt("RAG_HISTORY_LIMIT", 6),
			RecorderBackend:   getEnv("RECORDER_BACKEND", "csv"),
			UnansweredCSVPath: getEnv("UNANSWERED_CSV_PATH", "data/nao_respondido.csv"),
			CourseCatalogPath: getEnv("COURSE_CATALOG_PATH", "data/cursos.yaml"),
			CourseCutoff:      getEnvAsFloat("COURSE_CUTOFF", 0.6),
			IngestTopic:       getEnv("INGEST_TOPIC_NAME", "INDEX_PASSAGES"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "jotha-backend"),
			SampleRatio: getEnvAsFloat("OTEL_SAMPLE_RATIO", 1),
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
