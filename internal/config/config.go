package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	GeminiAPIKey   string
	GeminiModel    string
	DatabaseURL    string
	HTTPAddr       string
	LogLevel       string
	LogFormat      string
	LogOutputPath  string
	ReplyTimeout   time.Duration
	SpeechLanguage string
	TTSCommand     string
	STTCommand     string
}

var AppConfig Config

// LoadConfig loads .env (if present) and the environment into AppConfig.
func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Load()

	if AppConfig.GeminiAPIKey == "" {
		log.Println("GEMINI_API_KEY is not set; replies will fall back to the offline message")
	}
}

// Load reads the configuration from the environment only.
func Load() Config {
	return Config{
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		DatabaseURL:    getEnv("DATABASE_URL", "lumera.db"),
		HTTPAddr:       getEnv("HTTP_ADDR", "127.0.0.1:8080"),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:      getEnv("LOG_FORMAT", "console"),
		LogOutputPath:  getEnv("LOG_OUTPUT_PATH", ""),
		ReplyTimeout:   time.Duration(getEnvAsInt("REPLY_TIMEOUT_SECONDS", 60)) * time.Second,
		SpeechLanguage: getEnv("SPEECH_LANGUAGE", "en-US"),
		TTSCommand:     getEnv("TTS_COMMAND", ""),
		STTCommand:     getEnv("STT_COMMAND", ""),
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}
