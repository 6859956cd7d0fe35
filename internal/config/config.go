package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// DefaultAzureEndpoint is the global Microsoft Translator endpoint.
const DefaultAzureEndpoint = "https://api.cognitive.microsofttranslator.com"

type Config struct {
	AzureKey          string
	AzureRegion       string
	AzureEndpoint     string
	SourceLanguage    string
	TargetLanguage    string
	BatchSize         int
	MaxBatchChars     int
	MaxRetries        int
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	WorkerCount       int
	DatabaseURL       string
	CacheDir          string
	StoreFile         string
	TextsDir          string
	ScriptsDir        string
	AssetEncoding     string
	DictionaryFile    string
	ActionScriptMode  string
}

// Load reads .env from the working directory, then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() *Config {
	return &Config{
		AzureKey:          getEnv("AZURE_TRANSLATOR_KEY", ""),
		AzureRegion:       getEnv("AZURE_TRANSLATOR_REGION", ""),
		AzureEndpoint:     getEnv("AZURE_TRANSLATOR_ENDPOINT", DefaultAzureEndpoint),
		SourceLanguage:    getEnv("SOURCE_LANGUAGE", "ja"),
		TargetLanguage:    getEnv("TARGET_LANGUAGE", "en"),
		BatchSize:         getEnvInt("BATCH_SIZE", 100),
		MaxBatchChars:     getEnvInt("MAX_BATCH_CHARS", 10000),
		MaxRetries:        getEnvInt("MAX_RETRIES", 3),
		RequestTimeout:    getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		RequestsPerSecond: getEnvFloat("REQUESTS_PER_SECOND", 5),
		WorkerCount:       getEnvInt("WORKER_COUNT", 4),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		CacheDir:          getEnv("CACHE_DIR", "."),
		StoreFile:         getEnv("STORE_FILE", "swf-translator-strings.json"),
		TextsDir:          getEnv("TEXTS_DIR", "texts"),
		ScriptsDir:        getEnv("SCRIPTS_DIR", "scripts"),
		AssetEncoding:     getEnv("ASSET_ENCODING", "utf-8"),
		DictionaryFile:    getEnv("DICTIONARY_FILE", ""),
		ActionScriptMode:  getEnv("ACTIONSCRIPT_MODE", "heuristic"),
	}
}

// Validate checks values that would otherwise fail deep inside a phase.
func (c *Config) Validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	if c.MaxBatchChars < 1 {
		return fmt.Errorf("MAX_BATCH_CHARS must be positive, got %d", c.MaxBatchChars)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must not be negative, got %d", c.MaxRetries)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("REQUESTS_PER_SECOND must be positive, got %g", c.RequestsPerSecond)
	}
	if c.SourceLanguage == "" || c.TargetLanguage == "" {
		return fmt.Errorf("SOURCE_LANGUAGE and TARGET_LANGUAGE are required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid integer, using default")
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid number, using default")
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// Plain integers are seconds.
		if n, nerr := strconv.Atoi(v); nerr == nil {
			return time.Duration(n) * time.Second
		}
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid duration, using default")
		return fallback
	}
	return d
}
