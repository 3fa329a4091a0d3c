package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration, resolved once at startup.
// Stage clients receive what they need explicitly; nothing reads the
// environment after Load returns.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string

	// TempDir holds per-request scratch files.
	TempDir string

	// OutputDir is the publicly servable directory for final artifacts.
	OutputDir string

	// OpenAIKey authenticates transcription, translation and synthesis.
	OpenAIKey string

	// CohereKey, if set, selects Cohere as the translation provider.
	CohereKey string

	// TranslatePartialFallback keeps original text for segments the
	// translation response omits instead of failing the whole batch.
	TranslatePartialFallback bool

	// RedisAddr enables the Redis session store when non-empty.
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration

	// KafkaBrokers enables stage-event publishing when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	// S3Bucket enables durable replication of final artifacts when set.
	S3Bucket       string
	S3Region       string
	S3Profile      string
	S3Prefix       string
	S3UsePathStyle bool

	// YouTubeCredentials is a service-account JSON file enabling
	// publishing of dubbed videos.
	YouTubeCredentials string
}

// Load resolves configuration from the environment with defaults.
func Load() Config {
	cfg := Config{
		Addr:                     ":" + GetEnvOrDefault("PORT", "8080"),
		TempDir:                  GetEnvOrDefault("TEMP_DIR", DefaultTempDir),
		OutputDir:                GetEnvOrDefault("OUTPUT_DIR", DefaultOutputDir),
		OpenAIKey:                os.Getenv("OPENAI_API_KEY"),
		CohereKey:                os.Getenv("COHERE_API_KEY"),
		TranslatePartialFallback: getEnvBool("TRANSLATE_PARTIAL_FALLBACK", true),
		RedisAddr:                strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:            os.Getenv("REDIS_PASSWORD"),
		SessionTTL:               getEnvDuration("SESSION_TTL", DefaultSessionTTL),
		KafkaTopic:               GetEnvOrDefault("KAFKA_TOPIC", "videodub.stages"),
		S3Bucket:                 strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:                 strings.TrimSpace(os.Getenv("S3_REGION")),
		S3Profile:                strings.TrimSpace(os.Getenv("S3_PROFILE")),
		S3UsePathStyle:           getEnvBool("S3_USE_PATH_STYLE", false),
		YouTubeCredentials:       strings.TrimSpace(os.Getenv("YOUTUBE_CREDENTIALS")),
	}

	if prefix := strings.TrimSpace(os.Getenv("S3_PREFIX")); prefix != "" {
		cfg.S3Prefix = strings.Trim(prefix, "/") + "/"
	}

	if brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg
}

// GetEnvOrDefault returns the value of an environment variable or a default value
func GetEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}
