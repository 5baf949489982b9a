package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"

	TopicsBuiltin = "builtin"
	TopicsYAML    = "yaml"
	TopicsMongo   = "mongo"
)

// Config is the process-level configuration
type Config struct {
	MongoURI        string
	MongoDB         string
	RedisAddr       string // empty disables the redis cache and undo store
	Port            string
	Store           string
	SQLitePath      string
	TopicSource     string
	TopicsFile      string
	SessionCacheTTL time.Duration
	LogMode         string
	AllowedOrigins  []string

	Interview *InterviewConfig
	AI        *AIConfig
}

// Load reads the environment, and the interview YAML overlay when
// INTERVIEW_CONFIG_FILE is set.
func Load() (*Config, error) {
	cfg := &Config{
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "campusinterview"),
		RedisAddr:       strings.TrimPrefix(getEnv("REDIS_URI", ""), "redis://"),
		Port:            getEnv("PORT", "8080"),
		Store:           strings.ToLower(getEnv("STORE", StoreMemory)),
		SQLitePath:      getEnv("SQLITE_PATH", "interview.db"),
		TopicSource:     strings.ToLower(getEnv("TOPIC_SOURCE", TopicsBuiltin)),
		TopicsFile:      getEnv("TOPICS_FILE", "topics.yaml"),
		SessionCacheTTL: getEnvDuration("SESSION_CACHE_TTL", 5*time.Minute),
		LogMode:         getEnv("LOG_MODE", "dev"),
		AllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		AI:              DefaultAIConfig(),
	}

	if path := os.Getenv("INTERVIEW_CONFIG_FILE"); path != "" {
		ic, err := LoadInterviewFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Interview = ic
	} else {
		cfg.Interview = DefaultInterviewConfig()
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
