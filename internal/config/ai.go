package config

import "time"

// AIConfig holds the Gemini follow-up provider settings
type AIConfig struct {
	APIKey        string `json:"-"` // Never serialize
	FollowupModel string `json:"followupModel"`
	TimeoutMS     int    `json:"timeoutMs"`
	MaxRetries    int    `json:"maxRetries"`
	RetryDelayMS  int    `json:"retryDelayMs"`
}

// DefaultAIConfig reads the AI settings from the environment
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:        getEnv("GEMINI_API_KEY", ""),
		FollowupModel: getEnv("GEMINI_MODEL_FOLLOWUP", "gemini-2.0-flash"),
		TimeoutMS:     getEnvInt("GEMINI_TIMEOUT_MS", 10000),
		MaxRetries:    getEnvInt("GEMINI_MAX_RETRIES", 2),
		RetryDelayMS:  getEnvInt("GEMINI_RETRY_DELAY_MS", 500),
	}
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

func (c *AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func (c *AIConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}
