package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Provider names accepted by AI_PROVIDER_PRIORITY
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// LLM providers
	GeminiAPIKey      string // Google Gemini API key
	GeminiModel       string
	OpenAIAPIKey      string // OpenAI API key for GPT models
	OpenAIModel       string
	ProviderPriority  string // "gemini" (default) or "openai" goes first
	ProviderTimeout   time.Duration
	MaxTokens         int
	ThinkingMaxTokens int
	Temperature       float64
	ThinkingBudget    int

	// Web search (Google Custom Search)
	SearchAPIKey      string
	SearchEngineID    string // "cx" search-scope identifier
	SearchResultLimit int
	SearchMinInterval time.Duration
	SearchTimeout     time.Duration

	// Page scraping
	ScrapeTimeout        time.Duration
	ScrapeMaxURLs        int
	ScrapeMaxChars       int
	ScrapeRenderEndpoint string

	// Persistence (optional)
	DatabaseURL string

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from the web app's backend
	AuthMode string
}

func Load() *Config {
	return &Config{
		Environment:          getEnv("ENVIRONMENT", "development"),
		Port:                 getEnv("PORT", "8080"),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		ProviderPriority:     strings.ToLower(getEnv("AI_PROVIDER_PRIORITY", ProviderGemini)),
		ProviderTimeout:      getEnvDuration("PROVIDER_TIMEOUT", 30*time.Second),
		MaxTokens:            getEnvInt("MAX_TOKENS", 2048),
		ThinkingMaxTokens:    getEnvInt("THINKING_MAX_TOKENS", 8192),
		Temperature:          getEnvFloat("TEMPERATURE", 0.7),
		ThinkingBudget:       getEnvInt("THINKING_BUDGET", 4096),
		SearchAPIKey:         getEnv("GOOGLE_SEARCH_API_KEY", ""),
		SearchEngineID:       getEnv("GOOGLE_SEARCH_ENGINE_ID", ""),
		SearchResultLimit:    getEnvInt("SEARCH_RESULT_LIMIT", 5),
		SearchMinInterval:    getEnvDuration("SEARCH_MIN_INTERVAL", time.Second),
		SearchTimeout:        getEnvDuration("SEARCH_TIMEOUT", 10*time.Second),
		ScrapeTimeout:        getEnvDuration("SCRAPE_TIMEOUT", 15*time.Second),
		ScrapeMaxURLs:        getEnvInt("SCRAPE_MAX_URLS", 3),
		ScrapeMaxChars:       getEnvInt("SCRAPE_MAX_CHARS", 2000),
		ScrapeRenderEndpoint: getEnv("SCRAPE_RENDER_ENDPOINT", "https://r.jina.ai/"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		SentryDSN:            getEnv("SENTRY_DSN", ""),
		LangfusePublicKey:    getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey:    getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:         getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:      getEnv("LANGFUSE_ENABLED", "false") == "true",
		AuthMode:             getEnv("AUTH_MODE", "none"), // Default to no auth for self-hosted
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

// Numeric settings fall back to the default when missing, unparsable or not positive.

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil || f < 0 {
		return defaultValue
	}
	return f
}

// getEnvDuration accepts Go durations ("15s") or a bare number of milliseconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

// IsGatewayMode returns true if running behind the web app's gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == "gateway"
}

// OpenAIFirst reports whether the priority preference puts OpenAI ahead of Gemini
func (c *Config) OpenAIFirst() bool {
	return c.ProviderPriority == ProviderOpenAI
}

// placeholderPattern matches whole template values only. Real keys can
// contain runs like "xxx" or "todo" anywhere in their random body.
var placeholderPattern = regexp.MustCompile(
	`^((sk-(proj-)?)?x+|your[_-].*|<.*>|.*_here|changeme|change[_-]me|placeholder|replace[_-]?me|todo)$`,
)

// IsPlaceholder reports whether a credential is empty or an obvious template value
// such as "your_api_key_here" left over from an .env example.
func IsPlaceholder(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return true
	}
	return placeholderPattern.MatchString(v)
}
