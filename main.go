package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Conceptual-Machines/studybuddy-api/internal/api"
	"github.com/Conceptual-Machines/studybuddy-api/internal/api/handlers"
	"github.com/Conceptual-Machines/studybuddy-api/internal/config"
	"github.com/Conceptual-Machines/studybuddy-api/internal/database"
	"github.com/Conceptual-Machines/studybuddy-api/internal/llm"
	"github.com/Conceptual-Machines/studybuddy-api/internal/metrics"
	"github.com/Conceptual-Machines/studybuddy-api/internal/observability"
	"github.com/Conceptual-Machines/studybuddy-api/internal/orchestrator"
	"github.com/Conceptual-Machines/studybuddy-api/internal/scrape"
	"github.com/Conceptual-Machines/studybuddy-api/internal/search"
	"github.com/Conceptual-Machines/studybuddy-api/internal/services"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	environmentProduction = "production"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	ctx := context.Background()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "studybuddy-api@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			EnableLogs:       true,
			Debug:            cfg.Environment != environmentProduction,
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
	}

	tracer := observability.InitializeLangfuse(ctx, cfg)

	counters := metrics.NewCounters()
	recorder := metrics.Multi{metrics.NewSentryMetrics(), counters}
	if cloudwatchMetrics, err := metrics.NewClient(ctx, cfg.Environment); err != nil {
		log.Printf("⚠️  CloudWatch metrics unavailable: %v", err)
	} else {
		recorder = append(recorder, cloudwatchMetrics)
	}

	// Provider chain
	factory := llm.NewProviderFactory(cfg)
	providers, err := factory.Ordered(ctx)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to create LLM providers:", err)
	}
	priority := make([]string, 0, len(providers))
	for _, p := range providers {
		priority = append(priority, p.Name())
	}
	log.Printf("🤖 Provider priority: %v", priority)

	opts := []orchestrator.Option{
		orchestrator.WithScraper(scrape.NewHTTPScraper(
			&http.Client{Timeout: cfg.ScrapeTimeout}, cfg.ScrapeRenderEndpoint, cfg.ScrapeMaxChars)),
		orchestrator.WithSearchLimiter(rate.NewLimiter(rate.Every(cfg.SearchMinInterval), 1)),
		orchestrator.WithSearchLimit(cfg.SearchResultLimit),
		orchestrator.WithProviderTimeout(cfg.ProviderTimeout),
		orchestrator.WithSearchTimeout(cfg.SearchTimeout),
		orchestrator.WithScrapeTimeout(cfg.ScrapeTimeout),
		orchestrator.WithMaxScrapeURLs(cfg.ScrapeMaxURLs),
		orchestrator.WithRecorder(recorder),
		orchestrator.WithTracer(tracer),
		orchestrator.WithParams(orchestrator.Params{
			MaxTokens:         cfg.MaxTokens,
			ThinkingMaxTokens: cfg.ThinkingMaxTokens,
			Temperature:       cfg.Temperature,
		}),
	}

	googleSearch, err := search.NewGoogleSearch(ctx, cfg.SearchAPIKey, cfg.SearchEngineID)
	if err != nil {
		log.Printf("⚠️  Web search unavailable: %v", err)
	} else if googleSearch.Configured() {
		opts = append(opts, orchestrator.WithSearch(googleSearch))
		log.Println("🔎 Web search enabled")
	} else {
		log.Println("⚠️  Web search not configured (GOOGLE_SEARCH_API_KEY or GOOGLE_SEARCH_ENGINE_ID missing)")
	}
	generator := orchestrator.New(providers, opts...)

	// Persistence is optional
	deps := api.Dependencies{
		Generator: generator,
		Recorder:  recorder,
		Stats:     counters,
		Version:   GetVersion(),
		Status: handlers.ServiceStatus{
			Providers: factory.Configured(),
			Priority:  priority,
			Search:    googleSearch != nil && googleSearch.Configured(),
			AuthMode:  cfg.AuthMode,
		},
	}
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			sentry.CaptureException(err)
			log.Fatal("Failed to connect to database:", err)
		}
		if err := database.Migrate(db); err != nil {
			sentry.CaptureException(err)
			log.Fatal("Failed to run migrations:", err)
		}
		deps.Store = services.NewUsageService(db)
		deps.Status.Database = true
	} else {
		log.Println("⚠️  DATABASE_URL not set, generation logs will not be persisted")
	}

	if cfg.Environment == environmentProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.SetupRouter(cfg, deps)

	log.Printf("🚀 Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[strings.ToLower(k)] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
