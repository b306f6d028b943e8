package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"rafiq-chat/internal/agents"
	"rafiq-chat/internal/ai"
	"rafiq-chat/internal/config"
	"rafiq-chat/internal/handlers"
	"rafiq-chat/internal/logging"
	"rafiq-chat/internal/middleware"
	"rafiq-chat/internal/ratelimit"
	"rafiq-chat/internal/weather"
	"rafiq-chat/internal/websearch"
)

func main() {
	_ = godotenv.Load()
	logging.Init()
	log := logging.L()

	cfg := config.Load()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := newStore(ctx, cfg, log)
	defer store.Close()

	registry := ai.DefaultRegistry()
	transport := ai.NewTransport(cfg.OpenRouterKey, cfg.SiteURL)

	var engineOpts []ai.EngineOption
	if cfg.CredentialMissing() {
		log.Warn("OPENROUTER_API_KEY is not configured, turns will fail with a configuration error")
		engineOpts = append(engineOpts, ai.WithConfigError(&ai.ConfigError{Message: ai.ConfigErrorMessage}))
	}
	engine := ai.NewEngine(registry, transport, engineOpts...)

	gatherer := websearch.NewGatherer()
	weatherClient := weather.NewClient()
	orchestrator := agents.NewOrchestrator(registry, transport)
	hub := agents.NewHub()

	handler := handlers.New(engine, gatherer, weatherClient, orchestrator, hub, registry)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS())
	router.Use(middleware.RateLimit(store))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handler.Register(router)

	// No WriteTimeout: SSE streams and agent websockets outlive any fixed
	// deadline.
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		log.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}

// newStore backs the rate limiter with Redis when REDIS_URL is set, so
// limits hold across workers, and an in-process store otherwise.
func newStore(ctx context.Context, cfg *config.Config, log *zap.Logger) ratelimit.Store {
	rlCfg := ratelimit.Config{Limit: cfg.RateLimitRequests, Window: cfg.RateLimitWindow}
	if cfg.RedisURL != "" {
		store, err := ratelimit.NewRedisStoreFromURL(ctx, cfg.RedisURL, rlCfg)
		if err != nil {
			log.Warn("redis unavailable, falling back to in-memory rate limiting", zap.Error(err))
		} else {
			log.Info("rate limiting backed by redis")
			return store
		}
	}
	return ratelimit.NewMemoryStore(rlCfg)
}
