package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Joeches/eaglesoak-realtor-ai/internal/config"
	"github.com/Joeches/eaglesoak-realtor-ai/internal/db"
	dbRedis "github.com/Joeches/eaglesoak-realtor-ai/internal/db/redis"
	"github.com/Joeches/eaglesoak-realtor-ai/internal/domain"
	logpkg "github.com/Joeches/eaglesoak-realtor-ai/internal/logger"
	"github.com/Joeches/eaglesoak-realtor-ai/internal/metrics"
	"github.com/Joeches/eaglesoak-realtor-ai/internal/repository/embcache"
	listingrepo "github.com/Joeches/eaglesoak-realtor-ai/internal/repository/listing"
	propertyrepo "github.com/Joeches/eaglesoak-realtor-ai/internal/repository/property"
	"github.com/Joeches/eaglesoak-realtor-ai/internal/transport/gateway"
	"github.com/Joeches/eaglesoak-realtor-ai/internal/transport/httpapi"
	openaiProv "github.com/Joeches/eaglesoak-realtor-ai/internal/transport/openai"
	chatuc "github.com/Joeches/eaglesoak-realtor-ai/internal/usecase/chat"
	healthuc "github.com/Joeches/eaglesoak-realtor-ai/internal/usecase/health"
	"github.com/Joeches/eaglesoak-realtor-ai/internal/version"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting assistant API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("provider", cfg.Assistant.Provider),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterAssistantMetrics()

	embedder, generator, checkers := buildProviders(cfg, store, logger)
	logger.Info("Providers created",
		zap.String("provider", cfg.Assistant.Provider),
		zap.String("embedding_model", cfg.Assistant.Embedding.Model),
		zap.Int("dimensions", cfg.Assistant.Embedding.Dimensions),
		zap.String("generation_model", cfg.Assistant.Generation.Model),
	)

	// Repositories — the catalog and vector index are written by the batch
	// indexer; this service only reads.
	propRepo := propertyrepo.New(store)
	listingRepo := listingrepo.New(store, cfg.Assistant.IndexName, cfg.Assistant.Embedding.Dimensions)

	chatSvc := chatuc.New(embedder, listingRepo, propRepo, generator, chatuc.Config{
		MatchKMax:       cfg.Assistant.MatchKMax,
		EmbedTimeout:    time.Duration(cfg.Assistant.Timeouts.EmbedSec) * time.Second,
		RetrieveTimeout: time.Duration(cfg.Assistant.Timeouts.RetrieveSec) * time.Second,
		LookupTimeout:   time.Duration(cfg.Assistant.Timeouts.LookupSec) * time.Second,
		GenerateTimeout: time.Duration(cfg.Assistant.Timeouts.GenerateSec) * time.Second,
	})

	healthSvc := healthuc.New(store, checkers)

	server := httpapi.NewServer(chatSvc, propRepo, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(httpapi.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildProviders assembles the provider decorator chains — composition root.
// Embedder: provider -> cached -> instrumented. Generator: provider ->
// instrumented. Health checkers point at the base providers, before the
// decorators.
func buildProviders(
	cfg config.Config, store db.Store, logger *zap.Logger,
) (domain.Embedder, domain.Generator, map[string]healthuc.ProviderChecker) {
	var base domain.Embedder
	var gen domain.Generator
	checkers := make(map[string]healthuc.ProviderChecker)

	switch cfg.Assistant.Provider {
	case "gateway":
		client := gateway.NewClient(&gateway.Config{
			BaseURL:         cfg.Providers.Gateway.BaseURL,
			APIKey:          cfg.Providers.Gateway.APIKey,
			EmbeddingModel:  cfg.Assistant.Embedding.Model,
			GenerationModel: cfg.Assistant.Generation.Model,
			MaxTokens:       cfg.Assistant.Generation.MaxTokens,
			Temperature:     cfg.Assistant.Generation.Temperature,
			Logger:          logger,
		})
		base, gen = client, client
		checkers["gateway"] = client
	default:
		emb := openaiProv.NewEmbedder(&openaiProv.EmbedderConfig{
			APIKey:     cfg.Providers.OpenAI.APIKey,
			BaseURL:    cfg.Providers.OpenAI.BaseURL,
			Model:      cfg.Assistant.Embedding.Model,
			Dimensions: cfg.Assistant.Embedding.Dimensions,
			Logger:     logger,
		})
		base = emb
		checkers["embedding"] = emb
		gen = openaiProv.NewGenerator(&openaiProv.GeneratorConfig{
			APIKey:       cfg.Providers.OpenAI.APIKey,
			BaseURL:      cfg.Providers.OpenAI.BaseURL,
			Model:        cfg.Assistant.Generation.Model,
			MaxTokens:    cfg.Assistant.Generation.MaxTokens,
			Temperature:  cfg.Assistant.Generation.Temperature,
			MaxRetries:   cfg.Providers.OpenAI.MaxRetries,
			InitialDelay: time.Duration(cfg.Providers.OpenAI.InitialDelayMS) * time.Millisecond,
			Logger:       logger,
		})
	}

	embedder := base
	if cfg.Cache.Enabled {
		embedder = embcache.New(
			base, store,
			cfg.Assistant.Embedding.Model,
			time.Duration(cfg.Cache.TTLHours)*time.Hour,
			metrics.EmbeddingCacheTotal,
			logger,
		)
	}

	prov := cfg.Assistant.Provider
	var wrappedEmb domain.Embedder = chatuc.NewInstrumentedEmbedder(
		embedder, prov, cfg.Assistant.Embedding.Model, logger)
	var wrappedGen domain.Generator = chatuc.NewInstrumentedGenerator(
		gen, prov, cfg.Assistant.Generation.Model, logger)

	return wrappedEmb, wrappedGen, checkers
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a
// plain text stacktrace. This is the outermost boundary for unexpected
// failures during assembly.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":  "internal_error",
						"error": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
