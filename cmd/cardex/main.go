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
	"go.uber.org/zap"

	"github.com/alexwilson/cardex/internal/config"
	"github.com/alexwilson/cardex/internal/db/factory"
	dbRedis "github.com/alexwilson/cardex/internal/db/redis"
	"github.com/alexwilson/cardex/internal/domain/search/predicate"
	logpkg "github.com/alexwilson/cardex/internal/logger"
	"github.com/alexwilson/cardex/internal/metrics"
	cardrepo "github.com/alexwilson/cardex/internal/repository/card"
	"github.com/alexwilson/cardex/internal/repository/pagecache"
	chiTransport "github.com/alexwilson/cardex/internal/transport/chi"
	carduc "github.com/alexwilson/cardex/internal/usecase/card"
	healthuc "github.com/alexwilson/cardex/internal/usecase/health"
	searchuc "github.com/alexwilson/cardex/internal/usecase/search"
	"github.com/alexwilson/cardex/internal/version"
)

func main() {
	// Load configuration based on ENV
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

	build := version.Get()
	logger.Info("Starting cardex API server",
		zap.String("version", build.Version),
		zap.String("commit", build.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("page_cache", cfg.Cache.Enabled()),
	)

	ctx := context.Background()
	store, err := factory.OpenCardStore(ctx, cfg.Database, cfg.Search.CollationLocale, logger)
	if err != nil {
		logger.Fatal("Failed to create card store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure card indexes", zap.Error(err))
	}
	if n, err := store.CountCards(ctx, predicate.Predicate{}); err == nil {
		logger.Info("Connected to database", zap.Int64("cards", n))
	} else {
		logger.Warn("Connected to database, card count unavailable", zap.Error(err))
	}

	// Register metrics explicitly (no init())
	metrics.RegisterCardMetrics()

	repo := cardrepo.New(store)

	// Pass nil interface (not typed nil pointer!) when the cache is disabled.
	var (
		searchRepo  searchuc.Repository = repo
		cachePinger healthuc.CachePinger
	)
	if cfg.Cache.Enabled() {
		kv, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Cache.Addrs,
			Username:   cfg.Cache.Username,
			Password:   cfg.Cache.Password,
			DB:         cfg.Cache.DB,
			Standalone: cfg.Cache.Standalone,
		})
		if err != nil {
			logger.Fatal("Failed to create page cache client", zap.Error(err))
		}
		defer kv.Close()
		if err := kv.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			// The cache is optional: pages are served from the store while it is down.
			logger.Warn("Page cache not ready", zap.Error(err))
		}
		searchRepo = pagecache.New(repo, kv, time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.PageCacheTotal, logger)
		cachePinger = kv
	}

	searchSvc := searchuc.New(searchRepo,
		searchuc.WithTimeout(time.Duration(cfg.Search.TimeoutMs)*time.Millisecond),
		searchuc.WithLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit),
	)
	cardSvc, err := carduc.New(repo, cfg.Cards.LRUSize)
	if err != nil {
		logger.Fatal("Failed to create card service", zap.Error(err))
	}
	healthSvc := healthuc.New(store, cachePinger)

	server := chiTransport.NewServer(searchSvc, cardSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: chiTransport.ParamErrorHandler,
	})

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

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
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
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
