package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"style-ai/internal/config"
	"style-ai/internal/db"
	apihttp "style-ai/internal/http"
	"style-ai/internal/llm"
	"style-ai/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	llmClient, closeLLM, err := llm.NewProvider(ctx, llm.ProviderConfig{
		Provider:    cfg.LLMProvider,
		APIKey:      cfg.LLMAPIKey,
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.LLMModel,
		Timeout:     cfg.LLMTimeout,
		MaxAttempts: cfg.LLMMaxAttempts,
	}, logger)
	if err != nil {
		logger.Fatal("llm provider", zap.Error(err))
	}
	defer closeLLM()

	analyzer := service.NewStyleAnalyzer(llmClient, service.StyleAnalyzerConfig{
		Model:             cfg.LLMModel,
		MaxTokens:         cfg.LLMMaxTokens,
		Temperature:       cfg.LLMTemperature,
		Timeout:           cfg.LLMTimeout,
		DefaultConfidence: cfg.LLMDefaultConfidence,
		APIKey:            cfg.LLMAPIKey,
	}, logger)

	health := service.NewHealthService(version)

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		health.Register("database", func(ctx context.Context) error { return db.Ping(ctx, pool) })
	} else {
		health.Register("database", nil)
	}

	limiter := service.NewMemoryRateLimiter(cfg.AnalyzeRateWindow, cfg.AnalyzeRateLimit)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			limiter = service.NewRedisRateLimiter(redisClient, cfg.AnalyzeRateWindow, cfg.AnalyzeRateLimit)
		}
		cancel()
		health.Register("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	} else {
		health.Register("redis", nil)
	}

	jwtSvc := service.NewJWTService(cfg.JWTSecret)
	if !jwtSvc.Enabled() {
		logger.Warn("jwt secret not configured, /api/v1 is unauthenticated")
	}

	router := apihttp.NewRouter(logger, apihttp.RouterConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		JWT:            jwtSvc,
		RateLimiter:    limiter,
	},
		apihttp.NewStyleHandler(logger, analyzer),
		apihttp.NewHealthHandler(logger, health),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("llm_provider", cfg.LLMProvider),
		zap.String("llm_model", cfg.LLMModel),
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	return logger
}
