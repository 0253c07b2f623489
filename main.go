package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/andrewpaige1/roadmap-api/auth"
	"github.com/andrewpaige1/roadmap-api/config"
	"github.com/andrewpaige1/roadmap-api/generation"
	"github.com/andrewpaige1/roadmap-api/handlers"
	"github.com/andrewpaige1/roadmap-api/history"
	"github.com/andrewpaige1/roadmap-api/middleware"
	"github.com/andrewpaige1/roadmap-api/view"
)

func init() {
	// Load .env file if not in production environment
	if os.Getenv("RAILWAY_ENVIRONMENT_NAME") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Printf("Warning: .env file not found, environment variables might not be loaded: %v", err)
		}
	}
}

func main() {
	env, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := config.NewLogger(env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	db, err := config.Connect(env, logger)
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	completer, err := generation.NewGeminiCompleter(ctx, env.GeminiAPIKey, env.GeminiModel)
	if err != nil {
		logger.Fatal("failed to create generator", zap.Error(err))
	}
	defer completer.Close()

	genOpts := generation.DefaultOptions()
	genOpts.Timeout = env.GenerationTimeout

	secret := env.JWTSecret
	if secret == "" && env.IsDevelopment {
		secret = "dev-only-secret"
		logger.Warn("JWT_SECRET_KEY not set, using a development secret")
	}
	issuer, err := auth.NewIssuer(secret, env.JWTIssuer, env.JWTAudience)
	if err != nil {
		logger.Fatal("failed to create token issuer", zap.Error(err))
	}
	authMiddleware, err := middleware.EnsureValidToken(issuer, logger)
	if err != nil {
		logger.Fatal("failed to set up the jwt validator", zap.Error(err))
	}

	DBHandler := &handlers.DBHandler{
		DB:        db,
		Store:     history.NewStore(db, logger),
		Generator: generation.NewClient(completer, genOpts, logger),
		Sessions:  view.NewSessions(view.ZoomLimits{Min: env.ViewMinZoom, Max: env.ViewMaxZoom}, env.ViewSessionTTL),
		Logger:    logger,
	}

	mux := http.NewServeMux()
	DBHandler.Routes(mux, middleware.SyncUserMiddleware(db, logger))
	mux.Handle("GET /metrics", promhttp.Handler())

	// Configure CORS with specific options
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   env.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(middleware.RequestLogger(logger)(authMiddleware(mux)))

	server := &http.Server{
		Addr:              "0.0.0.0:" + env.Port,
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
		// generation can take most of a minute
		WriteTimeout: env.GenerationTimeout + 15*time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", server.Addr), zap.Bool("development", env.IsDevelopment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
