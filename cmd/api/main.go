package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/book-service/internal/auth"
	"github.com/Dan9191/book-service/internal/config"
	"github.com/Dan9191/book-service/internal/digest"
	"github.com/Dan9191/book-service/internal/handler"
	"github.com/Dan9191/book-service/internal/logging"
	"github.com/Dan9191/book-service/internal/repository"
	"github.com/Dan9191/book-service/internal/repository/memory"
	"github.com/Dan9191/book-service/internal/service"
	"github.com/Dan9191/book-service/internal/utils/email"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// store is satisfied by both storage backends.
type store interface {
	service.Store
	digest.Store
}

func main() {
	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logging.New(os.Getenv("LOG_LEVEL"), os.Stderr).Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := logging.New(cfg.LogLevel, os.Stdout)

	ctx := context.Background()

	// Initialize storage
	var st store
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage; data is lost on restart")
		st = memory.NewStore()
	default:
		db, err := openDB(ctx, cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		repo := repository.NewRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Fatalf("Failed to prepare schema: %v", err)
		}
		st = repo
	}

	// Initialize layers
	tokens := auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.TokenTTL)
	svc := service.NewService(st, auth.NewPasswordHasher(cfg.BcryptCost), tokens, logger)
	h := handler.NewHandler(svc, handler.CookieOptions{
		Name:   cfg.AuthCookieName,
		Secure: cfg.AuthCookieSecure,
		TTL:    tokens.TTL(),
	}, logger)

	// Setup router
	r := h.NewRouter(tokens)
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	// Like digest
	if cfg.DigestSchedule != "" {
		job := digest.NewJob(st, email.NewSender(cfg, logger), cfg.DigestTopN, logger)
		scheduler, err := job.Schedule(cfg.DigestSchedule)
		if err != nil {
			logger.Fatalf("Failed to schedule like digest: %v", err)
		}
		defer scheduler.Stop()
		logger.WithField("schedule", cfg.DigestSchedule).Info("Like digest scheduled")
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           corsHandler(r),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	waitForShutdown(ctx, server, logger)
}

func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func waitForShutdown(ctx context.Context, server *http.Server, logger *logrus.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutCtx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
	}
}
