package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"consultdesk/internal/config"
	"consultdesk/internal/db"
	"consultdesk/internal/handlers"
	"consultdesk/internal/logger"
	"consultdesk/internal/middleware"
	"consultdesk/internal/models"
	"consultdesk/internal/uploads"
	"consultdesk/internal/visitorpass"

	"github.com/rs/cors"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(logger.Config{Debug: cfg.Debug, LogDir: cfg.LogDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialise logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	if err := db.RunMigrations(ctx, conn); err != nil {
		logger.Fatal("Failed to run migrations", "err", err)
	}

	if err := seedAdminUser(ctx, conn, cfg); err != nil {
		logger.Warn("Failed to seed admin user", "err", err)
	}

	var revoker middleware.Revoker = middleware.NewMemoryRevoker()
	if cfg.RedisURL != "" {
		redisRevoker, err := middleware.NewRedisRevoker(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "err", err)
		}
		defer redisRevoker.Close()
		revoker = redisRevoker
		logger.Info("Token revocation backed by redis")
	}

	router := handlers.NewRouter(handlers.Deps{
		DB:       conn,
		Auth:     middleware.NewAuth(cfg.JWTSecret, cfg.TokenTTL, revoker),
		Limiter:  middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Images:   uploads.NewImageStore(cfg.UploadDir),
		Passes:   visitorpass.NewIssuer(cfg.JWTSecret),
		Location: cfg.Location(),
	})

	// cors → security headers → access log → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	handler := corsHandler.Handler(middleware.SecurityHeaders(middleware.AccessLog(router)))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "addr", "http://localhost:"+cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received; shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "err", err)
		return
	}
	logger.Info("Server stopped cleanly")
}

func seedAdminUser(ctx context.Context, conn *sql.DB, cfg *config.Config) error {
	if _, err := models.GetUserByEmail(ctx, conn, cfg.AdminEmail); err == nil {
		return nil
	} else if !models.IsNotFound(err) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := models.CreateUser(ctx, conn, cfg.AdminEmail, string(hashedPassword), models.RoleAdmin, "Administrator"); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("Created default admin user", "email", cfg.AdminEmail)
	return nil
}
