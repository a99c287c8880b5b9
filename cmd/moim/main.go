package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/moimapp/moim/internal/database"
	"github.com/moimapp/moim/internal/logging"
	"github.com/moimapp/moim/internal/server"
)

func main() {
	// .env is optional; real deployments set the environment directly
	godotenv.Load()

	logger := logging.Setup(os.Getenv("LOG_LEVEL"))

	port := os.Getenv("MOIM_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("MOIM_DB_PATH")
	if dbPath == "" {
		dbPath = "moim.db"
	}

	jwtSecret := os.Getenv("MOIM_JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("MOIM_JWT_SECRET is required")
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	srv := server.New(db, server.Config{
		JWTSecret:     jwtSecret,
		SecureCookies: os.Getenv("MOIM_SECURE_COOKIES") == "true",
	}, logger)

	// Expired rate-limit windows accumulate without periodic cleanup
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			srv.RateLimiter().Cleanup()
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("moim listening", "port", port, "db", dbPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
