package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasktrack/internal/api"
	"tasktrack/internal/app/service"
	"tasktrack/internal/common/security"
	"tasktrack/internal/domain/repository"
	"tasktrack/internal/platform/cache"
	"tasktrack/internal/platform/config"
	"tasktrack/internal/platform/database"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	log.Println("Configuration loaded.")

	tokens := security.NewTokenManager(cfg.JWTKey, cfg.JWTExp)

	db, err := database.Connect(cfg.DBConnStr)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected.")

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("Could not run migrations: %v", err)
	}
	log.Println("Migrations applied.")

	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient, err = cache.Connect(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Could not connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected.")
	}
	taskCache := cache.NewTaskListCache(redisClient, cfg.TaskCacheTTL)

	userRepo := repository.NewPgUserRepository(db)
	taskRepo := repository.NewPgTaskRepository(db)

	authService := service.NewAuthService(userRepo, tokens)
	taskService := service.NewTaskService(taskRepo, taskCache)

	router := api.NewRouter(tokens, authService, taskService, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
