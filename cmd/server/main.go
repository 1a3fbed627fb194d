package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/knagato/taskflow-api/internal/config"
	"github.com/knagato/taskflow-api/internal/database"
	"github.com/knagato/taskflow-api/internal/handlers"
	"github.com/knagato/taskflow-api/internal/logger"
	"github.com/knagato/taskflow-api/internal/middleware"
	"github.com/knagato/taskflow-api/internal/repository"
	"github.com/knagato/taskflow-api/internal/services"
	"github.com/knagato/taskflow-api/internal/token"
)

func main() {
	log := logger.New(os.Stdout)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", "error", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// A store that cannot be reached at boot is fatal: external
	// supervision restarts the process rather than serving degraded.
	if err := database.Connect(cfg); err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}

	if err := database.Migrate(); err != nil {
		log.Fatal("failed to run migrations", "error", err)
	}

	// Wire repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	authService := services.NewAuthService(userRepo)
	taskService := services.NewTaskService(taskRepo)
	tokens := token.NewManager(cfg.JWT.Secret, cfg.JWT.TTL)

	rlConfig := middleware.DefaultRateLimiterConfig()
	rlConfig.Requests = cfg.RateLimit.Requests
	rlConfig.Window = cfg.RateLimit.Window
	rateLimiter := middleware.NewRateLimiter(rlConfig)
	defer rateLimiter.Stop()

	r := handlers.NewRouter(
		handlers.NewAuthHandler(authService, tokens),
		handlers.NewTaskHandler(taskService),
		middleware.RequireAuth(tokens, authService),
		rateLimiter.Middleware(),
		log,
	)

	log.Info("server starting", "port", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}
