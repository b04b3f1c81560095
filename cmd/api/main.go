package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/dmwangi/soko-api/internal/config"
	"github.com/dmwangi/soko-api/internal/database"
	"github.com/dmwangi/soko-api/internal/handlers"
	"github.com/dmwangi/soko-api/internal/routes"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg.DSN)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Database connection pool established")

	h := &handlers.Handlers{
		DB:        db,
		Logger:    logger,
		JWTSecret: cfg.JWTSecret,
		JWTExpiry: cfg.JWTExpiry,
	}

	router := routes.SetupRouter(h, cfg)

	logger.Info("Starting marketplace API server", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
