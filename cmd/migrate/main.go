package main

import (
	"log/slog"
	"os"

	"farm-service/internal/config"
	"farm-service/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// NewPostgresConnection runs AutoMigrate on connect
	if _, err := database.NewPostgresConnection(cfg.Database.PostgresURI()); err != nil {
		slog.Error("Migration failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Migration complete")
}
