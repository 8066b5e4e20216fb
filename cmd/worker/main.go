package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farm-service/internal/config"
	"farm-service/internal/database"
	"farm-service/internal/services"

	"github.com/joho/godotenv"
	kafkago "github.com/segmentio/kafka-go"
)

// The worker consumes the farm-events topic and maintains the per-farm
// analytics rollups in Redis. It runs separately from the API server so
// a slow consumer never touches request latency.
func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	redisClient, err := database.NewRedisConnection(&cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	redisService := services.NewRedisService(redisClient)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          cfg.Kafka.Topic,
		GroupID:        cfg.Kafka.GroupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("Worker started", "topic", cfg.Kafka.Topic, "group", cfg.Kafka.GroupID)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			slog.Error("Failed to read message", "error", err)
			continue
		}

		var event services.FarmEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			slog.Warn("Skipping malformed event", "offset", msg.Offset, "error", err)
			continue
		}

		handleEvent(ctx, redisService, &event)
	}

	slog.Info("Worker stopped")
}

func handleEvent(ctx context.Context, redisService *services.RedisService, event *services.FarmEvent) {
	day := time.Unix(event.Timestamp, 0).UTC()

	switch event.Type {
	case services.EventAlertRaised:
		if err := redisService.IncrementAlertCount(ctx, event.FarmID, day); err != nil {
			slog.Error("Failed to bump alert counter", "farmID", event.FarmID, "error", err)
		}
	default:
		// Mutations fan out to sibling server instances over Redis pubsub
		if err := redisService.PublishFarmEvent(ctx, event.FarmID, event); err != nil {
			slog.Error("Failed to relay farm event", "farmID", event.FarmID, "error", err)
		}
	}

	slog.Debug("Event processed", "type", event.Type, "farmID", event.FarmID)
}
