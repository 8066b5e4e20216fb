package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farm-service/internal/adapters/kafka"
	"farm-service/internal/adapters/storage"
	"farm-service/internal/api/handlers"
	"farm-service/internal/api/middleware"
	"farm-service/internal/api/routes"
	"farm-service/internal/config"
	"farm-service/internal/database"
	"farm-service/internal/repositories/postgres"
	"farm-service/internal/services"
	ws "farm-service/internal/websocket"

	"github.com/joho/godotenv"
)

// @title Farm Service API
// @version 1.0
// @description Farm management platform with a real-time dashboard broadcast service
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
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

	db, err := database.NewPostgresConnection(cfg.Database.PostgresURI())
	if err != nil {
		slog.Error("Failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	redisClient, err := database.NewRedisConnection(&cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	minioClient, err := storage.NewMinIOClient(cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket)
	if err != nil {
		slog.Error("Failed to connect to MinIO", "error", err)
		os.Exit(1)
	}

	// Event publishing is best-effort; the API stays up without Kafka
	producer, err := kafka.InitKafkaProducer(cfg.Kafka.Brokers)
	if err != nil {
		slog.Warn("Kafka unavailable, farm events will not be published", "error", err)
		producer = nil
	} else {
		defer producer.Close()
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	farmRepo := postgres.NewFarmRepository(db)
	livestockRepo := postgres.NewLivestockRepository(db)
	cropRepo := postgres.NewCropRepository(db)
	taskRepo := postgres.NewTaskRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)

	// Services
	userService := services.NewUserService(userRepo, cfg.JWT.Secret, cfg.JWT.ExpirationTime)
	farmService := services.NewFarmService(farmRepo, userRepo)
	dashboardService := services.NewDashboardService(livestockRepo, cropRepo, taskRepo, transactionRepo)
	redisService := services.NewRedisService(redisClient)
	eventService := services.NewEventService(producer, cfg.Kafka.Topic)

	// Real-time dashboard hub
	hub := ws.NewHub(farmService, dashboardService, farmService, redisService, ws.HubConfig{
		MaxConnections:    cfg.WebSocket.MaxConnections,
		HeartbeatInterval: cfg.WebSocket.HeartbeatInterval,
		WriteTimeout:      cfg.WebSocket.WriteTimeout,
		SendBufferSize:    cfg.WebSocket.SendBufferSize,
	})
	notifier := services.NewNotifier(eventService, dashboardService, hub)

	router := routes.SetupRouter(cfg, routes.Handlers{
		Auth:      handlers.NewAuthHandler(userService),
		User:      handlers.NewUserHandler(userService),
		Farm:      handlers.NewFarmHandler(farmService, minioClient, notifier),
		Livestock: handlers.NewLivestockHandler(livestockRepo, farmService, notifier),
		Crop:      handlers.NewCropHandler(cropRepo, farmService, notifier),
		Task:      handlers.NewTaskHandler(taskRepo, farmService, notifier),
		Finance:   handlers.NewFinanceHandler(transactionRepo, farmService, notifier),
		Dashboard: handlers.NewDashboardHandler(dashboardService, farmService),
		WebSocket: handlers.NewWebSocketHandler(hub, cfg.JWT.Secret),
	}, middleware.NewRateLimitMiddleware(redisService))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")

	hub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Forced shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exited")
}
