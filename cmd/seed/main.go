package main

import (
	"log/slog"
	"os"
	"time"

	"farm-service/internal/config"
	"farm-service/internal/database"
	"farm-service/internal/models"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeds a demo account with one farm and enough records to light up
// every dashboard module. Idempotent: skips if the demo user exists.
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

	db, err := database.NewPostgresConnection(cfg.Database.PostgresURI())
	if err != nil {
		slog.Error("Failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	if err := seed(db); err != nil {
		slog.Error("Seed failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Seed complete")
}

func seed(db *gorm.DB) error {
	var existing models.User
	if err := db.Where("email = ?", "demo@farm.local").First(&existing).Error; err == nil {
		slog.Info("Demo user already present, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := models.User{
		Username: "demo",
		Email:    "demo@farm.local",
		Password: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	farm := models.Farm{
		Name:     "Green Valley",
		Location: "Da Lat",
		SizeHa:   42.5,
		OwnerID:  user.ID,
		Members:  []*models.User{&user},
	}
	if err := db.Create(&farm).Error; err != nil {
		return err
	}

	now := time.Now()
	harvest := now.AddDate(0, 2, 0)
	overdue := now.AddDate(0, 0, -3)

	records := []interface{}{
		&models.Livestock{FarmID: farm.ID, Tag: "COW-001", Species: "cattle", Breed: "holstein", WeightKg: 540, HealthStatus: models.LivestockStatusHealthy},
		&models.Livestock{FarmID: farm.ID, Tag: "COW-002", Species: "cattle", Breed: "holstein", WeightKg: 520, HealthStatus: models.LivestockStatusSick},
		&models.Crop{FarmID: farm.ID, Name: "Coffee", Field: "north", AreaHa: 12, PlantedAt: now.AddDate(0, -6, 0), ExpectedHarvest: &harvest, GrowthStage: models.CropStageGrowing},
		&models.Task{FarmID: farm.ID, Title: "Repair irrigation pump", Category: "maintenance", DueAt: overdue, Status: models.TaskStatusOpen},
		&models.Task{FarmID: farm.ID, Title: "Vaccinate herd", Category: "livestock", DueAt: now.AddDate(0, 0, 7), Status: models.TaskStatusOpen},
		&models.Transaction{FarmID: farm.ID, Type: models.TransactionTypeIncome, Category: "produce sale", Amount: 3200, OccurredAt: now.AddDate(0, 0, -10)},
		&models.Transaction{FarmID: farm.ID, Type: models.TransactionTypeExpense, Category: "feed", Amount: 800, OccurredAt: now.AddDate(0, 0, -5)},
	}
	for _, r := range records {
		if err := db.Create(r).Error; err != nil {
			return err
		}
	}
	return nil
}
