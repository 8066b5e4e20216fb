package services

import (
	"context"
	"fmt"
	"time"

	"farm-service/internal/models"
)

// Module score weights for the overall performance score
const (
	weightLivestock = 0.3
	weightCrops     = 0.3
	weightTasks     = 0.2
	weightFinance   = 0.2
)

// Stat sources the dashboard aggregates over. The postgres repositories
// satisfy these; tests stub them.
type LivestockStats interface {
	CountByFarm(farmID uint) (int64, error)
	CountByFarmAndStatus(farmID uint, status string) (int64, error)
}

type CropStats interface {
	CountByFarm(farmID uint) (int64, error)
	CountHarvestDue(farmID uint, now time.Time) (int64, error)
}

type TaskStats interface {
	CountOpen(farmID uint) (int64, error)
	CountOverdue(farmID uint, now time.Time) (int64, error)
}

type FinanceStats interface {
	TotalsSince(farmID uint, since time.Time) (models.FinanceTotals, error)
}

// DashboardService recomputes a farm's dashboard snapshot on demand.
// The result is derived data only and is never persisted.
type DashboardService struct {
	livestock LivestockStats
	crops     CropStats
	tasks     TaskStats
	finance   FinanceStats
}

func NewDashboardService(livestock LivestockStats, crops CropStats, tasks TaskStats, finance FinanceStats) *DashboardService {
	return &DashboardService{
		livestock: livestock,
		crops:     crops,
		tasks:     tasks,
		finance:   finance,
	}
}

// BuildDashboard computes a fresh snapshot plus alerts and insights for the farm.
// The WebSocket hub consumes this through its SnapshotBuilder interface.
func (s *DashboardService) BuildDashboard(ctx context.Context, farmID uint) (*models.DashboardData, error) {
	now := time.Now()

	livestockTotal, err := s.livestock.CountByFarm(farmID)
	if err != nil {
		return nil, fmt.Errorf("livestock count: %w", err)
	}
	livestockSick, err := s.livestock.CountByFarmAndStatus(farmID, models.LivestockStatusSick)
	if err != nil {
		return nil, fmt.Errorf("sick livestock count: %w", err)
	}
	cropsTotal, err := s.crops.CountByFarm(farmID)
	if err != nil {
		return nil, fmt.Errorf("crop count: %w", err)
	}
	cropsDue, err := s.crops.CountHarvestDue(farmID, now)
	if err != nil {
		return nil, fmt.Errorf("harvest due count: %w", err)
	}
	tasksOpen, err := s.tasks.CountOpen(farmID)
	if err != nil {
		return nil, fmt.Errorf("open task count: %w", err)
	}
	tasksOverdue, err := s.tasks.CountOverdue(farmID, now)
	if err != nil {
		return nil, fmt.Errorf("overdue task count: %w", err)
	}
	finance, err := s.finance.TotalsSince(farmID, now.AddDate(0, -1, 0))
	if err != nil {
		return nil, fmt.Errorf("finance totals: %w", err)
	}

	snapshot := models.DashboardSnapshot{
		FarmID:          farmID,
		GeneratedAt:     now,
		LivestockTotal:  livestockTotal,
		LivestockSick:   livestockSick,
		CropsTotal:      cropsTotal,
		CropsHarvestDue: cropsDue,
		TasksOpen:       tasksOpen,
		TasksOverdue:    tasksOverdue,
		Finance:         finance,
		LivestockHealth: ratioHealth(livestockSick, livestockTotal),
		CropHealth:      ratioHealth(cropsDue, cropsTotal),
		TaskHealth:      ratioHealth(tasksOverdue, tasksOpen),
		FinanceHealth:   financeHealth(finance),
	}
	snapshot.PerformanceScore = weightLivestock*snapshot.LivestockHealth.Score +
		weightCrops*snapshot.CropHealth.Score +
		weightTasks*snapshot.TaskHealth.Score +
		weightFinance*snapshot.FinanceHealth.Score

	return &models.DashboardData{
		Snapshot: snapshot,
		Alerts:   s.deriveAlerts(&snapshot, now),
		Insights: s.deriveInsights(&snapshot, now),
	}, nil
}

// ratioHealth scores a module by the share of problematic items.
// A farm with no items at all in a module counts as fully healthy.
func ratioHealth(bad, total int64) models.ModuleHealth {
	if total <= 0 {
		return models.ModuleHealth{Score: 100, Status: "good"}
	}
	score := 100 * (1 - float64(bad)/float64(total))
	if score < 0 {
		score = 0
	}
	return models.ModuleHealth{Score: score, Status: healthStatus(score)}
}

func financeHealth(totals models.FinanceTotals) models.ModuleHealth {
	if totals.Income == 0 && totals.Expense == 0 {
		return models.ModuleHealth{Score: 100, Status: "good"}
	}
	if totals.Net >= 0 {
		return models.ModuleHealth{Score: 100, Status: "good"}
	}
	if totals.Income == 0 {
		return models.ModuleHealth{Score: 0, Status: "critical"}
	}
	score := 100 * totals.Income / (totals.Income + (-totals.Net))
	return models.ModuleHealth{Score: score, Status: healthStatus(score)}
}

func healthStatus(score float64) string {
	switch {
	case score >= 75:
		return "good"
	case score >= 40:
		return "attention"
	default:
		return "critical"
	}
}

func (s *DashboardService) deriveAlerts(snap *models.DashboardSnapshot, now time.Time) []models.Alert {
	alerts := make([]models.Alert, 0, 4)
	if snap.LivestockSick > 0 {
		alerts = append(alerts, models.Alert{
			FarmID:    snap.FarmID,
			Category:  "livestock",
			Severity:  models.AlertSeverityWarning,
			Message:   fmt.Sprintf("%d animal(s) flagged as sick", snap.LivestockSick),
			CreatedAt: now,
		})
	}
	if snap.CropsHarvestDue > 0 {
		alerts = append(alerts, models.Alert{
			FarmID:    snap.FarmID,
			Category:  "crops",
			Severity:  models.AlertSeverityWarning,
			Message:   fmt.Sprintf("%d crop(s) past their expected harvest date", snap.CropsHarvestDue),
			CreatedAt: now,
		})
	}
	if snap.TasksOverdue > 0 {
		severity := models.AlertSeverityWarning
		if snap.TasksOverdue >= 5 {
			severity = models.AlertSeverityCritical
		}
		alerts = append(alerts, models.Alert{
			FarmID:    snap.FarmID,
			Category:  "tasks",
			Severity:  severity,
			Message:   fmt.Sprintf("%d task(s) overdue", snap.TasksOverdue),
			CreatedAt: now,
		})
	}
	if snap.Finance.Net < 0 {
		alerts = append(alerts, models.Alert{
			FarmID:    snap.FarmID,
			Category:  "finance",
			Severity:  models.AlertSeverityCritical,
			Message:   fmt.Sprintf("Negative cash flow over the last 30 days (%.2f)", snap.Finance.Net),
			CreatedAt: now,
		})
	}
	return alerts
}

func (s *DashboardService) deriveInsights(snap *models.DashboardSnapshot, now time.Time) []models.Insight {
	insights := make([]models.Insight, 0, 2)
	if snap.LivestockTotal > 0 && snap.LivestockSick == 0 {
		insights = append(insights, models.Insight{
			FarmID:    snap.FarmID,
			Category:  "livestock",
			Message:   "All livestock healthy",
			CreatedAt: now,
		})
	}
	if snap.Finance.Income > 0 && snap.Finance.Net > 0 {
		insights = append(insights, models.Insight{
			FarmID:    snap.FarmID,
			Category:  "finance",
			Message:   fmt.Sprintf("Positive cash flow of %.2f over the last 30 days", snap.Finance.Net),
			CreatedAt: now,
		})
	}
	return insights
}
