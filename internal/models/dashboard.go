package models

import "time"

// Alert severity constants
const (
	AlertSeverityInfo     = "info"
	AlertSeverityWarning  = "warning"
	AlertSeverityCritical = "critical"
)

// ModuleHealth is a 0-100 score for one module of a farm's dashboard
type ModuleHealth struct {
	Score  float64 `json:"score"`
	Status string  `json:"status"` // "good" | "attention" | "critical"
}

// DashboardSnapshot is a point-in-time aggregate of a farm's state.
// It is recomputed on every request and never persisted.
type DashboardSnapshot struct {
	FarmID           uint          `json:"farmId"`
	GeneratedAt      time.Time     `json:"generatedAt"`
	LivestockTotal   int64         `json:"livestockTotal"`
	LivestockSick    int64         `json:"livestockSick"`
	CropsTotal       int64         `json:"cropsTotal"`
	CropsHarvestDue  int64         `json:"cropsHarvestDue"`
	TasksOpen        int64         `json:"tasksOpen"`
	TasksOverdue     int64         `json:"tasksOverdue"`
	Finance          FinanceTotals `json:"finance"`
	LivestockHealth  ModuleHealth  `json:"livestockHealth"`
	CropHealth       ModuleHealth  `json:"cropHealth"`
	TaskHealth       ModuleHealth  `json:"taskHealth"`
	FinanceHealth    ModuleHealth  `json:"financeHealth"`
	PerformanceScore float64       `json:"performanceScore"` // Weighted average of module scores
}

// Alert is a derived warning surfaced on the dashboard.
// Alerts have no identity beyond farm + category + timestamp.
type Alert struct {
	FarmID    uint      `json:"farmId"`
	Category  string    `json:"category"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Insight is a derived informational note shown alongside alerts
type Insight struct {
	FarmID    uint      `json:"farmId"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// DashboardData bundles everything a dashboard_update frame carries
type DashboardData struct {
	Snapshot DashboardSnapshot `json:"snapshot"`
	Alerts   []Alert           `json:"alerts"`
	Insights []Insight         `json:"insights"`
}
