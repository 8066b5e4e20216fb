package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"farm-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStats struct {
	livestockTotal int64
	livestockSick  int64
	cropsTotal     int64
	cropsDue       int64
	tasksOpen      int64
	tasksOverdue   int64
	totals         models.FinanceTotals
	err            error
}

func (f *fakeStats) CountByFarm(farmID uint) (int64, error) {
	return f.livestockTotal, f.err
}

func (f *fakeStats) CountByFarmAndStatus(farmID uint, status string) (int64, error) {
	return f.livestockSick, f.err
}

func (f *fakeStats) CountHarvestDue(farmID uint, now time.Time) (int64, error) {
	return f.cropsDue, f.err
}

func (f *fakeStats) CountOpen(farmID uint) (int64, error) {
	return f.tasksOpen, f.err
}

func (f *fakeStats) CountOverdue(farmID uint, now time.Time) (int64, error) {
	return f.tasksOverdue, f.err
}

func (f *fakeStats) TotalsSince(farmID uint, since time.Time) (models.FinanceTotals, error) {
	return f.totals, f.err
}

// cropStats adapts fakeStats so crop counts differ from livestock counts
type cropStats struct{ *fakeStats }

func (c cropStats) CountByFarm(farmID uint) (int64, error) {
	return c.cropsTotal, c.err
}

func newService(f *fakeStats) *DashboardService {
	return NewDashboardService(f, cropStats{f}, f, f)
}

func TestBuildDashboardEmptyFarmIsHealthy(t *testing.T) {
	svc := newService(&fakeStats{})

	data, err := svc.BuildDashboard(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, uint(1), data.Snapshot.FarmID)
	assert.Equal(t, float64(100), data.Snapshot.PerformanceScore)
	assert.Equal(t, "good", data.Snapshot.LivestockHealth.Status)
	assert.Equal(t, "good", data.Snapshot.FinanceHealth.Status)
	assert.Empty(t, data.Alerts)
}

func TestBuildDashboardScoresAndWeights(t *testing.T) {
	svc := newService(&fakeStats{
		livestockTotal: 10,
		livestockSick:  5, // 50
		cropsTotal:     4,
		cropsDue:       1, // 75
		tasksOpen:      10,
		tasksOverdue:   0, // 100
		totals:         models.FinanceTotals{Income: 100, Expense: 50, Net: 50}, // 100
	})

	data, err := svc.BuildDashboard(context.Background(), 1)
	require.NoError(t, err)

	snap := data.Snapshot
	assert.InDelta(t, 50, snap.LivestockHealth.Score, 0.001)
	assert.Equal(t, "attention", snap.LivestockHealth.Status)
	assert.InDelta(t, 75, snap.CropHealth.Score, 0.001)
	assert.Equal(t, "good", snap.CropHealth.Status)
	assert.InDelta(t, 100, snap.TaskHealth.Score, 0.001)
	assert.InDelta(t, 100, snap.FinanceHealth.Score, 0.001)

	// 0.3*50 + 0.3*75 + 0.2*100 + 0.2*100
	assert.InDelta(t, 77.5, snap.PerformanceScore, 0.001)
}

func TestBuildDashboardAlerts(t *testing.T) {
	svc := newService(&fakeStats{
		livestockTotal: 10,
		livestockSick:  2,
		cropsTotal:     3,
		cropsDue:       1,
		tasksOpen:      8,
		tasksOverdue:   6,
		totals:         models.FinanceTotals{Income: 100, Expense: 300, Net: -200},
	})

	data, err := svc.BuildDashboard(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, data.Alerts, 4)

	byCategory := make(map[string]models.Alert)
	for _, a := range data.Alerts {
		byCategory[a.Category] = a
		assert.Equal(t, uint(7), a.FarmID)
	}

	assert.Equal(t, models.AlertSeverityWarning, byCategory["livestock"].Severity)
	assert.Equal(t, models.AlertSeverityWarning, byCategory["crops"].Severity)
	// Five or more overdue tasks escalate to critical
	assert.Equal(t, models.AlertSeverityCritical, byCategory["tasks"].Severity)
	assert.Equal(t, models.AlertSeverityCritical, byCategory["finance"].Severity)
}

func TestBuildDashboardInsights(t *testing.T) {
	svc := newService(&fakeStats{
		livestockTotal: 5,
		totals:         models.FinanceTotals{Income: 500, Expense: 100, Net: 400},
	})

	data, err := svc.BuildDashboard(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, data.Insights, 2)
	assert.Equal(t, "livestock", data.Insights[0].Category)
	assert.Equal(t, "finance", data.Insights[1].Category)
}

func TestBuildDashboardPropagatesStatErrors(t *testing.T) {
	svc := newService(&fakeStats{err: errors.New("db down")})

	_, err := svc.BuildDashboard(context.Background(), 1)
	assert.Error(t, err)
}

func TestFinanceHealth(t *testing.T) {
	tests := []struct {
		name       string
		totals     models.FinanceTotals
		wantScore  float64
		wantStatus string
	}{
		{"no activity", models.FinanceTotals{}, 100, "good"},
		{"positive net", models.FinanceTotals{Income: 10, Expense: 5, Net: 5}, 100, "good"},
		{"all expenses", models.FinanceTotals{Expense: 100, Net: -100}, 0, "critical"},
		{"small deficit", models.FinanceTotals{Income: 300, Expense: 400, Net: -100}, 75, "good"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			health := financeHealth(tt.totals)
			assert.InDelta(t, tt.wantScore, health.Score, 0.001)
			assert.Equal(t, tt.wantStatus, health.Status)
		})
	}
}

func TestHealthStatusThresholds(t *testing.T) {
	assert.Equal(t, "good", healthStatus(75))
	assert.Equal(t, "attention", healthStatus(74.9))
	assert.Equal(t, "attention", healthStatus(40))
	assert.Equal(t, "critical", healthStatus(39.9))
}
