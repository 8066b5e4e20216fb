package postgres

import (
	"time"

	"farm-service/internal/models"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db}
}

func (r *TransactionRepository) Create(tx *models.Transaction) error {
	return r.db.Create(tx).Error
}

func (r *TransactionRepository) Delete(txID uint) error {
	return r.db.Delete(&models.Transaction{}, txID).Error
}

func (r *TransactionRepository) GetByID(txID uint) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.First(&t, txID).Error
	return &t, err
}

func (r *TransactionRepository) GetByFarm(farmID uint, limit int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var txs []models.Transaction
	err := r.db.Where("farm_id = ?", farmID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}

// TotalsSince sums income and expenses for a farm since the given time
func (r *TransactionRepository) TotalsSince(farmID uint, since time.Time) (models.FinanceTotals, error) {
	type row struct {
		Type  string
		Total float64
	}
	var rows []row
	err := r.db.Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) as total").
		Where("farm_id = ? AND occurred_at >= ?", farmID, since).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return models.FinanceTotals{}, err
	}

	var totals models.FinanceTotals
	for _, r := range rows {
		switch r.Type {
		case models.TransactionTypeIncome:
			totals.Income = r.Total
		case models.TransactionTypeExpense:
			totals.Expense = r.Total
		}
	}
	totals.Net = totals.Income - totals.Expense
	return totals, nil
}
