package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction type constants
const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
)

/** --------------------ENTITIES-------------------- */
// Transaction represents a single financial entry for a farm
type Transaction struct {
	gorm.Model
	FarmID     uint      `gorm:"not null;index" json:"farmId"`
	Type       string    `gorm:"not null;type:varchar(10);check:type IN ('income', 'expense')" json:"type"`
	Category   string    `json:"category,omitempty"` // e.g. feed, seed, produce sale
	Amount     float64   `gorm:"not null" json:"amount"`
	OccurredAt time.Time `json:"occurredAt"`
	Note       string    `json:"note,omitempty"`

	Farm Farm `gorm:"foreignKey:FarmID" json:"-"`
}

/** -------------------- DTOs -------------------- */

type CreateTransactionRequest struct {
	Type       string    `json:"type" binding:"required,oneof=income expense"`
	Category   string    `json:"category"`
	Amount     float64   `json:"amount" binding:"required,gt=0"`
	OccurredAt time.Time `json:"occurredAt" binding:"required"`
	Note       string    `json:"note"`
}

type TransactionResponse struct {
	ID         uint      `json:"id"`
	FarmID     uint      `json:"farmId"`
	Type       string    `json:"type"`
	Category   string    `json:"category,omitempty"`
	Amount     float64   `json:"amount"`
	OccurredAt time.Time `json:"occurredAt"`
	Note       string    `json:"note,omitempty"`
}

// FinanceTotals aggregates income and expenses over a reporting window
type FinanceTotals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}
