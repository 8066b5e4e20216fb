package models

import (
	"time"

	"gorm.io/gorm"
)

// Livestock health status constants
const (
	LivestockStatusHealthy     = "healthy"
	LivestockStatusSick        = "sick"
	LivestockStatusQuarantined = "quarantined"
)

/** --------------------ENTITIES-------------------- */
// Livestock represents a single animal registered on a farm
type Livestock struct {
	gorm.Model
	FarmID       uint    `gorm:"not null;index" json:"farmId"`
	Tag          string  `gorm:"not null" json:"tag"` // Ear tag or other physical identifier
	Species      string  `gorm:"not null" json:"species"`
	Breed        string  `json:"breed,omitempty"`
	WeightKg     float64 `gorm:"column:weight_kg" json:"weightKg"`
	HealthStatus string  `gorm:"not null;type:varchar(20);check:health_status IN ('healthy', 'sick', 'quarantined')" json:"healthStatus"`

	Farm Farm `gorm:"foreignKey:FarmID" json:"-"`
}

/** -------------------- DTOs -------------------- */

type CreateLivestockRequest struct {
	Tag          string  `json:"tag" binding:"required"`
	Species      string  `json:"species" binding:"required"`
	Breed        string  `json:"breed"`
	WeightKg     float64 `json:"weightKg" binding:"omitempty,gt=0"`
	HealthStatus string  `json:"healthStatus" binding:"omitempty,oneof=healthy sick quarantined"`
}

type UpdateLivestockRequest struct {
	Tag          *string  `json:"tag,omitempty"`
	Breed        *string  `json:"breed,omitempty"`
	WeightKg     *float64 `json:"weightKg,omitempty" binding:"omitempty,gt=0"`
	HealthStatus *string  `json:"healthStatus,omitempty" binding:"omitempty,oneof=healthy sick quarantined"`
}

type LivestockResponse struct {
	ID           uint      `json:"id"`
	FarmID       uint      `json:"farmId"`
	Tag          string    `json:"tag"`
	Species      string    `json:"species"`
	Breed        string    `json:"breed,omitempty"`
	WeightKg     float64   `json:"weightKg"`
	HealthStatus string    `json:"healthStatus"`
	CreatedAt    time.Time `json:"createdAt"`
}
