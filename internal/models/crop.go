package models

import (
	"time"

	"gorm.io/gorm"
)

// Crop growth stage constants
const (
	CropStageSeeded    = "seeded"
	CropStageGrowing   = "growing"
	CropStageFlowering = "flowering"
	CropStageHarvested = "harvested"
)

/** --------------------ENTITIES-------------------- */
// Crop represents a planted crop on one of the farm's fields
type Crop struct {
	gorm.Model
	FarmID          uint       `gorm:"not null;index" json:"farmId"`
	Name            string     `gorm:"not null" json:"name"`
	Field           string     `json:"field,omitempty"` // Field or plot identifier
	AreaHa          float64    `gorm:"column:area_ha" json:"areaHa"`
	PlantedAt       time.Time  `json:"plantedAt"`
	ExpectedHarvest *time.Time `json:"expectedHarvest,omitempty"`
	GrowthStage     string     `gorm:"not null;type:varchar(20);check:growth_stage IN ('seeded', 'growing', 'flowering', 'harvested')" json:"growthStage"`

	Farm Farm `gorm:"foreignKey:FarmID" json:"-"`
}

/** -------------------- DTOs -------------------- */

type CreateCropRequest struct {
	Name            string     `json:"name" binding:"required"`
	Field           string     `json:"field"`
	AreaHa          float64    `json:"areaHa" binding:"omitempty,gt=0"`
	PlantedAt       time.Time  `json:"plantedAt" binding:"required"`
	ExpectedHarvest *time.Time `json:"expectedHarvest,omitempty"`
}

type UpdateCropRequest struct {
	Field           *string    `json:"field,omitempty"`
	AreaHa          *float64   `json:"areaHa,omitempty" binding:"omitempty,gt=0"`
	ExpectedHarvest *time.Time `json:"expectedHarvest,omitempty"`
	GrowthStage     *string    `json:"growthStage,omitempty" binding:"omitempty,oneof=seeded growing flowering harvested"`
}

type CropResponse struct {
	ID              uint       `json:"id"`
	FarmID          uint       `json:"farmId"`
	Name            string     `json:"name"`
	Field           string     `json:"field,omitempty"`
	AreaHa          float64    `json:"areaHa"`
	PlantedAt       time.Time  `json:"plantedAt"`
	ExpectedHarvest *time.Time `json:"expectedHarvest,omitempty"`
	GrowthStage     string     `json:"growthStage"`
}
