package models

import (
	"time"

	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */
// Farm represents a single farm managed through the platform.
// Membership in farm_members is the ground truth for dashboard access checks.
type Farm struct {
	gorm.Model
	Name     string  `gorm:"not null" json:"name"`              // Display name of the farm
	Location string  `json:"location"`                          // Free-form location description
	SizeHa   float64 `gorm:"column:size_ha" json:"sizeHa"`      // Total size in hectares
	OwnerID  uint    `gorm:"not null;type:uint" json:"ownerId"` // ID of the farm owner
	PhotoURL string  `json:"photoUrl,omitempty"`                // Optional photo stored in object storage

	Members []*User `gorm:"many2many:farm_members" json:"members"`
}

/** -------------------- DTOs -------------------- */

type CreateFarmRequest struct {
	Name     string  `json:"name" binding:"required,min=2,max=100"`
	Location string  `json:"location"`
	SizeHa   float64 `json:"sizeHa" binding:"omitempty,gt=0"`
}

type UpdateFarmRequest struct {
	Name     *string  `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
	Location *string  `json:"location,omitempty"`
	SizeHa   *float64 `json:"sizeHa,omitempty" binding:"omitempty,gt=0"`
}

type FarmMemberRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

type FarmResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	SizeHa    float64   `json:"sizeHa"`
	OwnerID   uint      `json:"ownerId"`
	PhotoURL  string    `json:"photoUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type FarmDetailResponse struct {
	FarmResponse
	Members []UserResponse `json:"members"`
}

// FarmSummary is the compact farm listing pushed to a dashboard client
// right after its WebSocket connection is established.
type FarmSummary struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}
