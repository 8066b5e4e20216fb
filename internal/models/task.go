package models

import (
	"time"

	"gorm.io/gorm"
)

// Task status constants
const (
	TaskStatusOpen       = "open"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

/** --------------------ENTITIES-------------------- */
// Task represents a unit of farm work with a due date
type Task struct {
	gorm.Model
	FarmID     uint      `gorm:"not null;index" json:"farmId"`
	Title      string    `gorm:"not null" json:"title"`
	Category   string    `json:"category,omitempty"` // e.g. feeding, irrigation, maintenance
	DueAt      time.Time `json:"dueAt"`
	Status     string    `gorm:"not null;type:varchar(20);check:status IN ('open', 'in_progress', 'done')" json:"status"`
	AssigneeID *uint     `gorm:"type:uint" json:"assigneeId,omitempty"`

	Farm     Farm  `gorm:"foreignKey:FarmID" json:"-"`
	Assignee *User `gorm:"foreignKey:AssigneeID" json:"-"`
}

/** -------------------- DTOs -------------------- */

type CreateTaskRequest struct {
	Title      string    `json:"title" binding:"required"`
	Category   string    `json:"category"`
	DueAt      time.Time `json:"dueAt" binding:"required"`
	AssigneeID *uint     `json:"assigneeId,omitempty"`
}

type UpdateTaskRequest struct {
	Title      *string    `json:"title,omitempty"`
	Category   *string    `json:"category,omitempty"`
	DueAt      *time.Time `json:"dueAt,omitempty"`
	Status     *string    `json:"status,omitempty" binding:"omitempty,oneof=open in_progress done"`
	AssigneeID *uint      `json:"assigneeId,omitempty"`
}

type TaskResponse struct {
	ID         uint      `json:"id"`
	FarmID     uint      `json:"farmId"`
	Title      string    `json:"title"`
	Category   string    `json:"category,omitempty"`
	DueAt      time.Time `json:"dueAt"`
	Status     string    `json:"status"`
	AssigneeID *uint     `json:"assigneeId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
