package postgres

import (
	"time"

	"farm-service/internal/models"

	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db}
}

func (r *TaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

func (r *TaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

func (r *TaskRepository) Delete(taskID uint) error {
	return r.db.Delete(&models.Task{}, taskID).Error
}

func (r *TaskRepository) GetByID(taskID uint) (*models.Task, error) {
	var t models.Task
	err := r.db.First(&t, taskID).Error
	return &t, err
}

func (r *TaskRepository) GetByFarm(farmID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Where("farm_id = ?", farmID).Order("due_at ASC").Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) CountOpen(farmID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("farm_id = ? AND status <> ?", farmID, models.TaskStatusDone).
		Count(&count).Error
	return count, err
}

func (r *TaskRepository) CountOverdue(farmID uint, now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("farm_id = ? AND status <> ? AND due_at < ?", farmID, models.TaskStatusDone, now).
		Count(&count).Error
	return count, err
}
