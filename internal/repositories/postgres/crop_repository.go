package postgres

import (
	"time"

	"farm-service/internal/models"

	"gorm.io/gorm"
)

type CropRepository struct {
	db *gorm.DB
}

func NewCropRepository(db *gorm.DB) *CropRepository {
	return &CropRepository{db}
}

func (r *CropRepository) Create(crop *models.Crop) error {
	return r.db.Create(crop).Error
}

func (r *CropRepository) Update(crop *models.Crop) error {
	return r.db.Save(crop).Error
}

func (r *CropRepository) Delete(cropID uint) error {
	return r.db.Delete(&models.Crop{}, cropID).Error
}

func (r *CropRepository) GetByID(cropID uint) (*models.Crop, error) {
	var c models.Crop
	err := r.db.First(&c, cropID).Error
	return &c, err
}

func (r *CropRepository) GetByFarm(farmID uint) ([]models.Crop, error) {
	var crops []models.Crop
	err := r.db.Where("farm_id = ?", farmID).Order("planted_at ASC").Find(&crops).Error
	return crops, err
}

func (r *CropRepository) CountByFarm(farmID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Crop{}).Where("farm_id = ?", farmID).Count(&count).Error
	return count, err
}

// CountHarvestDue counts unharvested crops whose expected harvest date has passed
func (r *CropRepository) CountHarvestDue(farmID uint, now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Crop{}).
		Where("farm_id = ? AND growth_stage <> ? AND expected_harvest IS NOT NULL AND expected_harvest < ?",
			farmID, models.CropStageHarvested, now).
		Count(&count).Error
	return count, err
}
