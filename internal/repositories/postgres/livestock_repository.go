package postgres

import (
	"farm-service/internal/models"

	"gorm.io/gorm"
)

type LivestockRepository struct {
	db *gorm.DB
}

func NewLivestockRepository(db *gorm.DB) *LivestockRepository {
	return &LivestockRepository{db}
}

func (r *LivestockRepository) Create(animal *models.Livestock) error {
	return r.db.Create(animal).Error
}

func (r *LivestockRepository) Update(animal *models.Livestock) error {
	return r.db.Save(animal).Error
}

func (r *LivestockRepository) Delete(animalID uint) error {
	return r.db.Delete(&models.Livestock{}, animalID).Error
}

func (r *LivestockRepository) GetByID(animalID uint) (*models.Livestock, error) {
	var a models.Livestock
	err := r.db.First(&a, animalID).Error
	return &a, err
}

func (r *LivestockRepository) GetByFarm(farmID uint) ([]models.Livestock, error) {
	var animals []models.Livestock
	err := r.db.Where("farm_id = ?", farmID).Order("created_at ASC").Find(&animals).Error
	return animals, err
}

func (r *LivestockRepository) CountByFarm(farmID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Livestock{}).Where("farm_id = ?", farmID).Count(&count).Error
	return count, err
}

func (r *LivestockRepository) CountByFarmAndStatus(farmID uint, status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Livestock{}).
		Where("farm_id = ? AND health_status = ?", farmID, status).
		Count(&count).Error
	return count, err
}
