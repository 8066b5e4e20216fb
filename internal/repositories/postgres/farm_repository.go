package postgres

import (
	"farm-service/internal/models"

	"gorm.io/gorm"
)

type FarmRepository struct {
	db *gorm.DB
}

func NewFarmRepository(db *gorm.DB) *FarmRepository {
	return &FarmRepository{db}
}

func (r *FarmRepository) Create(farm *models.Farm) error {
	return r.db.Create(farm).Error
}

func (r *FarmRepository) Update(farm *models.Farm) error {
	return r.db.Save(farm).Error
}

func (r *FarmRepository) Delete(farmID uint) error {
	// Clear the many-to-many association first so cascade deletion works
	err := r.db.Model(&models.Farm{Model: gorm.Model{ID: farmID}}).Association("Members").Clear()
	if err != nil {
		return err
	}
	return r.db.Delete(&models.Farm{}, farmID).Error
}

func (r *FarmRepository) GetByID(farmID uint) (*models.Farm, error) {
	var f models.Farm
	err := r.db.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Select("id, username, email, avatar, created_at, updated_at, deleted_at")
	}).First(&f, farmID).Error
	return &f, err
}

// GetUserFarms returns every farm the user owns or is a member of
func (r *FarmRepository) GetUserFarms(userID uint) ([]models.Farm, error) {
	var farms []models.Farm
	err := r.db.
		Joins("LEFT JOIN farm_members ON farms.id = farm_members.farm_id").
		Where("farms.owner_id = ? OR farm_members.user_id = ?", userID, userID).
		Group("farms.id").
		Find(&farms).Error
	return farms, err
}

// HasAccess reports whether the user owns the farm or appears in farm_members.
// This is the authorization ground truth for dashboard data.
func (r *FarmRepository) HasAccess(userID, farmID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Farm{}).
		Joins("LEFT JOIN farm_members ON farms.id = farm_members.farm_id").
		Where("farms.id = ?", farmID).
		Where("farms.owner_id = ? OR farm_members.user_id = ?", userID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *FarmRepository) AddMember(farmID, userID uint) error {
	return r.db.Model(&models.Farm{Model: gorm.Model{ID: farmID}}).
		Association("Members").Append(&models.User{Model: gorm.Model{ID: userID}})
}

func (r *FarmRepository) RemoveMember(farmID, userID uint) error {
	return r.db.Model(&models.Farm{Model: gorm.Model{ID: farmID}}).
		Association("Members").Delete(&models.User{Model: gorm.Model{ID: userID}})
}
