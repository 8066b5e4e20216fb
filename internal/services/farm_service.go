package services

import (
	"context"
	"errors"
	"fmt"

	"farm-service/internal/models"
	"farm-service/internal/repositories/postgres"
)

var (
	ErrFarmNotFound = errors.New("farm not found")
	ErrNotFarmOwner = errors.New("only the farm owner may do this")
)

// FarmService owns farm CRUD and is the authorization ground truth
// for farm data. Its CanAccessFarm method backs both the REST handlers
// and the WebSocket hub's broadcast filter.
type FarmService struct {
	farms *postgres.FarmRepository
	users *postgres.UserRepository
}

func NewFarmService(farms *postgres.FarmRepository, users *postgres.UserRepository) *FarmService {
	return &FarmService{farms: farms, users: users}
}

func (s *FarmService) CreateFarm(ownerID uint, req *models.CreateFarmRequest) (*models.FarmResponse, error) {
	farm := models.Farm{
		Name:     req.Name,
		Location: req.Location,
		SizeHa:   req.SizeHa,
		OwnerID:  ownerID,
	}
	if err := s.farms.Create(&farm); err != nil {
		return nil, fmt.Errorf("failed to create farm: %w", err)
	}
	// The owner is always a member too
	if err := s.farms.AddMember(farm.ID, ownerID); err != nil {
		return nil, fmt.Errorf("failed to add owner as member: %w", err)
	}
	return farmToResponse(&farm), nil
}

func (s *FarmService) GetFarm(farmID uint) (*models.FarmDetailResponse, error) {
	farm, err := s.farms.GetByID(farmID)
	if err != nil {
		return nil, ErrFarmNotFound
	}

	members := make([]models.UserResponse, 0, len(farm.Members))
	for _, m := range farm.Members {
		members = append(members, models.UserResponse{
			ID:        m.ID,
			Email:     m.Email,
			Username:  m.Username,
			CreatedAt: m.CreatedAt,
			Avatar:    m.Avatar,
		})
	}

	return &models.FarmDetailResponse{
		FarmResponse: *farmToResponse(farm),
		Members:      members,
	}, nil
}

func (s *FarmService) UpdateFarm(userID, farmID uint, req *models.UpdateFarmRequest) (*models.FarmResponse, error) {
	farm, err := s.farms.GetByID(farmID)
	if err != nil {
		return nil, ErrFarmNotFound
	}
	if farm.OwnerID != userID {
		return nil, ErrNotFarmOwner
	}

	if req.Name != nil {
		farm.Name = *req.Name
	}
	if req.Location != nil {
		farm.Location = *req.Location
	}
	if req.SizeHa != nil {
		farm.SizeHa = *req.SizeHa
	}

	if err := s.farms.Update(farm); err != nil {
		return nil, fmt.Errorf("failed to update farm: %w", err)
	}
	return farmToResponse(farm), nil
}

func (s *FarmService) DeleteFarm(userID, farmID uint) error {
	farm, err := s.farms.GetByID(farmID)
	if err != nil {
		return ErrFarmNotFound
	}
	if farm.OwnerID != userID {
		return ErrNotFarmOwner
	}
	return s.farms.Delete(farmID)
}

func (s *FarmService) SetPhotoURL(farmID uint, url string) error {
	farm, err := s.farms.GetByID(farmID)
	if err != nil {
		return ErrFarmNotFound
	}
	farm.PhotoURL = url
	return s.farms.Update(farm)
}

func (s *FarmService) AddMember(callerID, farmID, userID uint) error {
	farm, err := s.farms.GetByID(farmID)
	if err != nil {
		return ErrFarmNotFound
	}
	if farm.OwnerID != callerID {
		return ErrNotFarmOwner
	}
	if _, err := s.users.FindByID(userID); err != nil {
		return ErrUserNotFound
	}
	return s.farms.AddMember(farmID, userID)
}

func (s *FarmService) RemoveMember(callerID, farmID, userID uint) error {
	farm, err := s.farms.GetByID(farmID)
	if err != nil {
		return ErrFarmNotFound
	}
	if farm.OwnerID != callerID {
		return ErrNotFarmOwner
	}
	return s.farms.RemoveMember(farmID, userID)
}

// CanAccessFarm reports whether the user may see the farm's data.
// The WebSocket hub consumes this through its AccessChecker interface.
func (s *FarmService) CanAccessFarm(ctx context.Context, userID, farmID uint) (bool, error) {
	return s.farms.HasAccess(userID, farmID)
}

// UserFarms returns the compact farm list pushed in the initial_data frame
func (s *FarmService) UserFarms(ctx context.Context, userID uint) ([]models.FarmSummary, error) {
	farms, err := s.farms.GetUserFarms(userID)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.FarmSummary, 0, len(farms))
	for _, f := range farms {
		summaries = append(summaries, models.FarmSummary{
			ID:       f.ID,
			Name:     f.Name,
			Location: f.Location,
		})
	}
	return summaries, nil
}

func farmToResponse(f *models.Farm) *models.FarmResponse {
	return &models.FarmResponse{
		ID:        f.ID,
		Name:      f.Name,
		Location:  f.Location,
		SizeHa:    f.SizeHa,
		OwnerID:   f.OwnerID,
		PhotoURL:  f.PhotoURL,
		CreatedAt: f.CreatedAt,
	}
}
