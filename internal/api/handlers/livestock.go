package handlers

import (
	"net/http"

	"farm-service/internal/models"
	"farm-service/internal/repositories/postgres"
	"farm-service/internal/services"

	"github.com/gin-gonic/gin"
)

type LivestockHandler struct {
	livestock   *postgres.LivestockRepository
	farmService *services.FarmService
	notifier    *services.Notifier
}

func NewLivestockHandler(livestock *postgres.LivestockRepository, farmService *services.FarmService, notifier *services.Notifier) *LivestockHandler {
	return &LivestockHandler{
		livestock:   livestock,
		farmService: farmService,
		notifier:    notifier,
	}
}

// List godoc
// @Summary List livestock on a farm
// @Tags livestock
// @Produce json
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Success 200 {array} models.LivestockResponse
// @Router /farms/{id}/livestock [get]
func (h *LivestockHandler) List(c *gin.Context) {
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if !requireFarmAccess(c, h.farmService, farmID) {
		return
	}

	animals, err := h.livestock.GetByFarm(farmID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list livestock"})
		return
	}

	resp := make([]models.LivestockResponse, 0, len(animals))
	for i := range animals {
		resp = append(resp, livestockToResponse(&animals[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary Register an animal on a farm
// @Tags livestock
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Param request body models.CreateLivestockRequest true "Animal data"
// @Success 201 {object} models.LivestockResponse
// @Router /farms/{id}/livestock [post]
func (h *LivestockHandler) Create(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if !requireFarmAccess(c, h.farmService, farmID) {
		return
	}

	var req models.CreateLivestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	animal := models.Livestock{
		FarmID:       farmID,
		Tag:          req.Tag,
		Species:      req.Species,
		Breed:        req.Breed,
		WeightKg:     req.WeightKg,
		HealthStatus: req.HealthStatus,
	}
	if animal.HealthStatus == "" {
		animal.HealthStatus = models.LivestockStatusHealthy
	}

	if err := h.livestock.Create(&animal); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create livestock"})
		return
	}

	resp := livestockToResponse(&animal)
	h.notifier.FarmChanged(services.EventLivestockChanged, farmID, userID, resp)
	c.JSON(http.StatusCreated, resp)
}

// Update godoc
// @Summary Update an animal
// @Tags livestock
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Param resourceId path int true "Livestock ID"
// @Param request body models.UpdateLivestockRequest true "Fields to update"
// @Success 200 {object} models.LivestockResponse
// @Router /farms/{id}/livestock/{resourceId} [put]
func (h *LivestockHandler) Update(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	animalID, ok := parseUintParam(c, "resourceId")
	if !ok {
		return
	}
	if !requireFarmAccess(c, h.farmService, farmID) {
		return
	}

	animal, err := h.livestock.GetByID(animalID)
	if err != nil || animal.FarmID != farmID {
		c.JSON(http.StatusNotFound, gin.H{"error": "livestock not found"})
		return
	}

	var req models.UpdateLivestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Tag != nil {
		animal.Tag = *req.Tag
	}
	if req.Breed != nil {
		animal.Breed = *req.Breed
	}
	if req.WeightKg != nil {
		animal.WeightKg = *req.WeightKg
	}
	if req.HealthStatus != nil {
		animal.HealthStatus = *req.HealthStatus
	}

	if err := h.livestock.Update(animal); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update livestock"})
		return
	}

	resp := livestockToResponse(animal)
	h.notifier.FarmChanged(services.EventLivestockChanged, farmID, userID, resp)
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Remove an animal from a farm
// @Tags livestock
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Param resourceId path int true "Livestock ID"
// @Success 204
// @Router /farms/{id}/livestock/{resourceId} [delete]
func (h *LivestockHandler) Delete(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	animalID, ok := parseUintParam(c, "resourceId")
	if !ok {
		return
	}
	if !requireFarmAccess(c, h.farmService, farmID) {
		return
	}

	animal, err := h.livestock.GetByID(animalID)
	if err != nil || animal.FarmID != farmID {
		c.JSON(http.StatusNotFound, gin.H{"error": "livestock not found"})
		return
	}

	if err := h.livestock.Delete(animalID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete livestock"})
		return
	}

	h.notifier.FarmChanged(services.EventLivestockChanged, farmID, userID, gin.H{"deleted": animalID})
	c.Status(http.StatusNoContent)
}

func livestockToResponse(a *models.Livestock) models.LivestockResponse {
	return models.LivestockResponse{
		ID:           a.ID,
		FarmID:       a.FarmID,
		Tag:          a.Tag,
		Species:      a.Species,
		Breed:        a.Breed,
		WeightKg:     a.WeightKg,
		HealthStatus: a.HealthStatus,
		CreatedAt:    a.CreatedAt,
	}
}
