package handlers

import (
	"net/http"

	"farm-service/internal/models"
	"farm-service/internal/repositories/postgres"
	"farm-service/internal/services"

	"github.com/gin-gonic/gin"
)

type CropHandler struct {
	crops       *postgres.CropRepository
	farmService *services.FarmService
	notifier    *services.Notifier
}

func NewCropHandler(crops *postgres.CropRepository, farmService *services.FarmService, notifier *services.Notifier) *CropHandler {
	return &CropHandler{
		crops:       crops,
		farmService: farmService,
		notifier:    notifier,
	}
}

// List godoc
// @Summary List crops on a farm
// @Tags crops
// @Produce json
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Success 200 {array} models.CropResponse
// @Router /farms/{id}/crops [get]
func (h *CropHandler) List(c *gin.Context) {
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if !requireFarmAccess(c, h.farmService, farmID) {
		return
	}

	crops, err := h.crops.GetByFarm(farmID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list crops"})
		return
	}

	resp := make([]models.CropResponse, 0, len(crops))
	for i := range crops {
		resp = append(resp, cropToResponse(&crops[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary Plant a crop on a farm
// @Tags crops
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Param request body models.CreateCropRequest true "Crop data"
// @Success 201 {object} models.CropResponse
// @Router /farms/{id}/crops [post]
func (h *CropHandler) Create(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if !requireFarmAccess(c, h.farmService, farmID) {
		return
	}

	var req models.CreateCropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	crop := models.Crop{
		FarmID:          farmID,
		Name:            req.Name,
		Field:           req.Field,
		AreaHa:          req.AreaHa,
		PlantedAt:       req.PlantedAt,
		ExpectedHarvest: req.ExpectedHarvest,
		GrowthStage:     models.CropStageSeeded,
	}

	if err := h.crops.Create(&crop); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create crop"})
		return
	}

	resp := cropToResponse(&crop)
	h.notifier.FarmChanged(services.EventCropChanged, farmID, userID, resp)
	c.JSON(http.StatusCreated, resp)
}

// Update godoc
// @Summary Update a crop
// @Tags crops
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Param resourceId path int true "Crop ID"
// @Param request body models.UpdateCropRequest true "Fields to update"
// @Success 200 {object} models.CropResponse
// @Router /farms/{id}/crops/{resourceId} [put]
func (h *CropHandler) Update(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	cropID, ok := parseUintParam(c, "resourceId")
	if !ok {
		return
	}
	if !requireFarmAccess(c, h.farmService, farmID) {
		return
	}

	crop, err := h.crops.GetByID(cropID)
	if err != nil || crop.FarmID != farmID {
		c.JSON(http.StatusNotFound, gin.H{"error": "crop not found"})
		return
	}

	var req models.UpdateCropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Field != nil {
		crop.Field = *req.Field
	}
	if req.AreaHa != nil {
		crop.AreaHa = *req.AreaHa
	}
	if req.ExpectedHarvest != nil {
		crop.ExpectedHarvest = req.ExpectedHarvest
	}
	if req.GrowthStage != nil {
		crop.GrowthStage = *req.GrowthStage
	}

	if err := h.crops.Update(crop); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update crop"})
		return
	}

	resp := cropToResponse(crop)
	h.notifier.FarmChanged(services.EventCropChanged, farmID, userID, resp)
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Remove a crop record
// @Tags crops
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Param resourceId path int true "Crop ID"
// @Success 204
// @Router /farms/{id}/crops/{resourceId} [delete]
func (h *CropHandler) Delete(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	cropID, ok := parseUintParam(c, "resourceId")
	if !ok {
		return
	}
	if !requireFarmAccess(c, h.farmService, farmID) {
		return
	}

	crop, err := h.crops.GetByID(cropID)
	if err != nil || crop.FarmID != farmID {
		c.JSON(http.StatusNotFound, gin.H{"error": "crop not found"})
		return
	}

	if err := h.crops.Delete(cropID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete crop"})
		return
	}

	h.notifier.FarmChanged(services.EventCropChanged, farmID, userID, gin.H{"deleted": cropID})
	c.Status(http.StatusNoContent)
}

func cropToResponse(cr *models.Crop) models.CropResponse {
	return models.CropResponse{
		ID:              cr.ID,
		FarmID:          cr.FarmID,
		Name:            cr.Name,
		Field:           cr.Field,
		AreaHa:          cr.AreaHa,
		PlantedAt:       cr.PlantedAt,
		ExpectedHarvest: cr.ExpectedHarvest,
		GrowthStage:     cr.GrowthStage,
	}
}
