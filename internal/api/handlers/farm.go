package handlers

import (
	"errors"
	"net/http"

	"farm-service/internal/adapters/storage"
	"farm-service/internal/models"
	"farm-service/internal/services"

	"github.com/gin-gonic/gin"
)

type FarmHandler struct {
	farmService *services.FarmService
	storage     *storage.MinIOClient
	notifier    *services.Notifier
}

func NewFarmHandler(farmService *services.FarmService, storage *storage.MinIOClient, notifier *services.Notifier) *FarmHandler {
	return &FarmHandler{
		farmService: farmService,
		storage:     storage,
		notifier:    notifier,
	}
}

// ListFarms godoc
// @Summary List the caller's farms
// @Tags farms
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.FarmSummary
// @Router /farms [get]
func (h *FarmHandler) ListFarms(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	farms, err := h.farmService.UserFarms(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list farms"})
		return
	}
	c.JSON(http.StatusOK, farms)
}

// CreateFarm godoc
// @Summary Create a farm
// @Tags farms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateFarmRequest true "Farm data"
// @Success 201 {object} models.FarmResponse
// @Router /farms [post]
func (h *FarmHandler) CreateFarm(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req models.CreateFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	farm, err := h.farmService.CreateFarm(userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create farm"})
		return
	}
	c.JSON(http.StatusCreated, farm)
}

// GetFarm godoc
// @Summary Get one farm with its members
// @Tags farms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Success 200 {object} models.FarmDetailResponse
// @Failure 403 {object} map[string]interface{} "Access denied"
// @Router /farms/{id} [get]
func (h *FarmHandler) GetFarm(c *gin.Context) {
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if !requireFarmAccess(c, h.farmService, farmID) {
		return
	}

	farm, err := h.farmService.GetFarm(farmID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "farm not found"})
		return
	}
	c.JSON(http.StatusOK, farm)
}

// UpdateFarm godoc
// @Summary Update a farm (owner only)
// @Tags farms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Param request body models.UpdateFarmRequest true "Fields to update"
// @Success 200 {object} models.FarmResponse
// @Router /farms/{id} [put]
func (h *FarmHandler) UpdateFarm(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	farm, err := h.farmService.UpdateFarm(userID, farmID, &req)
	if err != nil {
		h.writeFarmError(c, err)
		return
	}

	h.notifier.FarmChanged(services.EventFarmChanged, farmID, userID, farm)
	c.JSON(http.StatusOK, farm)
}

// DeleteFarm godoc
// @Summary Delete a farm (owner only)
// @Tags farms
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Success 204
// @Router /farms/{id} [delete]
func (h *FarmHandler) DeleteFarm(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.farmService.DeleteFarm(userID, farmID); err != nil {
		h.writeFarmError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadPhoto godoc
// @Summary Upload a farm photo
// @Tags farms
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Param photo formData file true "Photo file"
// @Success 200 {object} map[string]interface{} "Photo URL"
// @Router /farms/{id}/photo [post]
func (h *FarmHandler) UploadPhoto(c *gin.Context) {
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if !requireFarmAccess(c, h.farmService, farmID) {
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}

	url, err := h.storage.UploadFarmPhoto(c.Request.Context(), farmID, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload photo"})
		return
	}
	if err := h.farmService.SetPhotoURL(farmID, url); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save photo url"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"photoUrl": url})
}

// AddMember godoc
// @Summary Add a member to a farm (owner only)
// @Tags farms
// @Accept json
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Param request body models.FarmMemberRequest true "User to add"
// @Success 204
// @Router /farms/{id}/members [post]
func (h *FarmHandler) AddMember(c *gin.Context) {
	callerID := c.MustGet("user_id").(uint)
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req models.FarmMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.farmService.AddMember(callerID, farmID, req.UserID); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.writeFarmError(c, err)
		return
	}

	h.notifier.FarmChanged(services.EventFarmChanged, farmID, callerID, gin.H{"memberAdded": req.UserID})
	c.Status(http.StatusNoContent)
}

// RemoveMember godoc
// @Summary Remove a member from a farm (owner only)
// @Tags farms
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Param userId path int true "User ID"
// @Success 204
// @Router /farms/{id}/members/{userId} [delete]
func (h *FarmHandler) RemoveMember(c *gin.Context) {
	callerID := c.MustGet("user_id").(uint)
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	userID, ok := parseUintParam(c, "userId")
	if !ok {
		return
	}

	if err := h.farmService.RemoveMember(callerID, farmID, userID); err != nil {
		h.writeFarmError(c, err)
		return
	}

	h.notifier.FarmChanged(services.EventFarmChanged, farmID, callerID, gin.H{"memberRemoved": userID})
	c.Status(http.StatusNoContent)
}

func (h *FarmHandler) writeFarmError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrFarmNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "farm not found"})
	case errors.Is(err, services.ErrNotFarmOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "only the farm owner may do this"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
