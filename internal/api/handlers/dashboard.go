package handlers

import (
	"net/http"

	"farm-service/internal/services"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboards  *services.DashboardService
	farmService *services.FarmService
}

func NewDashboardHandler(dashboards *services.DashboardService, farmService *services.FarmService) *DashboardHandler {
	return &DashboardHandler{
		dashboards:  dashboards,
		farmService: farmService,
	}
}

// Get godoc
// @Summary Current dashboard snapshot for a farm
// @Description Same payload the WebSocket dashboard_update frame carries
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Success 200 {object} models.DashboardData
// @Failure 403 {object} map[string]interface{} "Access denied"
// @Router /farms/{id}/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if !requireFarmAccess(c, h.farmService, farmID) {
		return
	}

	data, err := h.dashboards.BuildDashboard(c.Request.Context(), farmID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard data"})
		return
	}
	c.JSON(http.StatusOK, data)
}
