package handlers

import (
	"net/http"
	"strconv"

	"farm-service/internal/services"

	"github.com/gin-gonic/gin"
)

// parseUintParam reads a numeric path parameter, writing a 400 and
// returning false when it is missing or malformed.
func parseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}

// requireFarmAccess verifies the authenticated user is a member of the
// farm. It writes the error response itself; callers just return on false.
func requireFarmAccess(c *gin.Context, farms *services.FarmService, farmID uint) bool {
	userID := c.MustGet("user_id").(uint)
	ok, err := farms.CanAccessFarm(c.Request.Context(), userID, farmID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check farm access"})
		c.Abort()
		return false
	}
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		c.Abort()
		return false
	}
	return true
}
