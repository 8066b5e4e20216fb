package handlers

import (
	"net/http"

	"farm-service/internal/models"
	"farm-service/internal/repositories/postgres"
	"farm-service/internal/services"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	tasks       *postgres.TaskRepository
	farmService *services.FarmService
	notifier    *services.Notifier
}

func NewTaskHandler(tasks *postgres.TaskRepository, farmService *services.FarmService, notifier *services.Notifier) *TaskHandler {
	return &TaskHandler{
		tasks:       tasks,
		farmService: farmService,
		notifier:    notifier,
	}
}

// List godoc
// @Summary List tasks for a farm
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Success 200 {array} models.TaskResponse
// @Router /farms/{id}/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if !requireFarmAccess(c, h.farmService, farmID) {
		return
	}

	tasks, err := h.tasks.GetByFarm(farmID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
		return
	}

	resp := make([]models.TaskResponse, 0, len(tasks))
	for i := range tasks {
		resp = append(resp, taskToResponse(&tasks[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary Create a task on a farm
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Param request body models.CreateTaskRequest true "Task data"
// @Success 201 {object} models.TaskResponse
// @Router /farms/{id}/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if !requireFarmAccess(c, h.farmService, farmID) {
		return
	}

	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task := models.Task{
		FarmID:     farmID,
		Title:      req.Title,
		Category:   req.Category,
		DueAt:      req.DueAt,
		Status:     models.TaskStatusOpen,
		AssigneeID: req.AssigneeID,
	}

	if err := h.tasks.Create(&task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}

	resp := taskToResponse(&task)
	h.notifier.FarmChanged(services.EventTaskChanged, farmID, userID, resp)
	c.JSON(http.StatusCreated, resp)
}

// Update godoc
// @Summary Update a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Param resourceId path int true "Task ID"
// @Param request body models.UpdateTaskRequest true "Fields to update"
// @Success 200 {object} models.TaskResponse
// @Router /farms/{id}/tasks/{resourceId} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	taskID, ok := parseUintParam(c, "resourceId")
	if !ok {
		return
	}
	if !requireFarmAccess(c, h.farmService, farmID) {
		return
	}

	task, err := h.tasks.GetByID(taskID)
	if err != nil || task.FarmID != farmID {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	var req models.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Category != nil {
		task.Category = *req.Category
	}
	if req.DueAt != nil {
		task.DueAt = *req.DueAt
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.AssigneeID != nil {
		task.AssigneeID = req.AssigneeID
	}

	if err := h.tasks.Update(task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
		return
	}

	resp := taskToResponse(task)
	h.notifier.FarmChanged(services.EventTaskChanged, farmID, userID, resp)
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Delete a task
// @Tags tasks
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Param resourceId path int true "Task ID"
// @Success 204
// @Router /farms/{id}/tasks/{resourceId} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	taskID, ok := parseUintParam(c, "resourceId")
	if !ok {
		return
	}
	if !requireFarmAccess(c, h.farmService, farmID) {
		return
	}

	task, err := h.tasks.GetByID(taskID)
	if err != nil || task.FarmID != farmID {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	if err := h.tasks.Delete(taskID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete task"})
		return
	}

	h.notifier.FarmChanged(services.EventTaskChanged, farmID, userID, gin.H{"deleted": taskID})
	c.Status(http.StatusNoContent)
}

func taskToResponse(t *models.Task) models.TaskResponse {
	return models.TaskResponse{
		ID:         t.ID,
		FarmID:     t.FarmID,
		Title:      t.Title,
		Category:   t.Category,
		DueAt:      t.DueAt,
		Status:     t.Status,
		AssigneeID: t.AssigneeID,
		CreatedAt:  t.CreatedAt,
	}
}
