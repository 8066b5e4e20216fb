package handlers

import (
	"net/http"
	"strconv"
	"time"

	"farm-service/internal/models"
	"farm-service/internal/repositories/postgres"
	"farm-service/internal/services"

	"github.com/gin-gonic/gin"
)

type FinanceHandler struct {
	transactions *postgres.TransactionRepository
	farmService  *services.FarmService
	notifier     *services.Notifier
}

func NewFinanceHandler(transactions *postgres.TransactionRepository, farmService *services.FarmService, notifier *services.Notifier) *FinanceHandler {
	return &FinanceHandler{
		transactions: transactions,
		farmService:  farmService,
		notifier:     notifier,
	}
}

// List godoc
// @Summary List recent transactions for a farm
// @Tags finance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Param limit query int false "Max rows to return (default 50)"
// @Success 200 {array} models.TransactionResponse
// @Router /farms/{id}/transactions [get]
func (h *FinanceHandler) List(c *gin.Context) {
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if !requireFarmAccess(c, h.farmService, farmID) {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	txs, err := h.transactions.GetByFarm(farmID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list transactions"})
		return
	}

	resp := make([]models.TransactionResponse, 0, len(txs))
	for i := range txs {
		resp = append(resp, transactionToResponse(&txs[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary Record a transaction for a farm
// @Tags finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Param request body models.CreateTransactionRequest true "Transaction data"
// @Success 201 {object} models.TransactionResponse
// @Router /farms/{id}/transactions [post]
func (h *FinanceHandler) Create(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if !requireFarmAccess(c, h.farmService, farmID) {
		return
	}

	var req models.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx := models.Transaction{
		FarmID:     farmID,
		Type:       req.Type,
		Category:   req.Category,
		Amount:     req.Amount,
		OccurredAt: req.OccurredAt,
		Note:       req.Note,
	}

	if err := h.transactions.Create(&tx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record transaction"})
		return
	}

	resp := transactionToResponse(&tx)
	h.notifier.FarmChanged(services.EventTransactionCreated, farmID, userID, resp)
	c.JSON(http.StatusCreated, resp)
}

// Totals godoc
// @Summary Income/expense totals for a reporting window
// @Tags finance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Farm ID"
// @Param days query int false "Window length in days (default 30)"
// @Success 200 {object} models.FinanceTotals
// @Router /farms/{id}/transactions/totals [get]
func (h *FinanceHandler) Totals(c *gin.Context) {
	farmID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if !requireFarmAccess(c, h.farmService, farmID) {
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 || days > 365 {
		days = 30
	}

	totals, err := h.transactions.TotalsSince(farmID, time.Now().AddDate(0, 0, -days))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute totals"})
		return
	}
	c.JSON(http.StatusOK, totals)
}

func transactionToResponse(t *models.Transaction) models.TransactionResponse {
	return models.TransactionResponse{
		ID:         t.ID,
		FarmID:     t.FarmID,
		Type:       t.Type,
		Category:   t.Category,
		Amount:     t.Amount,
		OccurredAt: t.OccurredAt,
		Note:       t.Note,
	}
}
