package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/tarekpos/internal/domain/models"
	"github.com/mamadbah2/tarekpos/internal/service/ledger"
	"github.com/mamadbah2/tarekpos/internal/service/sales"
)

// SalesHandler handles sale submissions and sales history queries.
type SalesHandler struct {
	coordinator *sales.Coordinator
	ledger      *ledger.Ledger
	logger      *zap.Logger
}

// NewSalesHandler constructs the HTTP handler adapter for sales.
func NewSalesHandler(coordinator *sales.Coordinator, salesLedger *ledger.Ledger, logger *zap.Logger) *SalesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesHandler{coordinator: coordinator, ledger: salesLedger, logger: logger}
}

// Create submits a sale batch. A duplicate date without the replaceExisting
// flag answers 409 with the existing record so the client can ask the user
// for the replace decision and resubmit.
func (h *SalesHandler) Create(c *gin.Context) {
	var input sales.SaleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("invalid sale payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, err := h.coordinator.Execute(c.Request.Context(), input)
	if err != nil {
		h.respondExecuteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// List returns sales history, optionally filtered by exact date or month
// prefix, together with the view totals.
func (h *SalesHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		records []models.SalesRecord
		err     error
	)
	switch {
	case c.Query("date") != "":
		records, err = h.ledger.FilterByDate(ctx, c.Query("date"))
	case c.Query("month") != "":
		records, err = h.ledger.FilterByMonthPrefix(ctx, c.Query("month"))
	default:
		records, err = h.ledger.List(ctx)
	}
	if err != nil {
		h.logger.Error("failed to load sales history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sales history"})
		return
	}

	count, gross := ledger.Totals(records)
	c.JSON(http.StatusOK, gin.H{
		"records":      records,
		"totalRecords": count,
		"totalAmount":  gross,
	})
}

func (h *SalesHandler) respondExecuteError(c *gin.Context, err error) {
	var (
		validationErr    *sales.ValidationError
		notFoundErr      *sales.ProductNotFoundError
		insufficientErr  *sales.InsufficientStockError
		duplicateDateErr *ledger.DuplicateDateError
	)

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &notFoundErr),
		errors.As(err, &insufficientErr),
		errors.Is(err, sales.ErrEmptyBatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &duplicateDateErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":    duplicateDateErr.Error(),
			"existing": duplicateDateErr.Existing,
		})
	default:
		h.logger.Error("sale execution failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record sale"})
	}
}
