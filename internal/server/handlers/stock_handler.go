package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/tarekpos/internal/domain/models"
	"github.com/mamadbah2/tarekpos/internal/service/stock"
)

// StockHandler handles inventory management endpoints.
type StockHandler struct {
	stock  *stock.Store
	logger *zap.Logger
}

// NewStockHandler constructs the HTTP handler adapter for stock.
func NewStockHandler(stockStore *stock.Store, logger *zap.Logger) *StockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockHandler{stock: stockStore, logger: logger}
}

type restockRequest struct {
	Name         string          `json:"name"`
	BuyingPrice  decimal.Decimal `json:"buyingPrice"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Quantity     decimal.Decimal `json:"quantity"`
	ConfirmMerge bool            `json:"confirmMerge"`
}

type editRequest struct {
	Quantity     decimal.Decimal `json:"quantity"`
	BuyingPrice  decimal.Decimal `json:"buyingPrice"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
}

type restockResponse struct {
	Item    models.StockItem `json:"item"`
	Merged  bool             `json:"merged"`
	Warning string           `json:"warning,omitempty"`
}

// Restock adds stock for a product. A name collision without the confirmMerge
// flag answers 409 with the existing item so the client can ask the user for
// the merge decision and resubmit.
func (h *StockHandler) Restock(c *gin.Context) {
	category, ok := h.category(c)
	if !ok {
		return
	}

	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid restock payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.stock.Restock(c.Request.Context(), stock.RestockInput{
		Category:     category,
		Name:         req.Name,
		BuyingPrice:  req.BuyingPrice,
		SellingPrice: req.SellingPrice,
		Quantity:     req.Quantity,
		ConfirmMerge: req.ConfirmMerge,
	})
	if err != nil {
		var conflictErr *stock.ConflictError
		switch {
		case errors.Is(err, stock.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.As(err, &conflictErr):
			c.JSON(http.StatusConflict, gin.H{
				"error":    conflictErr.Error(),
				"existing": conflictErr.Existing,
			})
		default:
			h.logger.Error("restock failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add stock"})
		}
		return
	}

	status := http.StatusCreated
	if result.Merged {
		status = http.StatusOK
	}
	c.JSON(status, restockResponse{
		Item:    result.Item,
		Merged:  result.Merged,
		Warning: result.Warning,
	})
}

// List returns the category's items, filtered by the optional q substring.
func (h *StockHandler) List(c *gin.Context) {
	category, ok := h.category(c)
	if !ok {
		return
	}

	var (
		items []models.StockItem
		err   error
	)
	if term := c.Query("q"); term != "" {
		items, err = h.stock.Search(c.Request.Context(), category, term)
	} else {
		items, err = h.stock.List(c.Request.Context(), category)
	}
	if err != nil {
		h.logger.Error("failed to load stock", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stock"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Summary returns the category's dashboard strip aggregates.
func (h *StockHandler) Summary(c *gin.Context) {
	category, ok := h.category(c)
	if !ok {
		return
	}

	summary, err := h.stock.Summary(c.Request.Context(), category)
	if err != nil {
		h.logger.Error("failed to summarize stock", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to summarize stock"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Update applies a manual override of an item's quantity and prices.
func (h *StockHandler) Update(c *gin.Context) {
	category, ok := h.category(c)
	if !ok {
		return
	}

	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid edit payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.stock.Edit(c.Request.Context(), category, c.Param("id"), stock.EditInput{
		Quantity:     req.Quantity,
		BuyingPrice:  req.BuyingPrice,
		SellingPrice: req.SellingPrice,
	})
	if err != nil {
		switch {
		case errors.Is(err, stock.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, stock.ErrItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "stock item not found"})
		default:
			h.logger.Error("stock edit failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update stock item"})
		}
		return
	}

	c.JSON(http.StatusOK, item)
}

// Delete removes an item by identifier.
func (h *StockHandler) Delete(c *gin.Context) {
	category, ok := h.category(c)
	if !ok {
		return
	}

	if err := h.stock.Remove(c.Request.Context(), category, c.Param("id")); err != nil {
		h.logger.Error("stock delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete stock item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "stock item deleted"})
}

// Products returns sellable items across all categories for the sale entry
// form dropdowns.
func (h *StockHandler) Products(c *gin.Context) {
	items, err := h.stock.Available(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": items})
}

func (h *StockHandler) category(c *gin.Context) (models.Category, bool) {
	category, err := models.ParseCategory(c.Param("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return category, true
}
