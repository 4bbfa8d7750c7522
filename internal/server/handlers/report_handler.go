package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/tarekpos/internal/service/reporting"
)

// ReportHandler triggers spreadsheet exports on demand.
type ReportHandler struct {
	reporting *reporting.Service
	logger    *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter for reporting.
func NewReportHandler(reportingSvc *reporting.Service, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{reporting: reportingSvc, logger: logger}
}

// Export pushes the sales report to the configured spreadsheet. The optional
// date and month query parameters narrow the exported records the same way
// the ledger listing does.
func (h *ReportHandler) Export(c *gin.Context) {
	filter := reporting.ExportFilter{
		Date:        c.Query("date"),
		MonthPrefix: c.Query("month"),
	}

	if err := h.reporting.Export(c.Request.Context(), filter); err != nil {
		switch {
		case errors.Is(err, reporting.ErrNoData):
			c.JSON(http.StatusNotFound, gin.H{"error": "no sales records to export"})
		case errors.Is(err, reporting.ErrExportDisabled):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "spreadsheet export is not configured"})
		default:
			h.logger.Error("report export failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export report"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "report exported"})
}
