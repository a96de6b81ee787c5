package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-13f-indexer/internal/api/rest/dto"
	"github.com/feral-file/ff-13f-indexer/internal/logger"
	"github.com/feral-file/ff-13f-indexer/internal/store"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// ListHoldings retrieves the holdings of one report date ordered by company and issuer
	// GET /api/v1/holdings?report_date=<YYYY-MM-DD>&company_cik=<cik>&limit=<limit>&offset=<offset>
	ListHoldings(c *gin.Context)

	// HealthCheck returns the health status of the API and its database
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	store store.Store
}

// NewHandler creates a new REST API handler
func NewHandler(st store.Store) Handler {
	return &handler{store: st}
}

// ListHoldings retrieves holdings with filtering and pagination
func (h *handler) ListHoldings(c *gin.Context) {
	// Parse query parameters
	queryParams, err := ParseListHoldingsQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	// Validate query parameters
	if err := queryParams.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	records, total, err := h.store.FindHoldings(c.Request.Context(), queryParams.Filter())
	if err != nil {
		respondInternalError(c, err, "Failed to list holdings",
			zap.String("report_date", queryParams.ReportDate),
			zap.String("company_cik", queryParams.CompanyCIK),
		)
		return
	}

	c.JSON(http.StatusOK, dto.MapHoldingsToDTO(records, total, queryParams.Offset))
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		logger.WarnCtx(c.Request.Context(), "Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"service": "ff-13f-api",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "ff-13f-api",
	})
}
