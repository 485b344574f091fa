package handler

import (
	"bytes"
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	app "github.com/sellerpulse/backend/internal/application/analytics"
	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"github.com/sellerpulse/backend/internal/infrastructure/export"
	"github.com/sellerpulse/backend/internal/infrastructure/logger"
	"github.com/sellerpulse/backend/internal/interfaces/http/dto"
	"github.com/sellerpulse/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// ProductAnalyticsQuerier aggregates stored snapshots
type ProductAnalyticsQuerier interface {
	ProductAnalytics(ctx context.Context, q app.ProductAnalyticsQuery) ([]domain.ProductAnalytics, error)
}

// Syncer runs a product analytics sync
type Syncer interface {
	Sync(ctx context.Context, cmd app.SyncCommand) (*app.SyncResult, error)
}

// AnalyticsHandler serves the per-shop analytics endpoints
type AnalyticsHandler struct {
	BaseHandler
	query  ProductAnalyticsQuerier
	syncer Syncer
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(query ProductAnalyticsQuerier, syncer Syncer) *AnalyticsHandler {
	return &AnalyticsHandler{
		query:  query,
		syncer: syncer,
	}
}

// GetProductAnalytics godoc
// @ID           getShopProductAnalytics
// @Summary      Aggregate product analytics over a date range
// @Tags         analytics
// @Produce      json
// @Param        id          path   string true  "Shop ID"
// @Param        start_date  query  string true  "YYYY-MM-DD"
// @Param        end_date    query  string true  "YYYY-MM-DD"
// @Param        min_gmv     query  number false "Minimum summed GMV in dollars"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /shops/{id}/product-analytics [get]
func (h *AnalyticsHandler) GetProductAnalytics(c *gin.Context) {
	rows, ok := h.aggregate(c)
	if !ok {
		return
	}
	h.SuccessWithTotal(c, dto.ToProductAnalyticsResponses(rows), int64(len(rows)))
}

// ExportProductAnalytics godoc
// @ID           exportShopProductAnalytics
// @Summary      Download product analytics as XLSX
// @Tags         analytics
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id          path   string true  "Shop ID"
// @Param        start_date  query  string true  "YYYY-MM-DD"
// @Param        end_date    query  string true  "YYYY-MM-DD"
// @Param        min_gmv     query  number false "Minimum summed GMV in dollars"
// @Success      200 {file} binary
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /shops/{id}/product-analytics/export [get]
func (h *AnalyticsHandler) ExportProductAnalytics(c *gin.Context) {
	rows, ok := h.aggregate(c)
	if !ok {
		return
	}

	// render fully before writing headers so a render failure can still be a 500
	var buf bytes.Buffer
	if err := export.WriteProductAnalytics(&buf, rows); err != nil {
		h.HandleError(c, err)
		return
	}

	name := export.FileName(c.Param("id"), c.Query("start_date"), c.Query("end_date"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, export.XLSXContentType, buf.Bytes())
}

// TriggerSync godoc
// @ID           syncShopProductAnalytics
// @Summary      Sync product analytics from the seller center
// @Description  Runs synchronously. Failed syncs still answer 200 with data.success=false.
// @Tags         analytics
// @Accept       json
// @Produce      json
// @Param        id    path  string          true "Shop ID"
// @Param        body  body  dto.SyncRequest true "Date range"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /shops/{id}/sync [post]
func (h *AnalyticsHandler) TriggerSync(c *gin.Context) {
	var req dto.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.syncer.Sync(c.Request.Context(), app.SyncCommand{
		ShopID:    shopID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !result.Success {
		logger.GetGinLogger(c).Warn("Sync finished unsuccessfully", zap.String("error", result.Error))
	}
	h.Success(c, result)
}

// aggregate parses the shared query parameters and runs the aggregation.
// It writes the error response itself and reports ok=false in that case.
func (h *AnalyticsHandler) aggregate(c *gin.Context) ([]domain.ProductAnalytics, bool) {
	var req dto.ProductAnalyticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return nil, false
	}

	shopID, ok := h.shopID(c)
	if !ok {
		return nil, false
	}
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	minGMV, err := parseMinGMVCents(req.MinGMV)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}

	rows, err := h.query.ProductAnalytics(c.Request.Context(), app.ProductAnalyticsQuery{
		ShopID:      shopID,
		StartDate:   start,
		EndDate:     end,
		MinGMVCents: minGMV,
	})
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}

	sortByGMV(rows)
	return rows, true
}

// shopID parses the :id path parameter. Malformed ids cannot name a shop, so
// they are answered like unknown ones.
func (h *AnalyticsHandler) shopID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.HandleError(c, domain.ErrShopNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// sortByGMV orders rows by GMV descending, then external id
func sortByGMV(rows []domain.ProductAnalytics) {
	slices.SortStableFunc(rows, func(a, b domain.ProductAnalytics) int {
		if c := b.GMV.Cmp(a.GMV); c != 0 {
			return c
		}
		return strings.Compare(a.ExternalID, b.ExternalID)
	})
}
