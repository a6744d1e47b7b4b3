package reports

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/qinyiguo/volvo-ops-platform/pkg/metrics"
	"github.com/qinyiguo/volvo-ops-platform/pkg/models"
)

var periodPattern = regexp.MustCompile(`^\d{6}$`)

// Engine computes report payloads
type Engine interface {
	ReportData(ctx context.Context, surface models.ReportSurface, period string, branch *string) ([]models.ItemReport, error)
	BranchOverview(ctx context.Context, period string) ([]models.BranchOverviewItem, error)
}

// Handler serves the report endpoints
type Handler struct {
	engine Engine
}

func NewHandler(engine Engine) *Handler {
	return &Handler{engine: engine}
}

// Register registers report routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("/branch-overview", h.BranchOverview)
	g.GET("/:surface", h.Surface)
}

// Surface returns the per-person item breakdown of one report surface
func (h *Handler) Surface(c echo.Context) error {
	ctx := c.Request().Context()

	surface := models.ReportSurface(c.Param("surface"))

	period := c.QueryParam("period")
	if !periodPattern.MatchString(period) {
		return httperror.NewHTTPError(http.StatusBadRequest, "period query parameter is required as YYYYMM")
	}

	var branch *string
	if b := c.QueryParam("branch"); b != "" {
		branch = &b
	}

	start := time.Now()
	reports, err := h.engine.ReportData(ctx, surface, period, branch)
	h.observe(string(surface), start, err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reports)
}

// BranchOverview returns per-branch item totals plus the group total
func (h *Handler) BranchOverview(c echo.Context) error {
	ctx := c.Request().Context()

	period := c.QueryParam("period")
	if !periodPattern.MatchString(period) {
		return httperror.NewHTTPError(http.StatusBadRequest, "period query parameter is required as YYYYMM")
	}

	start := time.Now()
	overview, err := h.engine.BranchOverview(ctx, period)
	h.observe(string(models.SurfaceBranchOverview), start, err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, overview)
}

func (h *Handler) observe(surface string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ReportsComputedTotal.WithLabelValues(surface, status).Inc()
	metrics.ReportDuration.WithLabelValues(surface).Observe(time.Since(start).Seconds())
}
