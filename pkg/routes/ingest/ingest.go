package ingest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/qinyiguo/volvo-ops-platform/pkg/models"
)

// Loader runs dataset loads
type Loader interface {
	LoadPartsSales(ctx context.Context, req models.IngestPartsSalesRequest) (*models.IngestResult, error)
	LoadBusinessOrders(ctx context.Context, req models.IngestBusinessOrdersRequest) (*models.IngestResult, error)
	LoadRepairIncome(ctx context.Context, req models.IngestRepairIncomeRequest) (*models.IngestResult, error)
	LoadTechPerformance(ctx context.Context, req models.IngestTechPerformanceRequest) (*models.IngestResult, error)
	LoadPartsCatalog(ctx context.Context, req models.IngestPartsCatalogRequest) (*models.IngestResult, error)
}

// History reads the ingestion audit trail
type History interface {
	List(ctx context.Context, limit int) ([]models.UploadRecord, error)
}

// Handler serves the ingestion endpoints
type Handler struct {
	loader   Loader
	history  History
	validate *validator.Validate
}

func NewHandler(loader Loader, history History, validate *validator.Validate) *Handler {
	return &Handler{
		loader:   loader,
		history:  history,
		validate: validate,
	}
}

// Register registers ingestion routes
func (h *Handler) Register(g *echo.Group) {
	g.POST("/parts-sales", h.PartsSales)
	g.POST("/business-query", h.BusinessOrders)
	g.POST("/repair-income", h.RepairIncome)
	g.POST("/tech-performance", h.TechPerformance)
	g.POST("/parts-catalog", h.PartsCatalog)
	g.GET("/history", h.History)
}

// PartsSales replaces one period of the parts ledger
func (h *Handler) PartsSales(c echo.Context) error {
	var req models.IngestPartsSalesRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	result, err := h.loader.LoadPartsSales(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// BusinessOrders replaces one period of the business ledger
func (h *Handler) BusinessOrders(c echo.Context) error {
	var req models.IngestBusinessOrdersRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	result, err := h.loader.LoadBusinessOrders(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// RepairIncome replaces one period and branch of repair income
func (h *Handler) RepairIncome(c echo.Context) error {
	var req models.IngestRepairIncomeRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	result, err := h.loader.LoadRepairIncome(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// TechPerformance replaces one period and branch of technician work lines
func (h *Handler) TechPerformance(c echo.Context) error {
	var req models.IngestTechPerformanceRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	result, err := h.loader.LoadTechPerformance(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// PartsCatalog upserts catalog entries by part number
func (h *Handler) PartsCatalog(c echo.Context) error {
	var req models.IngestPartsCatalogRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	result, err := h.loader.LoadPartsCatalog(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// History lists the most recent loads
func (h *Handler) History(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return httperror.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}

	records, err := h.history.List(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

func (h *Handler) bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
