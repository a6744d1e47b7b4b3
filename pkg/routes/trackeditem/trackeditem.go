package trackeditem

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/qinyiguo/volvo-ops-platform/pkg/models"
)

// Store is the tracked item persistence surface
type Store interface {
	Create(ctx context.Context, req models.CreateTrackedItemRequest) (*models.TrackedItem, error)
	Get(ctx context.Context, id int64) (*models.TrackedItem, error)
	List(ctx context.Context) ([]models.TrackedItem, error)
	Update(ctx context.Context, id int64, req models.UpdateTrackedItemRequest) (*models.TrackedItem, error)
	Delete(ctx context.Context, id int64) error
}

// Handler serves the tracked item admin endpoints
type Handler struct {
	store    Store
	validate *validator.Validate
}

func NewHandler(store Store, validate *validator.Validate) *Handler {
	return &Handler{
		store:    store,
		validate: validate,
	}
}

// Register registers tracked item routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List lists all tracked items in display order
func (h *Handler) List(c echo.Context) error {
	items, err := h.store.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Get returns one tracked item
func (h *Handler) Get(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}

	item, err := h.store.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Create creates a tracked item
func (h *Handler) Create(c echo.Context) error {
	var req models.CreateTrackedItemRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.store.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

// Update updates a tracked item
func (h *Handler) Update(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}

	var req models.UpdateTrackedItemRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.store.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Delete removes a tracked item
func (h *Handler) Delete(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}

	if err := h.store.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func itemID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, httperror.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}
	return id, nil
}
