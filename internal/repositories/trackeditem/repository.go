package trackeditem

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/qinyiguo/volvo-ops-platform/pkg/database"
	"github.com/qinyiguo/volvo-ops-platform/pkg/models"
	"github.com/qinyiguo/volvo-ops-platform/pkg/tracing"
)

var columns = []string{
	"id", "item_name", "item_category", "count_method", "match_rules",
	"show_in_sa_summary", "show_in_tech_summary", "show_in_beauty",
	"show_in_bodywork", "show_in_branch_overview",
	"is_active", "sort_order", "created_at", "updated_at",
}

// Repository handles tracked item persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new tracked item repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new tracked item
func (r *Repository) Create(ctx context.Context, req models.CreateTrackedItemRequest) (*models.TrackedItem, error) {
	ctx, span := tracing.StartSpan(ctx, "trackeditem.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "Create",
		"item_name": req.ItemName,
	})

	countMethod := req.CountMethod
	if countMethod == "" {
		countMethod = models.CountMethodQuantity
	}

	item := &models.TrackedItem{
		ItemName:             req.ItemName,
		ItemCategory:         req.ItemCategory,
		CountMethod:          countMethod,
		MatchRules:           req.MatchRules,
		ShowInSASummary:      req.ShowInSASummary,
		ShowInTechSummary:    req.ShowInTechSummary,
		ShowInBeauty:         req.ShowInBeauty,
		ShowInBodywork:       req.ShowInBodywork,
		ShowInBranchOverview: req.ShowInBranchOverview,
		IsActive:             true,
		SortOrder:            req.SortOrder,
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("tracking_items")
	sb.Cols("item_name", "item_category", "count_method", "match_rules",
		"show_in_sa_summary", "show_in_tech_summary", "show_in_beauty",
		"show_in_bodywork", "show_in_branch_overview", "is_active", "sort_order")
	sb.Values(item.ItemName, item.ItemCategory, item.CountMethod, item.MatchRules,
		item.ShowInSASummary, item.ShowInTechSummary, item.ShowInBeauty,
		item.ShowInBodywork, item.ShowInBranchOverview, item.IsActive, item.SortOrder)
	sb.Returning("id", "created_at", "updated_at")

	query, args := sb.Build()
	if err := r.db.GetContext(ctx, item, query, args...); err != nil {
		log.WithError(err).Error("Failed to create tracked item")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create tracked item")
	}

	log.WithFields(map[string]any{"id": item.ID}).Info("Created tracked item")
	return item, nil
}

// Get retrieves a tracked item by ID
func (r *Repository) Get(ctx context.Context, id int64) (*models.TrackedItem, error) {
	ctx, span := tracing.StartSpan(ctx, "trackeditem.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("tracking_items")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var item models.TrackedItem
	if err := r.db.GetContext(ctx, &item, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("tracked item %d not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get tracked item")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get tracked item")
	}

	return &item, nil
}

// List retrieves all tracked items ordered for display
func (r *Repository) List(ctx context.Context) ([]models.TrackedItem, error) {
	ctx, span := tracing.StartSpan(ctx, "trackeditem.Repository.List")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("tracking_items")
	sb.OrderBy("sort_order", "id")

	query, args := sb.Build()
	var items []models.TrackedItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list tracked items")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list tracked items")
	}

	return items, nil
}

// ListActive retrieves the active items for a report surface, in display
// order. An unknown surface applies no visibility filter.
func (r *Repository) ListActive(ctx context.Context, surface models.ReportSurface) ([]models.TrackedItem, error) {
	ctx, span := tracing.StartSpan(ctx, "trackeditem.Repository.ListActive")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("tracking_items")

	conditions := []string{sb.Equal("is_active", true)}
	if col, ok := models.SurfaceColumn(surface); ok {
		conditions = append(conditions, sb.Equal(col, true))
	}
	sb.Where(conditions...)
	sb.OrderBy("sort_order", "id")

	query, args := sb.Build()
	var items []models.TrackedItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list active tracked items")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list active tracked items")
	}

	return items, nil
}

// Update updates a tracked item
func (r *Repository) Update(ctx context.Context, id int64, req models.UpdateTrackedItemRequest) (*models.TrackedItem, error) {
	ctx, span := tracing.StartSpan(ctx, "trackeditem.Repository.Update")
	defer span.End()

	existing, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ItemName != nil {
		existing.ItemName = *req.ItemName
	}
	if req.ItemCategory != nil {
		existing.ItemCategory = *req.ItemCategory
	}
	if req.CountMethod != nil {
		existing.CountMethod = *req.CountMethod
	}
	if req.MatchRules != nil {
		existing.MatchRules = req.MatchRules
	}
	if req.ShowInSASummary != nil {
		existing.ShowInSASummary = *req.ShowInSASummary
	}
	if req.ShowInTechSummary != nil {
		existing.ShowInTechSummary = *req.ShowInTechSummary
	}
	if req.ShowInBeauty != nil {
		existing.ShowInBeauty = *req.ShowInBeauty
	}
	if req.ShowInBodywork != nil {
		existing.ShowInBodywork = *req.ShowInBodywork
	}
	if req.ShowInBranchOverview != nil {
		existing.ShowInBranchOverview = *req.ShowInBranchOverview
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		existing.SortOrder = *req.SortOrder
	}
	existing.UpdatedAt = time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("tracking_items")
	sb.Set(
		sb.Assign("item_name", existing.ItemName),
		sb.Assign("item_category", existing.ItemCategory),
		sb.Assign("count_method", existing.CountMethod),
		sb.Assign("match_rules", existing.MatchRules),
		sb.Assign("show_in_sa_summary", existing.ShowInSASummary),
		sb.Assign("show_in_tech_summary", existing.ShowInTechSummary),
		sb.Assign("show_in_beauty", existing.ShowInBeauty),
		sb.Assign("show_in_bodywork", existing.ShowInBodywork),
		sb.Assign("show_in_branch_overview", existing.ShowInBranchOverview),
		sb.Assign("is_active", existing.IsActive),
		sb.Assign("sort_order", existing.SortOrder),
		sb.Assign("updated_at", existing.UpdatedAt),
	)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update tracked item")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update tracked item")
	}

	return existing, nil
}

// Delete removes a tracked item
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := tracing.StartSpan(ctx, "trackeditem.Repository.Delete")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom("tracking_items")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete tracked item")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete tracked item")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("tracked item %d not found", id))
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Info("Deleted tracked item")
	return nil
}
