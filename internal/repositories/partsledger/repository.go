package partsledger

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/qinyiguo/volvo-ops-platform/pkg/database"
	"github.com/qinyiguo/volvo-ops-platform/pkg/models"
	"github.com/qinyiguo/volvo-ops-platform/pkg/tracing"
	"github.com/qinyiguo/volvo-ops-platform/pkg/tracking"
)

var insertColumns = []string{
	"period", "branch", "category", "category_detail", "order_no", "work_order",
	"part_number", "part_name", "part_type", "category_code", "function_code",
	"sale_qty", "retail_price", "sale_price_untaxed", "cost_untaxed",
	"discount_rate", "department", "pickup_person", "sales_person", "plate_no",
}

// Repository handles parts ledger persistence and aggregation
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new parts ledger repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// AggregateByPerson sums the rows matched by the OR of all well-formed rules,
// grouped by the requested person column. When no rule compiles, no query
// runs and the result is empty.
func (r *Repository) AggregateByPerson(ctx context.Context, q models.PartsAggregateQuery) ([]models.PersonAggregate, error) {
	ctx, span := tracing.StartSpan(ctx, "partsledger.Repository.AggregateByPerson")
	defer span.End()

	groupCol := q.GroupBy.Column()

	countExpr := "SUM(sale_qty)"
	if q.CountMethod == models.CountMethodAmount {
		countExpr = "SUM(sale_price_untaxed)"
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(groupCol+" AS person_name", countExpr+" AS value")
	sb.From("parts_sales")

	conditions := []string{sb.Equal("period", q.Period)}
	if q.Branch != nil {
		conditions = append(conditions, sb.Equal("branch", *q.Branch))
	}

	ruleCond := tracking.CompilePartsRules(sb, q.Rules)
	if ruleCond == "" {
		return []models.PersonAggregate{}, nil
	}
	conditions = append(conditions,
		ruleCond,
		sb.IsNotNull(groupCol),
		sb.NotEqual(groupCol, ""),
	)

	sb.Where(conditions...)
	sb.GroupBy(groupCol)

	query, args := sb.Build()
	var rows []models.PersonAggregate
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to aggregate parts sales")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to aggregate parts sales")
	}

	return rows, nil
}

// DeleteByPeriod clears one period of the ledger, optionally one branch,
// ahead of a reload
func (r *Repository) DeleteByPeriod(ctx context.Context, tx database.Tx, period string, branch *string) error {
	ctx, span := tracing.StartSpan(ctx, "partsledger.Repository.DeleteByPeriod")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom("parts_sales")

	conditions := []string{sb.Equal("period", period)}
	if branch != nil {
		conditions = append(conditions, sb.Equal("branch", *branch))
	}
	sb.Where(conditions...)

	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete parts sales")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete parts sales")
	}

	return nil
}

// InsertBatch loads rows in fixed-size chunks
func (r *Repository) InsertBatch(ctx context.Context, tx database.Tx, rows []models.PartsSale, batchSize int) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "partsledger.Repository.InsertBatch")
	defer span.End()

	total := 0
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}

		sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
		sb.InsertInto("parts_sales")
		sb.Cols(insertColumns...)
		for _, row := range rows[start:end] {
			sb.Values(row.Period, row.Branch, row.Category, row.CategoryDetail,
				row.OrderNo, row.WorkOrder, row.PartNumber, row.PartName,
				row.PartType, row.CategoryCode, row.FunctionCode, row.SaleQty,
				row.RetailPrice, row.SalePriceUntaxed, row.CostUntaxed,
				row.DiscountRate, row.Department, row.PickupPerson,
				row.SalesPerson, row.PlateNo)
		}

		query, args := sb.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"batch_start": start,
			}).Error("Failed to insert parts sales batch")
			return total, httperror.NewHTTPError(http.StatusInternalServerError, "failed to insert parts sales")
		}
		total += end - start
	}

	return total, nil
}
