package businessledger

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/qinyiguo/volvo-ops-platform/pkg/database"
	"github.com/qinyiguo/volvo-ops-platform/pkg/models"
	"github.com/qinyiguo/volvo-ops-platform/pkg/tracing"
)

var insertColumns = []string{
	"period", "branch", "work_order", "open_time", "settle_date", "plate_no",
	"vin", "status", "repair_item", "service_advisor", "assigned_tech",
	"repair_tech", "repair_type", "car_series", "car_model", "model_year",
	"owner", "is_ev", "mileage_in", "mileage_out",
}

// Repository handles business ledger persistence and aggregation
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new business ledger repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// CountByAdvisor counts work orders matching one field condition, grouped by
// service advisor. The field must already be whitelisted by the caller.
func (r *Repository) CountByAdvisor(ctx context.Context, q models.BusinessCountQuery) ([]models.PersonAggregate, error) {
	ctx, span := tracing.StartSpan(ctx, "businessledger.Repository.CountByAdvisor")
	defer span.End()

	if !models.ConditionFields[q.Field] {
		return []models.PersonAggregate{}, nil
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("service_advisor AS person_name", "COUNT(*) AS value")
	sb.From("business_query")

	conditions := []string{
		sb.Equal("period", q.Period),
		sb.Equal(q.Field, q.Value),
		sb.IsNotNull("service_advisor"),
		sb.NotEqual("service_advisor", ""),
	}
	if q.Branch != nil {
		conditions = append(conditions, sb.Equal("branch", *q.Branch))
	}

	sb.Where(conditions...)
	sb.GroupBy("service_advisor")

	query, args := sb.Build()
	var rows []models.PersonAggregate
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count business orders")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count business orders")
	}

	return rows, nil
}

// DeleteByPeriod clears one period, optionally one branch, ahead of a reload
func (r *Repository) DeleteByPeriod(ctx context.Context, tx database.Tx, period string, branch *string) error {
	ctx, span := tracing.StartSpan(ctx, "businessledger.Repository.DeleteByPeriod")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom("business_query")

	conditions := []string{sb.Equal("period", period)}
	if branch != nil {
		conditions = append(conditions, sb.Equal("branch", *branch))
	}
	sb.Where(conditions...)

	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete business orders")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete business orders")
	}

	return nil
}

// InsertBatch loads rows in fixed-size chunks
func (r *Repository) InsertBatch(ctx context.Context, tx database.Tx, rows []models.BusinessOrder, batchSize int) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "businessledger.Repository.InsertBatch")
	defer span.End()

	total := 0
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}

		sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
		sb.InsertInto("business_query")
		sb.Cols(insertColumns...)
		for _, row := range rows[start:end] {
			sb.Values(row.Period, row.Branch, row.WorkOrder, row.OpenTime,
				row.SettleDate, row.PlateNo, row.VIN, row.Status, row.RepairItem,
				row.ServiceAdvisor, row.AssignedTech, row.RepairTech,
				row.RepairType, row.CarSeries, row.CarModel, row.ModelYear,
				row.Owner, row.IsEV, row.MileageIn, row.MileageOut)
		}

		query, args := sb.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"batch_start": start,
			}).Error("Failed to insert business orders batch")
			return total, httperror.NewHTTPError(http.StatusInternalServerError, "failed to insert business orders")
		}
		total += end - start
	}

	return total, nil
}
