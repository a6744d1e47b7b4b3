package techperformance

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
	"period", "branch", "tech_name_raw", "tech_name_clean", "dispatch_date",
	"work_order", "work_code", "task_content", "standard_hours", "wage",
	"account_type", "discount", "wage_category",
}

// Repository handles technician work line persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// DeleteByPeriodBranch clears one period and branch ahead of a reload
func (r *Repository) DeleteByPeriodBranch(ctx context.Context, tx database.Tx, period, branch string) error {
	ctx, span := tracing.StartSpan(ctx, "techperformance.Repository.DeleteByPeriodBranch")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom("tech_performance")
	sb.Where(
		sb.Equal("period", period),
		sb.Equal("branch", branch),
	)

	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete tech performance")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete tech performance")
	}

	return nil
}

// InsertBatch loads rows in fixed-size chunks
func (r *Repository) InsertBatch(ctx context.Context, tx database.Tx, rows []models.TechPerformance, batchSize int) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "techperformance.Repository.InsertBatch")
	defer span.End()

	total := 0
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}

		sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
		sb.InsertInto("tech_performance")
		sb.Cols(insertColumns...)
		for _, row := range rows[start:end] {
			sb.Values(row.Period, row.Branch, row.TechNameRaw, row.TechNameClean,
				row.DispatchDate, row.WorkOrder, row.WorkCode, row.TaskContent,
				row.StandardHours, row.Wage, row.AccountType, row.Discount,
				row.WageCategory)
		}

		query, args := sb.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"batch_start": start,
			}).Error("Failed to insert tech performance batch")
			return total, httperror.NewHTTPError(http.StatusInternalServerError, "failed to insert tech performance")
		}
		total += end - start
	}

	return total, nil
}
