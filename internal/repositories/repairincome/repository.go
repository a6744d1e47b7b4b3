package repairincome

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
	"period", "branch", "work_order", "settle_date", "customer", "plate_no",
	"account_type_code", "account_type", "parts_income", "accessories_income",
	"boutique_income", "engine_wage", "bodywork_income", "paint_income",
	"carwash_income", "outsource_income", "addon_income", "total_untaxed",
	"total_taxed", "parts_cost", "service_advisor",
}

// Repository handles repair income persistence
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
	ctx, span := tracing.StartSpan(ctx, "repairincome.Repository.DeleteByPeriodBranch")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom("repair_income")
	sb.Where(
		sb.Equal("period", period),
		sb.Equal("branch", branch),
	)

	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete repair income")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete repair income")
	}

	return nil
}

// InsertBatch loads rows in fixed-size chunks
func (r *Repository) InsertBatch(ctx context.Context, tx database.Tx, rows []models.RepairIncome, batchSize int) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "repairincome.Repository.InsertBatch")
	defer span.End()

	total := 0
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}

		sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
		sb.InsertInto("repair_income")
		sb.Cols(insertColumns...)
		for _, row := range rows[start:end] {
			sb.Values(row.Period, row.Branch, row.WorkOrder, row.SettleDate,
				row.Customer, row.PlateNo, row.AccountTypeCode, row.AccountType,
				row.PartsIncome, row.AccessoriesIncome, row.BoutiqueIncome,
				row.EngineWage, row.BodyworkIncome, row.PaintIncome,
				row.CarwashIncome, row.OutsourceIncome, row.AddonIncome,
				row.TotalUntaxed, row.TotalTaxed, row.PartsCost, row.ServiceAdvisor)
		}

		query, args := sb.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"batch_start": start,
			}).Error("Failed to insert repair income batch")
			return total, httperror.NewHTTPError(http.StatusInternalServerError, "failed to insert repair income")
		}
		total += end - start
	}

	return total, nil
}
