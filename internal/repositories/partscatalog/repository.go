package partscatalog

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

// Repository handles the part number reference catalog
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

// UpsertBatch inserts or refreshes catalog entries by part number. Rows
// without a part number are skipped; duplicate part numbers keep the last
// occurrence so a single statement can carry the whole file.
func (r *Repository) UpsertBatch(ctx context.Context, tx database.Tx, rows []models.PartsCatalogEntry) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "partscatalog.Repository.UpsertBatch")
	defer span.End()

	index := map[string]int{}
	unique := make([]models.PartsCatalogEntry, 0, len(rows))
	for _, row := range rows {
		if row.PartNumber == "" {
			continue
		}
		if i, ok := index[row.PartNumber]; ok {
			unique[i] = row
			continue
		}
		index[row.PartNumber] = len(unique)
		unique = append(unique, row)
	}

	if len(unique) == 0 {
		return 0, nil
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("parts_catalog")
	sb.Cols("part_number", "part_name", "part_category", "function_code", "category_code", "updated_at")
	for _, row := range unique {
		sb.Values(row.PartNumber, row.PartName, row.PartCategory,
			row.FunctionCode, row.CategoryCode, sqlbuilder.Raw("NOW()"))
	}

	query, args := sb.Build()
	query += ` ON CONFLICT (part_number) DO UPDATE SET
		part_name = EXCLUDED.part_name,
		part_category = EXCLUDED.part_category,
		function_code = EXCLUDED.function_code,
		category_code = EXCLUDED.category_code,
		updated_at = NOW()`

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to upsert parts catalog entries")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert parts catalog")
	}

	return len(unique), nil
}

// Lookup returns one catalog entry by part number
func (r *Repository) Lookup(ctx context.Context, partNumber string) (*models.PartsCatalogEntry, error) {
	ctx, span := tracing.StartSpan(ctx, "partscatalog.Repository.Lookup")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("part_number", "part_name", "part_category", "function_code", "category_code", "updated_at")
	sb.From("parts_catalog")
	sb.Where(sb.Equal("part_number", partNumber))

	query, args := sb.Build()
	var entry models.PartsCatalogEntry
	if err := r.db.GetContext(ctx, &entry, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, "part number not found")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to look up parts catalog entry")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to look up parts catalog")
	}

	return &entry, nil
}
