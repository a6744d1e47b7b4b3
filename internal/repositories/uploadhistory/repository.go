package uploadhistory

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

var columns = []string{
	"id", "file_name", "file_type", "branch", "period",
	"row_count", "status", "uploaded_by", "details", "created_at",
}

// Repository handles the ingestion audit trail
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

// Record appends one entry inside the load transaction
func (r *Repository) Record(ctx context.Context, tx database.Tx, record models.UploadRecord) error {
	ctx, span := tracing.StartSpan(ctx, "uploadhistory.Repository.Record")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("upload_history")
	sb.Cols("file_name", "file_type", "branch", "period", "row_count", "status", "uploaded_by", "details")
	sb.Values(record.FileName, record.FileType, record.Branch, record.Period,
		record.RowCount, record.Status, record.UploadedBy, record.Details)

	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to record upload history")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to record upload history")
	}

	return nil
}

// List returns the most recent entries, newest first
func (r *Repository) List(ctx context.Context, limit int) ([]models.UploadRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "uploadhistory.Repository.List")
	defer span.End()

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("upload_history")
	sb.OrderBy("created_at DESC", "id DESC")
	sb.Limit(limit)

	query, args := sb.Build()
	var records []models.UploadRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list upload history")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list upload history")
	}

	return records, nil
}
