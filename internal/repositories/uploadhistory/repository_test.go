package uploadhistory_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qinyiguo/volvo-ops-platform/internal/repositories/uploadhistory"
	"github.com/qinyiguo/volvo-ops-platform/pkg/database"
	"github.com/qinyiguo/volvo-ops-platform/pkg/models"
)

func testLogger() ectologger.Logger {
	return zapadapter.NewZapEctoLogger(zap.NewNop(), nil)
}

func newMockDB(t *testing.T) (database.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return database.NewDatabaseInstance(sqlx.NewDb(mockDB, "sqlmock"), testLogger()), mock
}

func strPtr(s string) *string { return &s }

func TestRecord(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := uploadhistory.NewRepository(db, testLogger())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO upload_history")).
		WithArgs("parts_202508.xlsx", "parts_sales", nil, "202508",
			420, "success", "admin01", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	txCtx, tx, err := db.GetTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback(txCtx)

	err = repo.Record(txCtx, tx, models.UploadRecord{
		FileName:   "parts_202508.xlsx",
		FileType:   "parts_sales",
		Period:     strPtr("202508"),
		RowCount:   420,
		Status:     "success",
		UploadedBy: "admin01",
		Details:    database.JSONB[models.DeriveSummary]{Data: models.DeriveSummary{WarrantyExt: 3}},
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(txCtx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList(t *testing.T) {
	ctx := context.Background()

	listColumns := []string{
		"id", "file_name", "file_type", "branch", "period",
		"row_count", "status", "uploaded_by", "details", "created_at",
	}

	t.Run("returns entries newest first", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := uploadhistory.NewRepository(db, testLogger())

		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC")).
			WillReturnRows(sqlmock.NewRows(listColumns).
				AddRow(int64(2), "tech_202508.xlsx", "tech_performance", "AMA", "202508",
					90, "success", "admin01", []byte(`{}`), now).
				AddRow(int64(1), "parts_202508.xlsx", "parts_sales", nil, "202508",
					420, "success", "admin01", []byte(`{}`), now.Add(-time.Hour)))

		records, err := repo.List(ctx, 50)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "tech_performance", records[0].FileType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("out-of-range limits fall back to the default", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := uploadhistory.NewRepository(db, testLogger())

		mock.ExpectQuery(regexp.QuoteMeta("LIMIT 50")).
			WillReturnRows(sqlmock.NewRows(listColumns))

		_, err := repo.List(ctx, 9999)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
