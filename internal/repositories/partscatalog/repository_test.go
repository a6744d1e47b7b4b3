package partscatalog_test

import (
	"context"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qinyiguo/volvo-ops-platform/internal/repositories/partscatalog"
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

func TestUpsertBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("upserts by part number in one statement", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := partscatalog.NewRepository(db, testLogger())

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (part_number) DO UPDATE SET")).
			WithArgs("7280011", "機油濾芯", "濾芯", "7731", "15",
				"7489001", "倍耐力輪胎", "輪胎", "7489", "16").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		txCtx, tx, err := db.GetTx(ctx, nil)
		require.NoError(t, err)
		defer tx.Rollback(txCtx)

		count, err := repo.UpsertBatch(txCtx, tx, []models.PartsCatalogEntry{
			{PartNumber: "7280011", PartName: "機油濾芯", PartCategory: "濾芯", FunctionCode: "7731", CategoryCode: "15"},
			{PartNumber: "7489001", PartName: "倍耐力輪胎", PartCategory: "輪胎", FunctionCode: "7489", CategoryCode: "16"},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		require.NoError(t, tx.Commit(txCtx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate part numbers keep the last occurrence", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := partscatalog.NewRepository(db, testLogger())

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO parts_catalog")).
			WithArgs("7280011", "機油濾芯 新版", "濾芯", "", "").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		txCtx, tx, err := db.GetTx(ctx, nil)
		require.NoError(t, err)
		defer tx.Rollback(txCtx)

		count, err := repo.UpsertBatch(txCtx, tx, []models.PartsCatalogEntry{
			{PartNumber: "7280011", PartName: "機油濾芯", PartCategory: "濾芯"},
			{PartNumber: "7280011", PartName: "機油濾芯 新版", PartCategory: "濾芯"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		require.NoError(t, tx.Commit(txCtx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rows without a part number are skipped entirely", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := partscatalog.NewRepository(db, testLogger())

		mock.ExpectBegin()
		mock.ExpectCommit()

		txCtx, tx, err := db.GetTx(ctx, nil)
		require.NoError(t, err)
		defer tx.Rollback(txCtx)

		count, err := repo.UpsertBatch(txCtx, tx, []models.PartsCatalogEntry{
			{PartName: "孤兒零件"},
		})
		require.NoError(t, err)
		assert.Zero(t, count)

		require.NoError(t, tx.Commit(txCtx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the entry", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := partscatalog.NewRepository(db, testLogger())

		mock.ExpectQuery(regexp.QuoteMeta("FROM parts_catalog")).
			WithArgs("7280011").
			WillReturnRows(sqlmock.NewRows([]string{
				"part_number", "part_name", "part_category", "function_code", "category_code", "updated_at",
			}).AddRow("7280011", "機油濾芯", "濾芯", "7731", "15", time.Now()))

		entry, err := repo.Lookup(ctx, "7280011")
		require.NoError(t, err)
		assert.Equal(t, "機油濾芯", entry.PartName)
	})

	t.Run("missing part maps to not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := partscatalog.NewRepository(db, testLogger())

		mock.ExpectQuery(regexp.QuoteMeta("FROM parts_catalog")).
			WithArgs("0000000").
			WillReturnRows(sqlmock.NewRows([]string{
				"part_number", "part_name", "part_category", "function_code", "category_code", "updated_at",
			}))

		_, err := repo.Lookup(ctx, "0000000")
		require.Error(t, err)
		assert.True(t, httperror.IsHTTPError(err))
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	})
}
