package businessledger_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qinyiguo/volvo-ops-platform/internal/repositories/businessledger"
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

func TestCountByAdvisor(t *testing.T) {
	ctx := context.Background()

	t.Run("counts work orders grouped by service advisor", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := businessledger.NewRepository(db, testLogger())

		mock.ExpectQuery(regexp.QuoteMeta("COUNT(*)")).
			WithArgs("202508", "保養", "").
			WillReturnRows(sqlmock.NewRows([]string{"person_name", "value"}).
				AddRow("陳美玲", 12))

		rows, err := repo.CountByAdvisor(ctx, models.BusinessCountQuery{
			Period: "202508",
			Field:  "repair_type",
			Value:  "保養",
		})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "陳美玲", rows[0].PersonName)
		assert.InDelta(t, 12, rows[0].Value, 0.001)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("branch narrows the count", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := businessledger.NewRepository(db, testLogger())

		mock.ExpectQuery(regexp.QuoteMeta("FROM business_query")).
			WithArgs("202508", "Y", "", "AMA").
			WillReturnRows(sqlmock.NewRows([]string{"person_name", "value"}))

		_, err := repo.CountByAdvisor(ctx, models.BusinessCountQuery{
			Period: "202508",
			Branch: strPtr("AMA"),
			Field:  "is_ev",
			Value:  "Y",
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("field outside the whitelist runs no query", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := businessledger.NewRepository(db, testLogger())

		rows, err := repo.CountByAdvisor(ctx, models.BusinessCountQuery{
			Period: "202508",
			Field:  "owner",
			Value:  "張三",
		})
		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteByPeriod(t *testing.T) {
	ctx := context.Background()

	db, mock := newMockDB(t)
	repo := businessledger.NewRepository(db, testLogger())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM business_query")).
		WithArgs("202508", "AMD").
		WillReturnResult(sqlmock.NewResult(0, 33))
	mock.ExpectCommit()

	txCtx, tx, err := db.GetTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback(txCtx)

	require.NoError(t, repo.DeleteByPeriod(txCtx, tx, "202508", strPtr("AMD")))
	require.NoError(t, tx.Commit(txCtx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatch(t *testing.T) {
	ctx := context.Background()

	db, mock := newMockDB(t)
	repo := businessledger.NewRepository(db, testLogger())

	rows := []models.BusinessOrder{
		{Period: "202508", WorkOrder: "WO-1", RepairType: "保養"},
		{Period: "202508", WorkOrder: "WO-2", RepairType: "一般"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO business_query")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	txCtx, tx, err := db.GetTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback(txCtx)

	total, err := repo.InsertBatch(txCtx, tx, rows, 500)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.NoError(t, tx.Commit(txCtx))
	assert.NoError(t, mock.ExpectationsWereMet())
}
