package partsledger_test

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

	"github.com/qinyiguo/volvo-ops-platform/internal/repositories/partsledger"
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

func TestAggregateByPerson(t *testing.T) {
	ctx := context.Background()

	t.Run("counts quantity grouped by sales person", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := partsledger.NewRepository(db, testLogger())

		mock.ExpectQuery(regexp.QuoteMeta("SUM(sale_qty)")).
			WithArgs("202508", "15", "").
			WillReturnRows(sqlmock.NewRows([]string{"person_name", "value"}).
				AddRow("王小明", 3).
				AddRow("李大同", 2))

		rows, err := repo.AggregateByPerson(ctx, models.PartsAggregateQuery{
			Period:      "202508",
			GroupBy:     models.PersonColumnSalesPerson,
			CountMethod: models.CountMethodQuantity,
			Rules: models.MatchRules{
				{Kind: models.RuleKindCategoryCode, CategoryCode: "15"},
			},
		})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "王小明", rows[0].PersonName)
		assert.InDelta(t, 3, rows[0].Value, 0.001)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("amount method sums the untaxed sale price", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := partsledger.NewRepository(db, testLogger())

		mock.ExpectQuery(regexp.QuoteMeta("SUM(sale_price_untaxed)")).
			WithArgs("202508", "7013%", "").
			WillReturnRows(sqlmock.NewRows([]string{"person_name", "value"}))

		_, err := repo.AggregateByPerson(ctx, models.PartsAggregateQuery{
			Period:      "202508",
			GroupBy:     models.PersonColumnSalesPerson,
			CountMethod: models.CountMethodAmount,
			Rules: models.MatchRules{
				{Kind: models.RuleKindPartNumber, PartNumber: "7013%"},
			},
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("branch filter binds between period and rules", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := partsledger.NewRepository(db, testLogger())

		mock.ExpectQuery(regexp.QuoteMeta("FROM parts_sales")).
			WithArgs("202508", "AMA", "7731", "").
			WillReturnRows(sqlmock.NewRows([]string{"person_name", "value"}))

		_, err := repo.AggregateByPerson(ctx, models.PartsAggregateQuery{
			Period:      "202508",
			Branch:      strPtr("AMA"),
			GroupBy:     models.PersonColumnPickupPerson,
			CountMethod: models.CountMethodQuantity,
			Rules: models.MatchRules{
				{Kind: models.RuleKindFunctionCode, FunctionCode: "7731"},
			},
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("pickup person grouping lands in the query", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := partsledger.NewRepository(db, testLogger())

		mock.ExpectQuery(regexp.QuoteMeta("pickup_person AS person_name")).
			WithArgs("202508", "15", "").
			WillReturnRows(sqlmock.NewRows([]string{"person_name", "value"}))

		_, err := repo.AggregateByPerson(ctx, models.PartsAggregateQuery{
			Period:      "202508",
			GroupBy:     models.PersonColumnPickupPerson,
			CountMethod: models.CountMethodQuantity,
			Rules: models.MatchRules{
				{Kind: models.RuleKindCategoryCode, CategoryCode: "15"},
			},
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("runs no query when nothing compiles", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := partsledger.NewRepository(db, testLogger())

		rows, err := repo.AggregateByPerson(ctx, models.PartsAggregateQuery{
			Period:      "202508",
			GroupBy:     models.PersonColumnSalesPerson,
			CountMethod: models.CountMethodQuantity,
			Rules: models.MatchRules{
				{Kind: models.RuleKindCategoryCode}, // missing value
			},
		})
		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteByPeriod(t *testing.T) {
	ctx := context.Background()

	t.Run("period only clears every branch", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := partsledger.NewRepository(db, testLogger())

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM parts_sales")).
			WithArgs("202508").
			WillReturnResult(sqlmock.NewResult(0, 120))
		mock.ExpectCommit()

		txCtx, tx, err := db.GetTx(ctx, nil)
		require.NoError(t, err)
		defer tx.Rollback(txCtx)

		require.NoError(t, repo.DeleteByPeriod(txCtx, tx, "202508", nil))
		require.NoError(t, tx.Commit(txCtx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("branch narrows the delete", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := partsledger.NewRepository(db, testLogger())

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM parts_sales")).
			WithArgs("202508", "AMC").
			WillReturnResult(sqlmock.NewResult(0, 40))
		mock.ExpectCommit()

		txCtx, tx, err := db.GetTx(ctx, nil)
		require.NoError(t, err)
		defer tx.Rollback(txCtx)

		require.NoError(t, repo.DeleteByPeriod(txCtx, tx, "202508", strPtr("AMC")))
		require.NoError(t, tx.Commit(txCtx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInsertBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("chunks rows by batch size", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := partsledger.NewRepository(db, testLogger())

		rows := make([]models.PartsSale, 3)
		for i := range rows {
			rows[i] = models.PartsSale{Period: "202508", PartNumber: "7280011"}
		}

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO parts_sales")).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO parts_sales")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		txCtx, tx, err := db.GetTx(ctx, nil)
		require.NoError(t, err)
		defer tx.Rollback(txCtx)

		total, err := repo.InsertBatch(txCtx, tx, rows, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.NoError(t, tx.Commit(txCtx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty input inserts nothing", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := partsledger.NewRepository(db, testLogger())

		mock.ExpectBegin()
		mock.ExpectCommit()

		txCtx, tx, err := db.GetTx(ctx, nil)
		require.NoError(t, err)
		defer tx.Rollback(txCtx)

		total, err := repo.InsertBatch(txCtx, tx, nil, 500)
		require.NoError(t, err)
		assert.Zero(t, total)
		require.NoError(t, tx.Commit(txCtx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
