package trackeditem_test

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

	"github.com/qinyiguo/volvo-ops-platform/internal/repositories/trackeditem"
	"github.com/qinyiguo/volvo-ops-platform/pkg/database"
	"github.com/qinyiguo/volvo-ops-platform/pkg/models"
)

var itemColumns = []string{
	"id", "item_name", "item_category", "count_method", "match_rules",
	"show_in_sa_summary", "show_in_tech_summary", "show_in_beauty",
	"show_in_bodywork", "show_in_branch_overview",
	"is_active", "sort_order", "created_at", "updated_at",
}

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

func itemRow(id int64, name string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(itemColumns).
		AddRow(id, name, "", "quantity", []byte(`[]`),
			true, false, false, false, false, true, 0, now, now)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := trackeditem.NewRepository(db, testLogger())

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tracking_items")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(5), now, now))

	item, err := repo.Create(ctx, models.CreateTrackedItemRequest{
		ItemName: "延長保固",
		MatchRules: models.MatchRules{
			{Source: models.RuleSourcePartsSales, Kind: models.RuleKindPartNumber, PartNumber: "7013%"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5), item.ID)
	// count method defaults when the request leaves it blank
	assert.Equal(t, models.CountMethodQuantity, item.CountMethod)
	assert.True(t, item.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the item", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := trackeditem.NewRepository(db, testLogger())

		mock.ExpectQuery(regexp.QuoteMeta("FROM tracking_items")).
			WithArgs(int64(7)).
			WillReturnRows(itemRow(7, "機油"))

		item, err := repo.Get(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "機油", item.ItemName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing item maps to not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := trackeditem.NewRepository(db, testLogger())

		mock.ExpectQuery(regexp.QuoteMeta("FROM tracking_items")).
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(itemColumns))

		_, err := repo.Get(ctx, 99)
		require.Error(t, err)
		assert.True(t, httperror.IsHTTPError(err))
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	})
}

func TestListActive(t *testing.T) {
	ctx := context.Background()

	t.Run("filters by the surface visibility column", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := trackeditem.NewRepository(db, testLogger())

		mock.ExpectQuery(regexp.QuoteMeta("show_in_sa_summary = $2")).
			WithArgs(true, true).
			WillReturnRows(itemRow(1, "機油"))

		items, err := repo.ListActive(ctx, models.SurfaceSASummary)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown surface only filters on active", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := trackeditem.NewRepository(db, testLogger())

		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY sort_order, id")).
			WithArgs(true).
			WillReturnRows(itemRow(1, "機油"))

		_, err := repo.ListActive(ctx, models.ReportSurface("engine"))
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := trackeditem.NewRepository(db, testLogger())

	rows := itemRow(1, "機油")
	now := time.Now()
	rows.AddRow(int64(2), "輪胎", "", "quantity", []byte(`[]`),
		false, false, false, false, false, false, 1, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY sort_order, id")).
		WillReturnRows(rows)

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	// inactive items still show up in the admin list
	assert.False(t, items[1].IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := trackeditem.NewRepository(db, testLogger())

	mock.ExpectQuery(regexp.QuoteMeta("FROM tracking_items")).
		WithArgs(int64(1)).
		WillReturnRows(itemRow(1, "機油"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tracking_items")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	name := "機油 5W30"
	active := false
	item, err := repo.Update(ctx, 1, models.UpdateTrackedItemRequest{
		ItemName: &name,
		IsActive: &active,
	})
	require.NoError(t, err)

	// untouched fields keep their stored values
	assert.Equal(t, "機油 5W30", item.ItemName)
	assert.False(t, item.IsActive)
	assert.Equal(t, models.CountMethodQuantity, item.CountMethod)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the item", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := trackeditem.NewRepository(db, testLogger())

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tracking_items")).
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(ctx, 3))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing item maps to not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := trackeditem.NewRepository(db, testLogger())

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tracking_items")).
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(ctx, 3)
		require.Error(t, err)
		assert.True(t, httperror.IsHTTPError(err))
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	})
}
