package results

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/services/computation"
	"github.com/de-tools/report-atlas/pkg/store/duckdb"
)

var fy2024 = domain.MustPeriod("2024", "2024-01-01", "2024-12-31")

func TestStore_Value_ReturnsStoredDecimal(t *testing.T) {
	// Given: a sqlmock DB with one stored value
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(selectValue)).
		WithArgs("sales", "2024-01-01", "2024-12-31").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("1234.5600"))

	store, err := NewStore(db)
	require.NoError(t, err)

	// When
	v, err := store.Value(context.Background(), "sales", fy2024)

	// Then
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1234.56").Equal(v))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Value_NoRowIsNoValue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(selectValue)).
		WithArgs("sales", "2024-01-01", "2024-12-31").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	store, err := NewStore(db)
	require.NoError(t, err)

	_, err = store.Value(context.Background(), "sales", fy2024)

	assert.ErrorIs(t, err, ErrNoValue)
	assert.ErrorIs(t, err, computation.ErrNoValue)
}

func TestStore_Put_UsesTransactionFromContext(t *testing.T) {
	// Given
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(upsertValue)).
		WithArgs("sales", "2024-01-01", "2024-12-31", "-42.5", "ledger").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store, err := NewStore(db)
	require.NoError(t, err)
	tx, err := db.Begin()
	require.NoError(t, err)

	// When
	err = store.Put(duckdb.ContextWithTx(context.Background(), tx), "sales", fy2024, decimal.RequireFromString("-42.5"), "ledger")

	// Then
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewStore_NilDB(t *testing.T) {
	store, err := NewStore(nil)
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestStore_RoundTripOnDuckDB(t *testing.T) {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(db)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "sales", fy2024, decimal.RequireFromString("10.25"), "test"))
	require.NoError(t, store.Put(ctx, "sales", fy2024, decimal.RequireFromString("11.75"), "test"))

	v, err := store.Value(ctx, "sales", fy2024)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("11.75").Equal(v), "got %s", v)
}
