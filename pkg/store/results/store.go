// Package results persists computation leaf values and serves them to the
// computation registry.
package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/services/computation"
	"github.com/de-tools/report-atlas/pkg/store/duckdb"
)

// ErrNoValue is returned when no value is stored for an id and period
var ErrNoValue = computation.ErrNoValue

const (
	selectValue = `SELECT CAST(value AS VARCHAR) FROM computation_values WHERE id = ? AND period_start = ? AND period_end = ?`
	upsertValue = `INSERT OR REPLACE INTO computation_values (id, period_start, period_end, value, source) VALUES (?, ?, ?, CAST(? AS DECIMAL(38, 4)), ?)`
)

type Store interface {
	computation.ValueSource
	Put(ctx context.Context, id string, period domain.Period, value decimal.Decimal, source string) error
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{db: db}, nil
}

// conn prefers the transaction carried on ctx
func (s *defaultStore) conn(ctx context.Context) queryer {
	if tx := duckdb.TxFromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}

func (s *defaultStore) Value(ctx context.Context, id string, period domain.Period) (decimal.Decimal, error) {
	var raw string
	err := s.conn(ctx).QueryRowContext(ctx, selectValue, id, dateOf(period.Start), dateOf(period.End)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("%w: %q for period %s", ErrNoValue, id, period)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query value of %q: %w", id, err)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse stored value of %q: %w", id, err)
	}
	return v, nil
}

func (s *defaultStore) Put(ctx context.Context, id string, period domain.Period, value decimal.Decimal, source string) error {
	_, err := s.conn(ctx).ExecContext(ctx, upsertValue, id, dateOf(period.Start), dateOf(period.End), value.String(), source)
	if err != nil {
		return fmt.Errorf("failed to store value of %q: %w", id, err)
	}
	return nil
}

func dateOf(t time.Time) string { return t.Format("2006-01-02") }
