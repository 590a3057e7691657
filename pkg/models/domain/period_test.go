package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPeriod_Days(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		days  int
	}{
		{name: "single day", start: "2024-03-01", end: "2024-03-01", days: 1},
		{name: "leap year", start: "2024-01-01", end: "2024-12-31", days: 366},
		{name: "common year", start: "2023-01-01", end: "2023-12-31", days: 365},
		{name: "month", start: "2023-02-01", end: "2023-02-28", days: 28},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := MustPeriod(tt.name, tt.start, tt.end)
			assert.Equal(t, tt.days, p.Days())
		})
	}
}

func TestNewPeriod_EndBeforeStart_ReturnsError(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := NewPeriod("bad", start, end)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	assert.Contains(t, err.Error(), "bad")
}

func TestNewPeriod_IgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2024, 1, 1, 18, 30, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC)

	p, err := NewPeriod("p", start, end)

	require.NoError(t, err)
	assert.Equal(t, 2, p.Days())
}

func TestContext_ID(t *testing.T) {
	p := MustPeriod("2023", "2023-01-01", "2023-12-31")
	ctx := &Context{Entity: "Acme Ltd", Period: &p, Segments: map[string]string{"b": "2", "a": "1"}}

	assert.Equal(t, "ctx-Acme_Ltd-20230101-20231231-a-1-b-2", ctx.ID())

	var nilCtx *Context
	assert.Equal(t, "", nilCtx.ID())
}

func TestDatum_String(t *testing.T) {
	assert.Equal(t, "", NoneDatum("x").String())
	assert.True(t, NoneDatum("x").IsNone())
	assert.Equal(t, "yes", Datum{Kind: DatumBool, Value: true}.String())
	assert.Equal(t, "5 April 2024", Datum{Kind: DatumDate, Value: time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC)}.String())
	assert.Equal(t, "Acme", Datum{Kind: DatumString, Value: "Acme"}.String())
}
