package debug

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/report-atlas/pkg/reporter"
	"github.com/de-tools/report-atlas/pkg/reporter/reportertest"
)

func TestReporter_DatasetTree(t *testing.T) {
	// Given
	ds, err := reportertest.ExpensesDataset(context.Background())
	require.NoError(t, err)
	var buf bytes.Buffer

	// When
	require.NoError(t, reporter.RenderDataset(context.Background(), NewReporter(&buf), ds))

	// Then
	assert.Equal(t, []string{
		`worksheet detail "Detailed expenses" periods=[2024 2023]`,
		`  heading expenses "Expenses" items=2`,
		`    item rent "Rent" rank=0 values=[-30.00 -25.00]`,
		`    item wages "Wages" rank=0 values=[-50.00 -45.00]`,
		`  totals expenses "Expenses" rank=0 values=[-80.00 -70.00]`,
		`  break`,
		`  singleline turnover "Turnover" values=[0.00 12.50]`,
		`  break`,
		``,
	}, strings.Split(buf.String(), "\n"))
}

func TestReporter_TableMetrics(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, reporter.RenderTable(context.Background(), NewReporter(&buf), reportertest.FixedAssets()))

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, `  table fixed-assets header-levels=2 columns=2 rows=3 ix-levels=2 notes=true`, lines[1])
	assert.Equal(t, `    column cost "Cost" header-levels=2 columns=2`, lines[2])
	assert.Equal(t, `      column cy "2024" header-levels=1 columns=1 units=GBP`, lines[3])
	assert.Equal(t, `    index assets "Assets" label="Assets" rows=2 ix-levels=2`, lines[5])
	assert.Equal(t, `      index plant "Plant and machinery" label="Plant and machinery" rows=1 ix-levels=1 notes=note:plant`, lines[6])
	assert.Equal(t, `        row cells=2`, lines[7])
	assert.Equal(t, `          cell 0 money "1200.5" concept="core:Plant" context=ctx-01234567-20240101-20241231`, lines[8])
	assert.Contains(t, buf.String(), `    total total "Total fixed assets" label="Total" rows=1 ix-levels=1`)
}

func TestReporter_Notes(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)
	ctx := context.Background()

	require.NoError(t, r.NoteHeading(ctx, "a", "Basis", 2))
	el, err := r.BeginNote(ctx)
	require.NoError(t, err)
	span, err := el.OpenTag("string", "core:Name", nil)
	require.NoError(t, err)
	require.NoError(t, span.WriteText("hello"))
	require.NoError(t, r.EndNote(ctx))

	assert.Equal(t, "note-heading level=2 number=a \"Basis\"\nnote\n  tag string core:Name context=null\n    text \"hello\"\n", buf.String())
}
