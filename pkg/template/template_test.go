package template

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/report-atlas/pkg/services/computation"
	"github.com/de-tools/report-atlas/pkg/services/datum"
	"github.com/de-tools/report-atlas/pkg/worksheet"
)

func TestLoadTemplate(t *testing.T) {
	// Given a template with every worksheet kind

	// When
	tmpl, err := LoadTemplate("testdata/report.yaml")

	// Then
	require.NoError(t, err)
	assert.Equal(t, "Annual accounts", tmpl.Title)
	assert.Len(t, tmpl.Computations, 5)
	assert.Equal(t, computation.KindBreakdown, tmpl.Computations[3].Kind)
	assert.Equal(t, []string{"rent", "wages"}, tmpl.Computations[3].Inputs)
	assert.Equal(t, "1500.00", tmpl.Computations[0].Values["2024"])
	assert.Equal(t, "company.name", tmpl.Metadata["company-name"].Key)
	assert.Equal(t, []string{"income", "flows", "summary", "details"}, tmpl.WorksheetIDs())

	details, ok := tmpl.Worksheet("details")
	require.True(t, ok)
	require.NotNil(t, details.Table)
	assert.Equal(t, "GBP", details.Table.Columns[0].Units)
	assert.Equal(t, "note:turnover", details.Table.Indexes[0].Notes)
	assert.Equal(t, datum.FieldMetadata, details.Table.Indexes[1].Row[0].Kind)
	assert.Len(t, details.Table.Indexes[2].Total, 1)

	require.Len(t, tmpl.Elements, 6)
	assert.Equal(t, 1, tmpl.Elements[2].Level, "note heading level defaults to 1")
	assert.Equal(t, 2, tmpl.Elements[4].Level)
}

func TestWorksheet_Entries(t *testing.T) {
	// Given
	tmpl, err := LoadTemplate("testdata/report.yaml")
	require.NoError(t, err)
	flows, _ := tmpl.Worksheet("flows")
	summary, _ := tmpl.Worksheet("summary")

	// When
	fe := flows.FlowEntries()
	me := summary.MultiPeriodEntries()

	// Then
	require.Len(t, fe, 5)
	assert.Equal(t, worksheet.FlowEntry{Type: worksheet.EntryBreak}, fe[3])
	assert.Equal(t, worksheet.EntrySuperTotal, fe[4].Type)
	assert.Equal(t, []worksheet.MultiPeriodEntry{
		{Computation: "expenses", Rank: 1, TotalRank: 2},
		{Computation: "profit"},
	}, me)
}

func TestLoadTemplate_MissingFile(t *testing.T) {
	_, err := LoadTemplate("testdata/missing.yaml")
	assert.Error(t, err)
}

func TestLoadTemplateFromString_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		message string
	}{
		{
			name:    "unknown worksheet kind",
			yaml:    "worksheets:\n  - {id: pl, kind: pivot}\n",
			message: `worksheet "pl": unknown kind "pivot"`,
		},
		{
			name:    "unknown entry type",
			yaml:    "worksheets:\n  - {id: pl, kind: flows, entries: [{type: subtotal, computation: x}]}\n",
			message: `unknown entry type "subtotal"`,
		},
		{
			name:    "unknown element kind",
			yaml:    "elements:\n  - {kind: chart}\n",
			message: `unknown kind "chart"`,
		},
		{
			name:    "duplicate worksheet",
			yaml:    "worksheets:\n  - {id: pl, kind: simple, computations: [a]}\n  - {id: pl, kind: simple, computations: [b]}\n",
			message: `duplicate worksheet "pl"`,
		},
		{
			name:    "table without definition",
			yaml:    "worksheets:\n  - {id: t, kind: table}\n",
			message: "table definition is required",
		},
		{
			name:    "notes without body",
			yaml:    "elements:\n  - {kind: notes}\n",
			message: "body is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// When
			_, err := LoadTemplateFromString(tt.yaml)

			// Then
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTemplate))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoadTemplateFromString_UnknownField(t *testing.T) {
	_, err := LoadTemplateFromString("worksheet:\n  - {id: pl}\n")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidTemplate))
}

func TestLoadTemplateFromString_Empty(t *testing.T) {
	tmpl, err := LoadTemplateFromString("")
	require.NoError(t, err)
	assert.Empty(t, tmpl.Worksheets)
}
