package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reporttemplate "github.com/de-tools/report-atlas/pkg/template"
)

func TestReporter_Worksheets(t *testing.T) {
	// Given
	var buf bytes.Buffer
	r := NewReporter(&buf)
	r.config = TableConfig{IDWidth: 6, KindWidth: 6, DescriptionWidth: 10}

	// When
	err := r.Worksheets("Annual accounts", []reporttemplate.Worksheet{
		{ID: "pl", Kind: reporttemplate.KindSimple, Description: "Profit"},
		{ID: "fa", Kind: reporttemplate.KindTable, Description: "Assets"},
	})

	// Then
	require.NoError(t, err)
	expected := strings.Join([]string{
		"Annual accounts",
		"",
		"+--------+--------+------------+",
		"| Worksheet | Kind   | Description |",
		"+--------+--------+------------+",
		"| pl     | simple | Profit     |",
		"| fa     | table  | Assets     |",
		"+--------+--------+------------+",
		"",
	}, "\n")
	assert.Equal(t, expected, buf.String())
}

func TestReporter_Worksheets_NoTitle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReporter(&buf).Worksheets("", nil))
	assert.True(t, strings.HasPrefix(buf.String(), "+---"))
}
