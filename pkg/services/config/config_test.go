package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_ValidYAML_PopulatesAllFields(t *testing.T) {
	// Given
	// No indentation at the top level to avoid YAML parsing errors
	path := writeConfig(t, `report:
  template: template.yaml
  notes: notes.ini
  entity: "01234567"
  periods:
    - name: "2024"
      start: "2024-01-01"
      end: "2024-12-31"
    - name: "2023"
      start: "2023-01-01"
      end: "2023-12-31"
metadata:
  business:
    company-name: Example Ltd
    incorporated: "2019-03-14"
`)

	// When
	cfg, err := LoadConfig(path)

	// Then
	require.NoError(t, err)
	assert.Equal(t, "template.yaml", cfg.Report.Template)
	assert.Equal(t, "notes.ini", cfg.Report.Notes)
	assert.Equal(t, "GBP", cfg.Report.Currency)
	assert.Equal(t, "01234567", cfg.Entity())

	name, err := cfg.GetString("metadata.business.company-name")
	require.NoError(t, err)
	assert.Equal(t, "Example Ltd", name)

	inc, err := cfg.GetDate("metadata.business.incorporated")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, 3, 14, 0, 0, 0, 0, time.UTC), inc)

	periods, err := cfg.Periods()
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, "2024", periods[0].Name)
	assert.Equal(t, 366, periods[0].Days())
	assert.Equal(t, "2023", periods[1].Name)
}

func TestLoadConfig_InvalidYAML_ReturnsError(t *testing.T) {
	path := writeConfig(t, "report: example:443: bad")

	_, err := LoadConfig(path)

	assert.Error(t, err)
}

func TestConfig_MissingKeys(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "report:\n  entity: x\n"))
	require.NoError(t, err)

	_, err = cfg.GetString("metadata.nope")
	assert.ErrorIs(t, err, ErrMissingKey)
	_, err = cfg.GetDate("metadata.nope")
	assert.ErrorIs(t, err, ErrMissingKey)
	_, err = cfg.Periods()
	assert.ErrorIs(t, err, ErrMissingKey)
	assert.Nil(t, cfg.Get("metadata.nope"))
}

func TestConfig_InvalidPeriod(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `report:
  periods:
    - name: bad
      start: "2024-12-31"
      end: "2024-01-01"
`))
	require.NoError(t, err)

	_, err = cfg.Periods()

	assert.Error(t, err)
}

func TestConfig_PeriodWithoutName(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "missing", yaml: `report:
  periods:
    - start: "2024-01-01"
      end: "2024-12-31"
`},
		{name: "blank", yaml: `report:
  periods:
    - name: "  "
      start: "2024-01-01"
      end: "2024-12-31"
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given
			cfg, err := LoadConfig(writeConfig(t, tt.yaml))
			require.NoError(t, err)

			// When
			_, err = cfg.Periods()

			// Then
			assert.ErrorIs(t, err, ErrMissingKey)
			assert.Contains(t, err.Error(), "report.periods[0].name")
		})
	}
}
