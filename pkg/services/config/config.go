// Package config loads the report configuration file: the periods and
// entity a report covers, where its template and notes live, and the
// metadata values that notes and tables interpolate.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

var (
	ErrMissingKey   = errors.New("missing configuration key")
	ErrInvalidValue = errors.New("invalid configuration value")
)

const dateLayout = "2006-01-02"

type Report struct {
	Template string `mapstructure:"template"`
	Notes    string `mapstructure:"notes"`
	Entity   string `mapstructure:"entity"`
	Currency string `mapstructure:"currency"`
	DB       string `mapstructure:"db"`
}

type Config struct {
	Report Report
	v      *viper.Viper
	dir    string
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("report.currency", "GBP")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var report Report
	if err := v.UnmarshalKey("report", &report); err != nil {
		return nil, fmt.Errorf("failed to parse report config: %w", err)
	}
	return &Config{Report: report, v: v, dir: filepath.Dir(path)}, nil
}

// Resolve makes p relative to the directory of the config file
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

// Get returns the raw value at key, nil when unset
func (c *Config) Get(key string) any {
	return c.v.Get(key)
}

func (c *Config) GetString(key string) (string, error) {
	if !c.v.IsSet(key) {
		return "", fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	return c.v.GetString(key), nil
}

func (c *Config) GetDate(key string) (time.Time, error) {
	if !c.v.IsSet(key) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	t, err := toDate(c.v.Get(key))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
	}
	return t, nil
}

func (c *Config) Entity() string {
	return c.Report.Entity
}

// Periods returns report.periods in file order. The first period is the
// current one.
func (c *Config) Periods() ([]domain.Period, error) {
	raw, ok := c.v.Get("report.periods").([]any)
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("%w: report.periods", ErrMissingKey)
	}
	periods := make([]domain.Period, 0, len(raw))
	for i, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: report.periods[%d] is not a mapping", ErrInvalidValue, i)
		}
		if m["name"] == nil {
			return nil, fmt.Errorf("%w: report.periods[%d].name", ErrMissingKey, i)
		}
		name := strings.TrimSpace(fmt.Sprint(m["name"]))
		if name == "" {
			return nil, fmt.Errorf("%w: report.periods[%d].name", ErrMissingKey, i)
		}
		start, err := toDate(m["start"])
		if err != nil {
			return nil, fmt.Errorf("%w: report.periods[%d].start: %v", ErrInvalidValue, i, err)
		}
		end, err := toDate(m["end"])
		if err != nil {
			return nil, fmt.Errorf("%w: report.periods[%d].end: %v", ErrInvalidValue, i, err)
		}
		p, err := domain.NewPeriod(name, start, end)
		if err != nil {
			return nil, fmt.Errorf("report.periods[%d]: %w", i, err)
		}
		periods = append(periods, p)
	}
	return periods, nil
}

func toDate(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return time.Parse(dateLayout, t)
	case nil:
		return time.Time{}, fmt.Errorf("date is not set")
	default:
		return time.Time{}, fmt.Errorf("unsupported date value %v", v)
	}
}
