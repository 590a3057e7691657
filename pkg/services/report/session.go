package report

import (
	"context"
	"database/sql"

	"github.com/de-tools/report-atlas/pkg/services/computation"
	"github.com/de-tools/report-atlas/pkg/services/config"
	"github.com/de-tools/report-atlas/pkg/store/duckdb"
	"github.com/de-tools/report-atlas/pkg/store/results"
)

// Session is a loaded report plus the resources behind it
type Session struct {
	Config   *config.Config
	Renderer *Renderer
	// DB and Store are nil when no results database is configured
	DB    *sql.DB
	Store results.Store
}

func (s *Session) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// LoadSession opens the report configured at configPath. dbPath overrides
// report.db; when both are empty values come from the template alone.
func LoadSession(ctx context.Context, configPath, dbPath string) (*Session, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath == "" && cfg.Report.DB != "" {
		dbPath = cfg.Resolve(cfg.Report.DB)
	}

	s := &Session{Config: cfg}
	var values computation.ValueSource
	if dbPath != "" {
		if s.DB, err = duckdb.NewDB(duckdb.Settings{DbPath: dbPath}); err != nil {
			return nil, err
		}
		if s.Store, err = results.NewStore(s.DB); err != nil {
			_ = s.Close()
			return nil, err
		}
		values = s.Store
	}

	if s.Renderer, err = FromConfig(ctx, cfg, values); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
