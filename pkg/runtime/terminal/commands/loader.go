package commands

import (
	"context"

	"github.com/de-tools/report-atlas/pkg/services/report"
)

// Loader opens a report from a config file and an optional results database
type Loader func(ctx context.Context, configPath, dbPath string) (*report.Session, error)
