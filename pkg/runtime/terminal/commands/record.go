package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/store/duckdb"
)

var ErrNoDatabase = errors.New("no results database configured")

type RecordCmd struct {
	configPath string
	dbPath     string
	period     string
	source     string
	load       Loader
}

func NewRecordCmd(load Loader) *cobra.Command {
	rc := &RecordCmd{load: load}
	cmd := &cobra.Command{
		Use:   "record ID=VALUE...",
		Short: "Store computation values for a period in the results database",
		Args:  cobra.MinimumNArgs(1),
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.configPath, "config", "", "Path to the report configuration")
	cmd.Flags().StringVar(&rc.dbPath, "db", "", "Path to a DuckDB results database")
	cmd.Flags().StringVar(&rc.period, "period", "", "Period name; defaults to the current period")
	cmd.Flags().StringVar(&rc.source, "source", "cli", "Source recorded with each value")

	_ = cmd.MarkFlagRequired("config")

	return cmd
}

type assignment struct {
	id    string
	value decimal.Decimal
}

func parseAssignments(args []string) ([]assignment, error) {
	out := make([]assignment, 0, len(args))
	for _, arg := range args {
		id, raw, ok := strings.Cut(arg, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid assignment %q, want ID=VALUE", arg)
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %q: %w", id, err)
		}
		out = append(out, assignment{id: id, value: v})
	}
	return out, nil
}

func (rc *RecordCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	values, err := parseAssignments(args)
	if err != nil {
		return err
	}

	session, err := rc.load(ctx, rc.configPath, rc.dbPath)
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}
	defer session.Close()
	if session.DB == nil {
		return ErrNoDatabase
	}

	period, err := findPeriod(session.Renderer.Periods(), rc.period)
	if err != nil {
		return err
	}

	err = duckdb.RunInTx(ctx, session.DB, func(ctx context.Context) error {
		for _, a := range values {
			if err := session.Store.Put(ctx, a.id, period, a.value, rc.source); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("period", period.Name).Int("values", len(values)).Msg("values recorded")
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d value(s) for period %s\n", len(values), period.Name)
	return nil
}

func findPeriod(periods []domain.Period, name string) (domain.Period, error) {
	if name == "" && len(periods) > 0 {
		return periods[0], nil
	}
	for _, p := range periods {
		if p.Name == name {
			return p, nil
		}
	}
	return domain.Period{}, fmt.Errorf("unknown period %q", name)
}
