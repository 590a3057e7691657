package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/report-atlas/pkg/services/report"
)

type RenderCmd struct {
	configPath string
	dbPath     string
	format     string
	output     string
	worksheet  string
	load       Loader
}

func NewRenderCmd(load Loader) *cobra.Command {
	rc := &RenderCmd{load: load}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the report document",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.configPath, "config", "", "Path to the report configuration")
	cmd.Flags().StringVar(&rc.dbPath, "db", "", "Path to a DuckDB results database")
	cmd.Flags().StringVar(&rc.format, "format", string(report.FormatText), "Output format: "+report.FormatNames())
	cmd.Flags().StringVar(&rc.output, "output", "", "Write to this file instead of stdout")
	cmd.Flags().StringVar(&rc.worksheet, "worksheet", "", "Render only this worksheet")

	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func (rc *RenderCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	session, err := rc.load(ctx, rc.configPath, rc.dbPath)
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}
	defer session.Close()

	var w io.Writer = cmd.OutOrStdout()
	if rc.output != "" {
		f, err := os.Create(rc.output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", rc.output, err)
		}
		defer f.Close()
		w = f
	}

	format := report.Format(rc.format)
	if rc.worksheet != "" {
		err = session.Renderer.RenderWorksheet(ctx, rc.worksheet, format, w)
	} else {
		err = session.Renderer.Render(ctx, format, w)
	}
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().Str("format", rc.format).Str("output", rc.output).Msg("report rendered")
	return nil
}
