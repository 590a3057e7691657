package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/report-atlas/pkg/runtime/terminal/export"
)

type WorksheetsCmd struct {
	configPath string
	load       Loader
}

func NewWorksheetsCmd(load Loader) *cobra.Command {
	wc := &WorksheetsCmd{load: load}
	cmd := &cobra.Command{
		Use:   "worksheets",
		Short: "List the worksheets a report defines",
		RunE:  wc.run,
	}

	cmd.Flags().StringVar(&wc.configPath, "config", "", "Path to the report configuration")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func (wc *WorksheetsCmd) run(cmd *cobra.Command, _ []string) error {
	session, err := wc.load(cmd.Context(), wc.configPath, "")
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}
	defer session.Close()

	defs := session.Renderer.WorksheetDefs()
	if len(defs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No worksheets defined")
		return nil
	}
	return export.NewReporter(cmd.OutOrStdout()).Worksheets("", defs)
}
