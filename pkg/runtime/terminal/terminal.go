package terminal

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/de-tools/report-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/report-atlas/pkg/services/report"
)

// CLI represents the command-line interface
type CLI struct {
	load    commands.Loader
	output  io.Writer
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	// Loader opens reports; defaults to report.LoadSession
	Loader commands.Loader
	Output io.Writer
}

func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Loader == nil {
		opts.Loader = report.LoadSession
	}

	cli := &CLI{
		load:   opts.Loader,
		output: opts.Output,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides os.Args, for tests
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "report",
		Short:         "Render statutory report worksheets and notes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(cli.output)

	cmd.AddCommand(commands.NewRenderCmd(cli.load))
	cmd.AddCommand(commands.NewWorksheetsCmd(cli.load))
	cmd.AddCommand(commands.NewRecordCmd(cli.load))

	return cmd
}
