package terminal

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/srivatsav-tech/hubspot-data/pkg/runtime/terminal/commands"
	"github.com/srivatsav-tech/hubspot-data/pkg/runtime/terminal/export"
	"github.com/srivatsav-tech/hubspot-data/pkg/services/pipeline"
)

// CLI represents the command-line interface
type CLI struct {
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI. Extractor and Checker may be nil
// when no CRM credentials are available; the analysis commands still work
// against locally persisted snapshots.
type Options struct {
	Catalog   *pipeline.StageCatalog
	Analyzer  commands.Analyzer
	Extractor commands.Extractor
	Checker   commands.ConnectionChecker
	Snapshots commands.SnapshotLister
	Output    io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	output := export.NewOutput(opts.Output)

	rootCmd := &cobra.Command{
		Use:   "hubspot-data",
		Short: "Deal pipeline analysis tool",
	}

	rootCmd.AddCommand(commands.NewExtractCmd(opts.Extractor))
	rootCmd.AddCommand(commands.NewCheckCmd(opts.Checker))
	rootCmd.AddCommand(commands.NewMatrixCmd(opts.Analyzer, output))
	rootCmd.AddCommand(commands.NewStagnationCmd(opts.Analyzer, output))
	rootCmd.AddCommand(commands.NewStagesCmd(opts.Catalog, output))
	rootCmd.AddCommand(commands.NewSnapshotsCmd(opts.Snapshots, output))

	return &CLI{rootCmd: rootCmd}
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// ExecuteContext runs the CLI with a caller-provided context, typically one
// carrying the process logger.
func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}
