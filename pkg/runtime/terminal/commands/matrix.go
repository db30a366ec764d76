package commands

import (
	"github.com/spf13/cobra"

	"github.com/srivatsav-tech/hubspot-data/pkg/adapters"
	"github.com/srivatsav-tech/hubspot-data/pkg/runtime/terminal/export"
)

type MatrixCmd struct {
	flags    analysisFlags
	analyzer Analyzer
	output   *export.Output
}

func NewMatrixCmd(analyzer Analyzer, output *export.Output) *cobra.Command {
	mc := &MatrixCmd{analyzer: analyzer, output: output}
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Render the deals-by-periods stage matrix",
		RunE:  mc.run,
	}
	mc.flags.register(cmd)
	return cmd
}

func (mc *MatrixCmd) run(cmd *cobra.Command, _ []string) error {
	req, err := mc.flags.request()
	if err != nil {
		return err
	}

	m, err := mc.analyzer.BuildMatrix(cmd.Context(), req)
	if err != nil {
		return err
	}

	reporter, err := mc.output.Reporter(mc.flags.format)
	if err != nil {
		return err
	}
	return reporter.Matrix(adapters.MapMatrixDomainToApi(*m))
}
