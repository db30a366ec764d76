package commands

import (
	"github.com/spf13/cobra"

	"github.com/srivatsav-tech/hubspot-data/pkg/adapters"
	"github.com/srivatsav-tech/hubspot-data/pkg/runtime/terminal/export"
)

type StagnationCmd struct {
	flags    analysisFlags
	analyzer Analyzer
	output   *export.Output
}

func NewStagnationCmd(analyzer Analyzer, output *export.Output) *cobra.Command {
	sc := &StagnationCmd{analyzer: analyzer, output: output}
	cmd := &cobra.Command{
		Use:   "stagnation",
		Short: "Report how long each deal has sat in its current stage",
		RunE:  sc.run,
	}
	sc.flags.register(cmd)
	return cmd
}

func (sc *StagnationCmd) run(cmd *cobra.Command, _ []string) error {
	req, err := sc.flags.request()
	if err != nil {
		return err
	}

	records, err := sc.analyzer.StagnationReport(cmd.Context(), req)
	if err != nil {
		return err
	}

	reporter, err := sc.output.Reporter(sc.flags.format)
	if err != nil {
		return err
	}
	return reporter.Stagnation(adapters.MapStagnationDomainToApi(records))
}
