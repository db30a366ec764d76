package commands

import (
	"github.com/spf13/cobra"

	"github.com/srivatsav-tech/hubspot-data/pkg/adapters"
	"github.com/srivatsav-tech/hubspot-data/pkg/runtime/terminal/export"
	"github.com/srivatsav-tech/hubspot-data/pkg/services/pipeline"
)

type StagesCmd struct {
	catalog *pipeline.StageCatalog
	output  *export.Output
	format  string
}

func NewStagesCmd(catalog *pipeline.StageCatalog, output *export.Output) *cobra.Command {
	sc := &StagesCmd{catalog: catalog, output: output}
	cmd := &cobra.Command{
		Use:   "stages",
		Short: "List the pipeline stages in funnel order",
		RunE:  sc.run,
	}
	cmd.Flags().StringVar(&sc.format, "format", "table", "Output format: table or csv")
	return cmd
}

func (sc *StagesCmd) run(*cobra.Command, []string) error {
	reporter, err := sc.output.Reporter(sc.format)
	if err != nil {
		return err
	}
	return reporter.Stages(adapters.MapCatalogToApi(sc.catalog))
}
