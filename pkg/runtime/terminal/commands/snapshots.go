package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/srivatsav-tech/hubspot-data/pkg/models/api"
	"github.com/srivatsav-tech/hubspot-data/pkg/runtime/terminal/export"
)

type SnapshotsCmd struct {
	lister SnapshotLister
	output *export.Output
	format string
}

func NewSnapshotsCmd(lister SnapshotLister, output *export.Output) *cobra.Command {
	sc := &SnapshotsCmd{lister: lister, output: output}
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List the locally persisted snapshots",
		RunE:  sc.run,
	}
	cmd.Flags().StringVar(&sc.format, "format", "table", "Output format: table or csv")
	return cmd
}

func (sc *SnapshotsCmd) run(*cobra.Command, []string) error {
	snapshots, err := sc.lister.List()
	if err != nil {
		return err
	}

	out := make([]api.Snapshot, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, api.Snapshot{
			ID:          s.ID,
			ExtractedAt: s.ExtractedAt.Format(time.RFC3339),
			Source:      s.Source,
			DealCount:   s.DealCount,
		})
	}

	reporter, err := sc.output.Reporter(sc.format)
	if err != nil {
		return err
	}
	return reporter.Snapshots(out)
}
