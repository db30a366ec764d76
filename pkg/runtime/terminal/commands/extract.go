package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const extractTimeout = 10 * time.Minute

type ExtractCmd struct {
	extractor Extractor
}

func NewExtractCmd(extractor Extractor) *cobra.Command {
	ec := &ExtractCmd{extractor: extractor}
	return &cobra.Command{
		Use:   "extract",
		Short: "Pull a fresh deal snapshot from HubSpot",
		RunE:  ec.run,
	}
}

func (ec *ExtractCmd) run(cmd *cobra.Command, _ []string) error {
	if ec.extractor == nil {
		return fmt.Errorf("extraction requires HubSpot credentials, none are configured")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), extractTimeout)
	defer cancel()

	snap, err := ec.extractor.Run(ctx)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s written with %d deals (%s)\n",
		snap.ID, snap.DealCount, snap.Source)
	return nil
}
