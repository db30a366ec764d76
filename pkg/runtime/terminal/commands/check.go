package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const checkTimeout = 30 * time.Second

type CheckCmd struct {
	checker ConnectionChecker
}

func NewCheckCmd(checker ConnectionChecker) *cobra.Command {
	cc := &CheckCmd{checker: checker}
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the HubSpot credentials",
		RunE:  cc.run,
	}
}

func (cc *CheckCmd) run(cmd *cobra.Command, _ []string) error {
	if cc.checker == nil {
		return fmt.Errorf("no HubSpot credentials are configured")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	if err := cc.checker.CheckConnection(ctx); err != nil {
		return fmt.Errorf("connection check failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "HubSpot connection OK")
	return nil
}
