package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/srivatsav-tech/hubspot-data/pkg/models/domain"
	"github.com/srivatsav-tech/hubspot-data/pkg/models/store"
)

const dateLayout = "2006-01-02"

// Analyzer is the analysis surface the commands run against.
type Analyzer interface {
	Snapshot(ctx context.Context) (domain.Snapshot, []domain.DealRecord, error)
	BuildMatrix(ctx context.Context, req domain.AnalysisRequest) (*domain.Matrix, error)
	StagnationReport(ctx context.Context, req domain.AnalysisRequest) ([]domain.StagnationRecord, error)
}

// Extractor pulls a fresh snapshot from the CRM.
type Extractor interface {
	Run(ctx context.Context) (store.Snapshot, error)
}

// ConnectionChecker verifies the CRM credentials without extracting anything.
type ConnectionChecker interface {
	CheckConnection(ctx context.Context) error
}

// SnapshotLister enumerates locally persisted snapshots.
type SnapshotLister interface {
	List() ([]store.Snapshot, error)
}

// analysisFlags are the flags shared by the matrix and stagnation commands.
type analysisFlags struct {
	from              string
	to                string
	frequency         string
	stages            []string
	deals             []string
	campaigns         []string
	createdFrom       string
	createdTo         string
	stagnantThreshold int
	format            string
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "Analysis range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Analysis range end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.frequency, "frequency", "weekly", "Period frequency: daily, weekly or monthly")
	cmd.Flags().StringSliceVar(&f.stages, "stage", nil, "Keep only deals currently in these stages")
	cmd.Flags().StringSliceVar(&f.deals, "deal", nil, "Keep only deals with these names")
	cmd.Flags().StringSliceVar(&f.campaigns, "campaign", nil, "Keep only deals from these campaigns")
	cmd.Flags().StringVar(&f.createdFrom, "created-from", "", "Keep only deals created on or after this date")
	cmd.Flags().StringVar(&f.createdTo, "created-to", "", "Keep only deals created on or before this date")
	cmd.Flags().IntVar(&f.stagnantThreshold, "stagnant-threshold", -1,
		"Keep only deals stagnant for more than this many periods")
	cmd.Flags().StringVar(&f.format, "format", "table", "Output format: table or csv")

	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
}

func (f *analysisFlags) request() (domain.AnalysisRequest, error) {
	req := domain.AnalysisRequest{
		StageFilter:    f.stages,
		DealNameFilter: f.deals,
		CampaignFilter: f.campaigns,
	}

	var err error
	if req.From, err = time.Parse(dateLayout, f.from); err != nil {
		return req, fmt.Errorf("invalid --from value %q: expected YYYY-MM-DD", f.from)
	}
	if req.To, err = time.Parse(dateLayout, f.to); err != nil {
		return req, fmt.Errorf("invalid --to value %q: expected YYYY-MM-DD", f.to)
	}
	if req.Frequency, err = domain.ParseFrequency(strings.ToLower(f.frequency)); err != nil {
		return req, err
	}

	if f.createdFrom != "" {
		t, err := time.Parse(dateLayout, f.createdFrom)
		if err != nil {
			return req, fmt.Errorf("invalid --created-from value %q: expected YYYY-MM-DD", f.createdFrom)
		}
		req.CreatedFrom = &t
	}
	if f.createdTo != "" {
		t, err := time.Parse(dateLayout, f.createdTo)
		if err != nil {
			return req, fmt.Errorf("invalid --created-to value %q: expected YYYY-MM-DD", f.createdTo)
		}
		req.CreatedTo = &t
	}

	if f.stagnantThreshold >= 0 {
		req.StagnantOnly = true
		req.StagnantThreshold = f.stagnantThreshold
	}

	return req, nil
}
