package domain

import (
	"fmt"
	"strings"
	"time"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(s) {
	case "daily", "day":
		return FrequencyDaily, nil
	case "weekly", "week":
		return FrequencyWeekly, nil
	case "monthly", "month":
		return FrequencyMonthly, nil
	default:
		return "", fmt.Errorf("unknown frequency %q, expected daily, weekly or monthly", s)
	}
}

// Period is a half-open time bucket [Start, End). Key is the matrix column
// identity: an ISO date for daily/weekly periods, an ISO year-month for
// monthly ones.
type Period struct {
	Start time.Time
	End   time.Time
	Key   string
}

// AnalysisRequest captures one matrix build's parameters as an immutable
// value. From/To bound the period axis; the remaining fields are the optional
// record-level and post-build filters.
type AnalysisRequest struct {
	From      time.Time
	To        time.Time
	Frequency Frequency

	StageFilter    []string // keep only deals currently in one of these stages
	DealNameFilter []string
	CampaignFilter []string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time

	StagnantOnly      bool
	StagnantThreshold int
}

// Validate rejects requests the period axis generator must never see.
func (r AnalysisRequest) Validate() error {
	if r.From.IsZero() || r.To.IsZero() {
		return fmt.Errorf("analysis range is required")
	}
	if !r.From.Before(r.To) {
		return fmt.Errorf("analysis start %s must be before end %s",
			r.From.Format("2006-01-02"), r.To.Format("2006-01-02"))
	}
	switch r.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		return fmt.Errorf("unknown frequency %q", r.Frequency)
	}
	if r.StagnantThreshold < 0 {
		return fmt.Errorf("stagnant threshold must not be negative")
	}
	return nil
}
