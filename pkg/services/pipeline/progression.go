package pipeline

import (
	"sort"
	"time"

	"github.com/srivatsav-tech/hubspot-data/pkg/models/domain"
)

// Progression reconstructs a deal's chronological stage timeline from the
// flat stage -> entered-at mapping the CRM keeps instead of a real event log.
// The result is sorted ascending by timestamp; stages sharing a timestamp
// keep catalog order, which makes the sort deterministic across calls. No
// semantic filtering happens here: terminal stages interleave wherever their
// timestamps put them.
func Progression(catalog *StageCatalog, stageTimestamps map[string]time.Time) []domain.StageEvent {
	if len(stageTimestamps) == 0 {
		return nil
	}

	events := make([]domain.StageEvent, 0, len(stageTimestamps))
	for _, stage := range catalog.Stages() {
		enteredAt, ok := stageTimestamps[stage]
		if !ok {
			continue
		}
		events = append(events, domain.StageEvent{Stage: stage, EnteredAt: enteredAt})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].EnteredAt.Before(events[j].EnteredAt)
	})
	return events
}
