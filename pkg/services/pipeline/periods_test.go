package pipeline

import (
	"testing"
	"time"

	"github.com/srivatsav-tech/hubspot-data/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriods_Daily(t *testing.T) {
	periods := Periods(date(2024, time.January, 1), date(2024, time.January, 4), domain.FrequencyDaily)

	require.Len(t, periods, 4)
	assert.Equal(t, "2024-01-01", periods[0].Key)
	assert.Equal(t, "2024-01-04", periods[3].Key)
	assert.Equal(t, date(2024, time.January, 2), periods[0].End)
}

func TestPeriods_Weekly(t *testing.T) {
	periods := Periods(date(2024, time.January, 1), date(2024, time.January, 29), domain.FrequencyWeekly)

	require.Len(t, periods, 5)
	keys := make([]string, len(periods))
	for i, p := range periods {
		keys[i] = p.Key
	}
	assert.Equal(t, []string{"2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22", "2024-01-29"}, keys)
	assert.Equal(t, date(2024, time.February, 5), periods[4].End)
}

func TestPeriods_MonthlyYearRollover(t *testing.T) {
	periods := Periods(date(2023, time.November, 1), date(2024, time.February, 1), domain.FrequencyMonthly)

	require.Len(t, periods, 4)
	keys := make([]string, len(periods))
	for i, p := range periods {
		keys[i] = p.Key
	}
	assert.Equal(t, []string{"2023-11", "2023-12", "2024-01", "2024-02"}, keys)
	assert.Equal(t, date(2023, time.December, 1), periods[0].End)
	assert.Equal(t, date(2024, time.January, 1), periods[1].End)
}

func TestPeriods_MonotonicAndContiguous(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		to   time.Time
		freq domain.Frequency
	}{
		{"daily", date(2024, time.March, 15), date(2024, time.April, 20), domain.FrequencyDaily},
		{"weekly", date(2023, time.June, 5), date(2023, time.December, 25), domain.FrequencyWeekly},
		{"monthly", date(2022, time.October, 1), date(2024, time.March, 1), domain.FrequencyMonthly},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			periods := Periods(tc.from, tc.to, tc.freq)
			require.NotEmpty(t, periods)
			assert.Equal(t, tc.from, periods[0].Start)

			seen := make(map[string]struct{})
			for i, p := range periods {
				assert.True(t, p.Start.Before(p.End), "period %d start before end", i)
				if i > 0 {
					assert.Equal(t, periods[i-1].End, p.Start, "period %d contiguous", i)
				}
				_, dup := seen[p.Key]
				assert.False(t, dup, "duplicate key %s", p.Key)
				seen[p.Key] = struct{}{}
			}
		})
	}
}

func TestPeriods_DegenerateRange(t *testing.T) {
	periods := Periods(date(2024, time.February, 1), date(2024, time.January, 1), domain.FrequencyDaily)
	assert.Empty(t, periods)
}

func TestPeriods_SingleInstant(t *testing.T) {
	// start == end still yields the one period covering that instant
	periods := Periods(date(2024, time.January, 1), date(2024, time.January, 1), domain.FrequencyMonthly)
	require.Len(t, periods, 1)
	assert.Equal(t, "2024-01", periods[0].Key)
}
