package pipeline

import (
	"time"

	"github.com/srivatsav-tech/hubspot-data/pkg/models/domain"
)

const (
	dailyKeyLayout   = "2006-01-02"
	monthlyKeyLayout = "2006-01"
)

// Periods generates the period axis for [start, end] at the given frequency,
// oldest first. Each period is half-open [Start, End): a day, a week, or one
// calendar month (the monthly step advances the month and wraps the year at
// December; the start's day-of-month is kept as generated since only start
// boundaries matter for bucketing). start > end yields an empty axis; callers
// validate ranges before asking for a matrix.
func Periods(start, end time.Time, freq domain.Frequency) []domain.Period {
	start = start.UTC()
	end = end.UTC()

	var periods []domain.Period
	for cur := start; !cur.After(end); {
		var next time.Time
		key := cur.Format(dailyKeyLayout)

		switch freq {
		case domain.FrequencyDaily:
			next = cur.AddDate(0, 0, 1)
		case domain.FrequencyWeekly:
			next = cur.AddDate(0, 0, 7)
		case domain.FrequencyMonthly:
			next = nextMonth(cur)
			key = cur.Format(monthlyKeyLayout)
		default:
			return nil
		}

		periods = append(periods, domain.Period{Start: cur, End: next, Key: key})
		cur = next
	}
	return periods
}

func nextMonth(t time.Time) time.Time {
	year, month := t.Year(), t.Month()
	if month == time.December {
		year++
		month = time.January
	} else {
		month++
	}
	return time.Date(year, month, t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
