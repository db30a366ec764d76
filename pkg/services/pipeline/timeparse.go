package pipeline

import "time"

// timestampLayouts are the ISO-8601 variants the CRM emits, most common
// first: RFC3339 with fractional seconds, without them, and bare dates.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a raw CRM timestamp string, returning ok=false when
// the value is empty or matches no tolerated layout. Malformed values degrade
// to "absent" by policy; they never abort a build. Results are normalized
// to UTC.
func ParseTimestamp(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
