package engine

import (
	"math"
	"strconv"
	"strings"
)

// SecondsToISODuration renders a length as an ISO-8601 duration ("PT1H2M3S").
// Negative and NaN inputs clamp to zero; zero hours and minutes are omitted,
// the seconds token is always present.
func SecondsToISODuration(totalSeconds float64) string {
	if math.IsNaN(totalSeconds) || totalSeconds < 0 {
		totalSeconds = 0
	}
	total := int64(math.Floor(totalSeconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	var sb strings.Builder
	sb.WriteString("PT")
	if h > 0 {
		sb.WriteString(strconv.FormatInt(h, 10))
		sb.WriteByte('H')
	}
	if m > 0 {
		sb.WriteString(strconv.FormatInt(m, 10))
		sb.WriteByte('M')
	}
	sb.WriteString(strconv.FormatInt(s, 10))
	sb.WriteByte('S')
	return sb.String()
}

// ParseDurationToSeconds accepts a number, nil, or a colon-delimited string
// ("45", "3:07", "1:02:03") and returns the length in seconds.
// Numbers pass through unchanged; anything unparseable yields 0.
func ParseDurationToSeconds(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(v) {
			return 0
		}
		return v
	case float32:
		return ParseDurationToSeconds(float64(v))
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case string:
		return parseColonDuration(v)
	case *string:
		if v == nil {
			return 0
		}
		return parseColonDuration(*v)
	}
	return 0
}

func parseColonDuration(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0
	}
	total := 0.0
	for _, p := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		total = total*60 + n
	}
	return total
}
