package metadata

import (
	"regexp"
	"strings"
)

// DefaultDuration is used when the text mentions no period of time.
const DefaultDuration = "Flexible"

// Checked in order; the first unit found wins even if a later unit appears earlier in the text.
var durationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*months?`),
	regexp.MustCompile(`(\d+)\s*weeks?`),
	regexp.MustCompile(`(\d+)\s*days?`),
	regexp.MustCompile(`(\d+)\s*hours?`),
}

// Duration pulls a project duration such as "3 months" out of free text.
func Duration(text string) string {
	lower := strings.ToLower(text)
	for _, pattern := range durationPatterns {
		if match := pattern.FindString(lower); match != "" {
			return match
		}
	}
	return DefaultDuration
}

// DurationOr returns explicit when it is set and Duration(text) otherwise.
func DurationOr(explicit, text string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	return Duration(text)
}
