package attendance

import (
	"regexp"
	"strings"
)

// Aggregate is the overall attendance percentage, weighted by classes
// conducted. It is exactly 0 when nothing was conducted.
func Aggregate(records []Record) float64 {
	attended := 0
	conducted := 0
	for _, rec := range records {
		attended += rec.Attended
		conducted += rec.Conducted
	}
	if conducted == 0 {
		return 0
	}
	return 100 * float64(attended) / float64(conducted)
}

const PlaceholderName = "Student"

// The name never spans lines, upper-case header lines above it are not part
// of it.
var studentNameRegex = regexp.MustCompile(`([A-Z](?:[A-Z \t]*[A-Z])?)[ \t]+\|[ \t]+Change Password`)

// ExtractStudentName finds the name the dashboard header prints in front of
// "| Change Password". It is best effort and falls back to PlaceholderName.
func ExtractStudentName(text string) string {
	match := studentNameRegex.FindStringSubmatch(text)
	if match == nil {
		return PlaceholderName
	}
	name := strings.TrimSpace(match[1])
	if name == "" {
		return PlaceholderName
	}
	return name
}

// nameFromHeader reads the name out of a "NAME | ..." header line.
func nameFromHeader(header string) string {
	before, _, found := strings.Cut(header, "|")
	if !found {
		return ""
	}
	return strings.TrimSpace(before)
}
