package attendance

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"attendance-backend/lib/textutil"
)

// NumericOrder says how the first two numbers after a heading map onto
// the attended and conducted counts. The percentage is always third.
type NumericOrder int

const (
	OrderAttendedConducted NumericOrder = iota
	OrderConductedAttended
)

func (o NumericOrder) String() string {
	if o == OrderConductedAttended {
		return "conducted,attended,percentage"
	}
	return "attended,conducted,percentage"
}

func ParseNumericOrder(s string) (NumericOrder, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "")
	switch normalized {
	case "", "attended,conducted,percentage", "attended,conducted":
		return OrderAttendedConducted, nil
	case "conducted,attended,percentage", "conducted,attended":
		return OrderConductedAttended, nil
	}
	return 0, fmt.Errorf("unknown numeric order '%s'", s)
}

type ParserOptions struct {
	// Lookahead is how many lines after a heading are searched for numbers.
	Lookahead    int
	NumericOrder NumericOrder
}

func DefaultParserOptions() ParserOptions {
	return ParserOptions{
		Lookahead:    5,
		NumericOrder: OrderAttendedConducted,
	}
}

// ignoredPhrases are the column and section labels of the dashboard, a line
// containing any of them is never a heading.
var ignoredPhrases = []string{
	"TOTAL CONDUCTED",
	"CLASSES ATTENDED",
	"ATTENDANCE",
	"SUBJECT CODE",
	"S.NO",
	"SUBJECT DETAILS",
	"SEMESTER ACTIVITY",
}

var (
	subjectCodeRegex = regexp.MustCompile(`^\d*[A-Z]+\d+[A-Z0-9]*$`)
	numericRegex     = regexp.MustCompile(`^[\d.]+%?$`)
)

// IsHeading reports whether line looks like the start of an attendance row,
// either a subject code (23HUM102) or an uppercase subject name without
// digits (CLOUD COMPUTING).
func IsHeading(line string) bool {
	if textutil.ContainsAnyFold(line, ignoredPhrases...) {
		return false
	}
	if subjectCodeRegex.MatchString(line) {
		return true
	}
	return textutil.IsUpperText(line) && len(line) > 3 && !textutil.HasDigit(line)
}

func isNumericToken(token string) bool {
	return token == "-" || numericRegex.MatchString(token)
}

func parseNumericToken(token string) (float64, error) {
	if token == "-" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.TrimSuffix(token, "%"), 64)
}

func asCount(value float64) (int, bool) {
	if value < 0 || value != math.Trunc(value) || value > math.MaxInt32 {
		return 0, false
	}
	return int(value), true
}

// Parse scans the lines of a dashboard dump for attendance rows. Every line
// is tried as a heading and lookahead windows may overlap, rows that fail the
// sanity checks are dropped without error.
func Parse(lines []string, opts ParserOptions) []Record {
	lookahead := opts.Lookahead
	if lookahead <= 0 {
		lookahead = DefaultParserOptions().Lookahead
	}

	records := []Record{}
	for i, line := range lines {
		if !IsHeading(line) {
			continue
		}

		end := min(i+1+lookahead, len(lines))
		var tokens []string
		for _, candidate := range lines[i+1 : end] {
			if isNumericToken(candidate) {
				tokens = append(tokens, candidate)
			}
			if len(tokens) == 3 {
				break
			}
		}
		if len(tokens) < 3 {
			continue
		}

		record, ok := buildRecord(line, tokens, opts.NumericOrder)
		if ok {
			records = append(records, record)
		}
	}
	return records
}

func ParseText(text string, opts ParserOptions) []Record {
	return Parse(textutil.SplitLines(text), opts)
}

func buildRecord(subject string, tokens []string, order NumericOrder) (Record, bool) {
	values := make([]float64, len(tokens))
	for i, token := range tokens {
		value, err := parseNumericToken(token)
		if err != nil {
			return Record{}, false
		}
		values[i] = value
	}

	first, second, percentage := values[0], values[1], values[2]
	attended, conducted := first, second
	if order == OrderConductedAttended {
		attended, conducted = second, first
	}
	return newRecord(subject, attended, conducted, percentage)
}

// newRecord applies the invariants every record must hold: whole,
// non-negative counts, conducted >= attended, and a percentage in [0, 100].
func newRecord(subject string, attended, conducted, percentage float64) (Record, bool) {
	attendedCount, ok := asCount(attended)
	if !ok {
		return Record{}, false
	}
	conductedCount, ok := asCount(conducted)
	if !ok {
		return Record{}, false
	}
	if conductedCount < attendedCount {
		return Record{}, false
	}
	if math.IsNaN(percentage) || percentage < 0 || percentage > 100 {
		return Record{}, false
	}
	return Record{
		Subject:    subject,
		Attended:   attendedCount,
		Conducted:  conductedCount,
		Percentage: percentage,
	}, true
}
