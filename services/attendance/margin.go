package attendance

import "math"

type Status string

const (
	StatusSafe     Status = "safe"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

const (
	DefaultThreshold = 75.0
	warningFloor     = 65.0
)

// StatusOf bands a percentage the way the dashboard colours it.
func StatusOf(percentage float64) Status {
	switch {
	case percentage >= DefaultThreshold:
		return StatusSafe
	case percentage >= warningFloor:
		return StatusWarning
	}
	return StatusCritical
}

// Margin is how many more classes can be missed while staying at or above
// threshold percent (positive), or how many classes in a row must be
// attended to get back up to it (negative). Zero means exactly on the edge.
func Margin(attended, conducted int, threshold float64) int {
	if threshold <= 0 {
		return math.MaxInt32
	}
	if threshold > 100 {
		threshold = 100
	}
	ratio := threshold / 100

	if conducted == 0 || float64(attended) >= ratio*float64(conducted) {
		// attended / (conducted + k) >= ratio
		skippable := math.Floor(float64(attended)/ratio - float64(conducted) + 1e-9)
		return max(int(skippable), 0)
	}

	if ratio >= 1 {
		// no number of classes brings a missed one back to 100%
		return math.MinInt32
	}
	// (attended + k) / (conducted + k) >= ratio
	required := math.Ceil((ratio*float64(conducted)-float64(attended))/(1-ratio) - 1e-9)
	return -int(required)
}
