package attendance

import "time"

// Selectors locate the elements of the portal the sequencer interacts with.
type Selectors struct {
	StudentLink string
	LoginForm   string
	StudentForm string
	Identifier  string
	Secret      string
	Submit      string
	Dashboard   string
	Error       string
	// NameHeader is an optional element whose text starts with "NAME |".
	NameHeader string
}

type Timeouts struct {
	Navigation     time.Duration
	FormOpen       time.Duration
	Submit         time.Duration
	SubmitFallback time.Duration
	// Capture bounds reading the dashboard after it settled.
	Capture time.Duration
}

const (
	SettlePoll  = "poll"
	SettleFixed = "fixed"
)

type SettleOptions struct {
	// Mode is SettlePoll or SettleFixed. A fixed settle always waits Max.
	Mode string
	// StableFor is how long the body text must stay unchanged.
	StableFor time.Duration
	Max       time.Duration
	Interval  time.Duration
}

type Options struct {
	PortalURL string
	Selectors Selectors
	Timeouts  Timeouts
	Settle    SettleOptions
	Parser    ParserOptions
	// Threshold is the minimum attendance percentage margins are computed
	// against.
	Threshold float64
	// Debug returns a prefix of the captured text when nothing was parsed.
	Debug bool
	// DebugTextLimit bounds the debug text in bytes.
	DebugTextLimit int
}

func DefaultSelectors() Selectors {
	return Selectors{
		StudentLink: "#studentLink",
		LoginForm:   "#stuLogin",
		StudentForm: "#studentForm",
		Identifier:  "#studentForm #inputStuId",
		Secret:      "#studentForm #inputPassword",
		Submit:      "#studentSubmitButton",
		Dashboard:   "#studentName",
		Error:       "#studentErrorDiv",
		NameHeader:  ".header-top",
	}
}

func DefaultOptions() Options {
	return Options{
		PortalURL: "http://mitsims.in/",
		Selectors: DefaultSelectors(),
		Timeouts: Timeouts{
			Navigation:     60 * time.Second,
			FormOpen:       15 * time.Second,
			Submit:         8 * time.Second,
			SubmitFallback: 15 * time.Second,
			Capture:        10 * time.Second,
		},
		Settle: SettleOptions{
			Mode:      SettlePoll,
			StableFor: 1500 * time.Millisecond,
			Max:       4 * time.Second,
			Interval:  500 * time.Millisecond,
		},
		Parser:         DefaultParserOptions(),
		Threshold:      DefaultThreshold,
		DebugTextLimit: 2000,
	}
}
