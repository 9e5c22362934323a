package attendance

import (
	"fmt"
	"log/slog"
	"strings"
)

// Credential is the portal login of a single student. It only ever lives
// for the duration of one request.
type Credential struct {
	Identifier string
	Secret     string
}

const redacted = "[REDACTED]"

// LogValue keeps the secret out of every slog record the credential ends up in.
func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("identifier", c.Identifier),
		slog.String("secret", redacted),
	)
}

func (c Credential) String() string {
	return fmt.Sprintf("Credential{%s %s}", c.Identifier, redacted)
}

func (c Credential) GoString() string {
	return c.String()
}

// Validate rejects a credential with an empty identifier or secret. The
// identifier is trimmed, the secret is taken as is.
func (c Credential) Validate() error {
	if strings.TrimSpace(c.Identifier) == "" || c.Secret == "" {
		return newError(ErrInputValidation, "Username and password are required", nil)
	}
	return nil
}

type Record struct {
	Subject    string  `json:"code"`
	Attended   int     `json:"attended"`
	Conducted  int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

type Report struct {
	StudentName string `json:"student_name"`
	// Records are in the order the portal lists them.
	Records []Record `json:"data"`
	// DebugText is a prefix of the captured page text, only filled when no
	// records could be parsed and debug mode is on.
	DebugText string `json:"debug_text,omitempty"`
}

func (r Report) Aggregate() float64 {
	return Aggregate(r.Records)
}

func (r Report) TotalAttended() int {
	total := 0
	for _, rec := range r.Records {
		total += rec.Attended
	}
	return total
}

func (r Report) TotalConducted() int {
	total := 0
	for _, rec := range r.Records {
		total += rec.Conducted
	}
	return total
}

type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeInvalidCredentials
	OutcomePortalUnreachable
	OutcomeTimeout
	OutcomeUnknownError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeInvalidCredentials:
		return "invalid_credentials"
	case OutcomePortalUnreachable:
		return "portal_unreachable"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeUnknownError:
		return "unknown_error"
	}
	return fmt.Sprintf("OutcomeKind(%d)", int(k))
}

// LoginOutcome is the result of the authentication sequence. Message is
// only set for InvalidCredentials and UnknownError.
type LoginOutcome struct {
	Kind    OutcomeKind
	Message string
}

// PageSignals are the only inputs Classify looks at.
type PageSignals struct {
	ErrorVisible     bool
	ErrorText        string
	DashboardVisible bool
	URL              string
}
