package attendance

import (
	"strings"

	"attendance-backend/lib/textutil"
)

var credentialKeywords = []string{"invalid", "wrong", "mismatch", "incorrect"}

// Classify decides the outcome of a login attempt from what the page shows
// after the credentials were submitted. It is deterministic and looks at
// nothing but the signals.
func Classify(signals PageSignals) LoginOutcome {
	errorText := strings.TrimSpace(signals.ErrorText)
	if errorText != "" {
		if textutil.ContainsAnyFold(errorText, credentialKeywords...) {
			return LoginOutcome{Kind: OutcomeInvalidCredentials, Message: MessageInvalidCredentials}
		}
		return LoginOutcome{Kind: OutcomeInvalidCredentials, Message: "Login Error: " + errorText}
	}

	if signals.DashboardVisible {
		return LoginOutcome{Kind: OutcomeSuccess}
	}

	// the portal sometimes shows an empty error box instead of a message
	if signals.ErrorVisible {
		return LoginOutcome{Kind: OutcomeInvalidCredentials, Message: MessageInvalidCredentials}
	}

	url := strings.ToLower(strings.TrimSpace(signals.URL))
	switch {
	case url == "" || url == "about:blank" || strings.HasPrefix(url, "chrome-error://"):
		return LoginOutcome{Kind: OutcomePortalUnreachable}
	case strings.Contains(url, "dashboard"):
		return LoginOutcome{
			Kind:    OutcomeUnknownError,
			Message: "reached the dashboard without a dashboard marker",
		}
	}
	return LoginOutcome{Kind: OutcomeTimeout}
}
