package attendance

import (
	"context"
	"errors"

	"attendance-backend/lib/browser"
)

var (
	ErrInputValidation      = errors.New("input validation")
	ErrPortalUnreachable    = errors.New("portal unreachable")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrSequenceTimeout      = errors.New("sequence timeout")
	ErrUnclassified         = errors.New("unclassified failure")
)

const (
	MessagePortalUnreachable  = "MITS server is slow or unreachable. Please try again later."
	MessageInvalidCredentials = "Invalid username or password"
	MessageTimeout            = "Login timed out. Please try again."
	MessageUnclassified       = "Connection timed out or failed. Please try again."
)

// Error is the only error type Service.Fetch returns. Message is safe to
// show to the caller, Cause is for logs only.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func newError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Kind.Error() + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Kind.Error() + ": " + e.Message
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// outcomeError maps a non-success login outcome onto the error taxonomy.
func outcomeError(outcome LoginOutcome) error {
	switch outcome.Kind {
	case OutcomeSuccess:
		return nil
	case OutcomeInvalidCredentials:
		message := outcome.Message
		if message == "" {
			message = MessageInvalidCredentials
		}
		return newError(ErrAuthenticationFailed, message, nil)
	case OutcomePortalUnreachable:
		return newError(ErrPortalUnreachable, MessagePortalUnreachable, nil)
	case OutcomeTimeout:
		return newError(ErrSequenceTimeout, MessageTimeout, nil)
	}
	return newError(ErrUnclassified, MessageUnclassified, errors.New(outcome.Message))
}

// classifyError maps any error that escaped the sequence onto the taxonomy,
// errors already in it are returned unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	if errors.Is(err, browser.ErrLaunch) {
		return newError(ErrUnclassified, MessageUnclassified, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(ErrSequenceTimeout, MessageTimeout, err)
	}
	return newError(ErrUnclassified, MessageUnclassified, err)
}
