package server

import (
	"errors"
	"net/http"

	"attendance-backend/services/attendance"
)

// HTTPStatus maps an error returned by attendance.Service.Fetch onto the
// status code the web client expects.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, attendance.ErrInputValidation):
		return http.StatusBadRequest
	case errors.Is(err, attendance.ErrAuthenticationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, attendance.ErrPortalUnreachable),
		errors.Is(err, attendance.ErrSequenceTimeout):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// PublicMessage is the text that may be shown to the user for err. Anything
// outside the taxonomy gets the generic message, never the raw error.
func PublicMessage(err error) string {
	var typed *attendance.Error
	if errors.As(err, &typed) && typed.Message != "" && !errors.Is(err, attendance.ErrUnclassified) {
		return typed.Message
	}
	return attendance.MessageUnclassified
}
