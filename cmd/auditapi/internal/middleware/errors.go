package middleware

import (
	"errors"
	"net/http"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/auth"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/httputil"
)

// writeAuthError replies with the status auth.HTTPStatus assigns to err and
// err's message as the body.
func writeAuthError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, auth.HTTPStatus(err), err.Error())
}

// decisionOutcome names a guard failure for the decision metric.
func decisionOutcome(err error) string {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, auth.ErrContextMissing):
		return "bad_request"
	case errors.Is(err, auth.ErrForbidden):
		return "denied"
	case errors.Is(err, auth.ErrUpstreamUnavailable), errors.Is(err, auth.ErrServiceCallFailed):
		return "unavailable"
	default:
		return "error"
	}
}

// rejectServiceToken classifies a failed service token verification.
func rejectServiceToken(err error) error {
	if errors.Is(err, auth.ErrUpstreamUnavailable) {
		return auth.NewError(auth.ErrUpstreamUnavailable, err, "auth system error")
	}
	return auth.NewError(auth.ErrUnauthenticated, err, "invalid service token")
}

// rejectUserToken classifies a failed user token verification. Anything other
// than an explicit rejection is treated as an identity service outage.
func rejectUserToken(err error) error {
	if errors.Is(err, auth.ErrUnauthenticated) {
		return auth.NewError(auth.ErrUnauthenticated, err, "invalid user token: %s", err.Error())
	}
	return auth.NewError(auth.ErrUpstreamUnavailable, err, "auth system error: %s", err.Error())
}
