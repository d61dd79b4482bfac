package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds produced by the authentication pipeline. Callers classify with
// errors.Is and map to a response status with HTTPStatus.
var (
	// ErrUnauthenticated means the presented credential is missing, malformed,
	// expired or rejected by the identity service.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrContextMissing means no project or tenant could be resolved for an
	// authorization decision.
	ErrContextMissing = errors.New("missing project/tenant context")

	// ErrForbidden means the policy service did not explicitly allow the activity.
	ErrForbidden = errors.New("forbidden")

	// ErrUpstreamUnavailable means the identity service or key endpoint could
	// not be reached or answered with something unusable.
	ErrUpstreamUnavailable = errors.New("auth system unavailable")

	// ErrServiceCallFailed means an outbound peer call failed at the transport level.
	ErrServiceCallFailed = errors.New("service call failed")

	// ErrConfiguration is raised at startup when required settings are absent.
	ErrConfiguration = errors.New("auth configuration error")
)

// pipelineError carries a human readable message while still matching its
// kind through errors.Is. The message never includes credential material.
type pipelineError struct {
	kind  error
	msg   string
	cause error
}

func (e *pipelineError) Error() string { return e.msg }

func (e *pipelineError) Is(target error) bool { return target == e.kind }

func (e *pipelineError) Unwrap() error { return e.cause }

// NewError returns an error that matches kind through errors.Is and reports
// the formatted message. cause may be nil.
func NewError(kind error, cause error, format string, args ...any) error {
	return &pipelineError{kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

// HTTPStatus maps an error from the pipeline onto the status code returned to
// the client. Unknown errors are treated as internal failures.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrContextMissing):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUpstreamUnavailable), errors.Is(err, ErrServiceCallFailed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
