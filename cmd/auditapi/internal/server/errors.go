package server

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/httputil"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/repository"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/validation"
)

// errorMessages overrides the reply text for not-found and conflict errors of
// one resource. Empty fields fall back to the error text.
type errorMessages struct {
	NotFound string
	Conflict string
}

var (
	companyMessages = errorMessages{
		NotFound: "Company not found",
		Conflict: "Company with same legal name and CIN already exists",
	}
	engagementMessages = errorMessages{
		NotFound: "Engagement not found",
		Conflict: "Engagement code already exists",
	}
)

// writeServiceError maps domain errors onto HTTP replies. Anything
// unrecognised is logged and reported as a 500 without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger logrus.FieldLogger, msgs errorMessages, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		httputil.WriteError(w, http.StatusNotFound, orDefault(msgs.NotFound, err))
	case errors.Is(err, repository.ErrConflict):
		httputil.WriteError(w, http.StatusConflict, orDefault(msgs.Conflict, err))
	case errors.Is(err, repository.ErrInvalid), errors.Is(err, validation.ErrInvalidPayload):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		logger.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

func orDefault(msg string, err error) string {
	if msg != "" {
		return msg
	}
	return err.Error()
}
