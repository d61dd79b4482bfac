// Package rbac asks the remote policy service whether a user may perform an
// activity within a project.
package rbac

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/auth"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/telemetry"
)

const (
	tracerName = "auditapi/services/rbac"

	// CheckPath is the direct permission check endpoint on the policy service.
	CheckPath = "/authz/direct/check"

	// DefaultTimeout bounds a single policy decision.
	DefaultTimeout = 5 * time.Second
)

// Caller sends authenticated requests to peer services.
type Caller interface {
	Call(ctx context.Context, req auth.PeerRequest) (*auth.PeerResponse, error)
}

// Decision is the question put to the policy service.
type Decision struct {
	UserID        string
	ProjectID     string
	Activity      string
	RequiredRoles []string
	// UserToken is forwarded so the policy service can audit the caller.
	UserToken string
}

type checkRequest struct {
	UserID        string   `json:"userId"`
	ProjectID     string   `json:"projectId"`
	Activity      string   `json:"activity"`
	RequiredRoles []string `json:"requiredRoles,omitempty"`
}

type checkResponse struct {
	Data struct {
		Allowed any `json:"allowed"`
	} `json:"data"`
}

// Client evaluates decisions against the policy service.
type Client struct {
	caller  Caller
	service string
	timeout time.Duration
	logger  logrus.FieldLogger
}

// NewClient returns a client for the peer registered under service.
func NewClient(caller Caller, service string, timeout time.Duration, logger logrus.FieldLogger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{caller: caller, service: service, timeout: timeout, logger: logger}
}

// Check reports whether the decision is explicitly allowed. Any non-200
// answer, an unreadable body, or an "allowed" value other than true is a
// denial. Errors are returned only when the policy service could not be asked.
func (c *Client) Check(ctx context.Context, d Decision) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "rbac.Check",
		attribute.String(telemetry.AttrPolicyActivity, d.Activity),
		attribute.String(telemetry.AttrPolicyProject, d.ProjectID),
		attribute.String(telemetry.AttrPrincipalID, d.UserID),
	)
	defer span.End()

	resp, err := c.caller.Call(ctx, auth.PeerRequest{
		Service:   c.service,
		Method:    http.MethodPost,
		Path:      CheckPath,
		UserToken: d.UserToken,
		Body: checkRequest{
			UserID:        d.UserID,
			ProjectID:     d.ProjectID,
			Activity:      d.Activity,
			RequiredRoles: d.RequiredRoles,
		},
		Timeout: c.timeout,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return false, err
	}

	log := c.logger.WithFields(logrus.Fields{
		"activity":   d.Activity,
		"project_id": d.ProjectID,
		"user_id":    d.UserID,
		"status":     resp.StatusCode,
	})

	if resp.StatusCode != http.StatusOK {
		log.Warn("policy service returned non-200, denying")
		span.SetAttributes(attribute.Bool(telemetry.AttrPolicyAllowed, false))
		return false, nil
	}

	var body checkResponse
	if err := resp.DecodeJSON(&body); err != nil {
		log.WithError(err).Warn("policy service returned malformed body, denying")
		span.SetAttributes(attribute.Bool(telemetry.AttrPolicyAllowed, false))
		return false, nil
	}

	allowed, _ := body.Data.Allowed.(bool)
	span.SetAttributes(attribute.Bool(telemetry.AttrPolicyAllowed, allowed))
	return allowed, nil
}
