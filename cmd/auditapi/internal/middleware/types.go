package middleware

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/auth"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/rbac"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/telemetry"
)

// AuthnDependencies provides the collaborators of the authentication gate.
type AuthnDependencies struct {
	Verifier auth.TokenVerifier
	Logger   logrus.FieldLogger
	Metrics  *telemetry.AuthMetrics
}

// PolicyChecker decides whether a user may perform an activity.
type PolicyChecker interface {
	Check(ctx context.Context, d rbac.Decision) (bool, error)
}

// AuthzDependencies provides the collaborators needed for authorization decisions.
type AuthzDependencies struct {
	// Verifier re-verifies the bearer token when no user identity is attached.
	Verifier auth.TokenVerifier
	Policy   PolicyChecker
	Logger   logrus.FieldLogger
	Metrics  *telemetry.AuthMetrics
}

func loggerOrDefault(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return logrus.StandardLogger()
	}
	return l
}
