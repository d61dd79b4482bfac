package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/auth"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/rbac"
)

// Authorizer builds per-route authorization guards backed by the policy service.
type Authorizer struct {
	deps   AuthzDependencies
	logger logrus.FieldLogger
}

// NewAuthzMiddleware validates the dependencies and returns an Authorizer.
func NewAuthzMiddleware(deps AuthzDependencies) (*Authorizer, error) {
	if deps.Verifier == nil {
		return nil, errors.New("authz middleware requires a token verifier")
	}
	if deps.Policy == nil {
		return nil, errors.New("authz middleware requires a policy checker")
	}
	return &Authorizer{deps: deps, logger: loggerOrDefault(deps.Logger)}, nil
}

// Require returns a guard that lets the request through only when the policy
// service explicitly allows activity for the acting user in the resolved
// project. Nothing is cached between requests.
func (a *Authorizer) Require(activity string, requiredRoles ...string) func(http.Handler) http.Handler {
	roles := append([]string(nil), requiredRoles...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := a.logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"activity": activity,
			})

			reject := func(err error, elapsed float64) {
				a.deps.Metrics.RecordDecision(ctx, activity, decisionOutcome(err), elapsed)
				writeAuthError(w, err)
			}

			token, ok := auth.BearerToken(r)
			if !ok {
				reject(auth.NewError(auth.ErrUnauthenticated, nil, "missing bearer token"), 0)
				return
			}

			projectID, ok := ResolveProjectID(r)
			if !ok {
				reject(auth.ErrContextMissing, 0)
				return
			}
			log = log.WithField("project_id", projectID)

			var userID string
			if user, ok := auth.GetUserFromContext(ctx); ok {
				userID = user.UserID
			}
			if userID == "" {
				user, err := a.deps.Verifier.VerifyUserToken(ctx, token)
				if err != nil {
					err = rejectUserToken(err)
					logRejection(log, err, "user token rejected")
					reject(err, 0)
					return
				}
				userID = user.UserID
			}
			if userID == "" {
				reject(auth.NewError(auth.ErrUnauthenticated, nil, "cannot resolve user id"), 0)
				return
			}
			log = log.WithField("user_id", userID)

			start := time.Now()
			allowed, err := a.deps.Policy.Check(ctx, rbac.Decision{
				UserID:        userID,
				ProjectID:     projectID,
				Activity:      activity,
				RequiredRoles: roles,
				UserToken:     token,
			})
			elapsed := msSince(start)
			if err != nil {
				log.WithError(err).Error("policy service unavailable")
				reject(auth.NewError(auth.ErrServiceCallFailed, err, "RBAC service unavailable"), elapsed)
				return
			}
			if !allowed {
				log.Warn("access denied")
				reject(auth.NewError(auth.ErrForbidden, nil, "forbidden: %s", activity), elapsed)
				return
			}

			a.deps.Metrics.RecordDecision(ctx, activity, "allowed", elapsed)
			next.ServeHTTP(w, r)
		})
	}
}
