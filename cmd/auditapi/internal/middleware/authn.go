package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/auth"
)

// Authenticate is the authentication gate. It runs on every request and
// attaches up to two verified identities:
//
//  1. X-Service-Token, verified locally, attaches a ServiceIdentity.
//  2. Authorization: Bearer, verified by the identity service, attaches a UserIdentity.
//
// A credential that is present but rejected ends the request with 401; an
// identity service or key endpoint outage ends it with 503. A request that
// carries neither credential is rejected with 401 "missing authentication".
func Authenticate(deps AuthnDependencies) func(http.Handler) http.Handler {
	logger := loggerOrDefault(deps.Logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path})
			authenticated := false

			if token := r.Header.Get(auth.HeaderServiceToken); token != "" {
				start := time.Now()
				svc, err := deps.Verifier.VerifyServiceToken(ctx, token)
				deps.Metrics.RecordAuth(ctx, "service", err == nil, msSince(start))
				if err != nil {
					err = rejectServiceToken(err)
					logRejection(log, err, "service token rejected")
					writeAuthError(w, err)
					return
				}
				ctx = auth.SetServiceContext(ctx, svc)
				authenticated = true
			}

			if token, ok := auth.BearerToken(r); ok {
				start := time.Now()
				user, err := deps.Verifier.VerifyUserToken(ctx, token)
				deps.Metrics.RecordAuth(ctx, "user", err == nil, msSince(start))
				if err != nil {
					err = rejectUserToken(err)
					logRejection(log, err, "user token rejected")
					writeAuthError(w, err)
					return
				}
				ctx = auth.SetUserContext(ctx, user)
				authenticated = true
			}

			if !authenticated {
				log.Debug("request carried no credentials")
				writeAuthError(w, auth.NewError(auth.ErrUnauthenticated, nil, "missing authentication"))
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// logRejection logs outages at error level and credential rejections at warn.
func logRejection(log logrus.FieldLogger, err error, msg string) {
	if auth.HTTPStatus(err) == http.StatusServiceUnavailable {
		log.WithError(err).Error(msg)
		return
	}
	log.WithError(err).Warn(msg)
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
