package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/telemetry"
)

// DefaultServiceTokenTTL is how long an issued service token is reused. Tokens
// live about ten minutes; refreshing after nine leaves headroom for skew.
const DefaultServiceTokenTTL = 9 * time.Minute

// ServiceTokenConfig identifies this service to the identity service.
type ServiceTokenConfig struct {
	AuthBaseURL   string
	ServiceID     string
	ServiceSecret Secret
	TTL           time.Duration
}

// TokenProvider hands out this service's outbound credential.
type TokenProvider interface {
	Token(ctx context.Context, forceRefresh bool) (Secret, error)
}

// ServiceTokenSource obtains and caches the service token presented to peers.
// The token lives only in process memory.
type ServiceTokenSource struct {
	cfg     ServiceTokenConfig
	client  *http.Client
	clock   clock.Clock
	logger  logrus.FieldLogger
	timeout time.Duration

	mu        sync.Mutex
	token     Secret
	expiresAt time.Time

	group singleflight.Group
}

var _ TokenProvider = (*ServiceTokenSource)(nil)

// NewServiceTokenSource validates the service credentials and returns a source.
func NewServiceTokenSource(cfg ServiceTokenConfig, opts ...Option) (*ServiceTokenSource, error) {
	switch {
	case cfg.AuthBaseURL == "":
		return nil, fmt.Errorf("%w: AUTH_BASE_URL is required", ErrConfiguration)
	case cfg.ServiceID == "":
		return nil, fmt.Errorf("%w: SERVICE_ID is required", ErrConfiguration)
	case cfg.ServiceSecret.Empty():
		return nil, fmt.Errorf("%w: SERVICE_SECRET is required", ErrConfiguration)
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultServiceTokenTTL
	}

	o := buildOptions(opts)
	return &ServiceTokenSource{
		cfg:     cfg,
		client:  o.client,
		clock:   o.clock,
		logger:  o.logger,
		timeout: o.timeout,
	}, nil
}

// Token returns the cached token unless forceRefresh is set or the cache
// watermark has been reached, in which case a new token is issued.
func (s *ServiceTokenSource) Token(ctx context.Context, forceRefresh bool) (Secret, error) {
	if !forceRefresh {
		s.mu.Lock()
		token, expiresAt := s.token, s.expiresAt
		s.mu.Unlock()
		if !token.Empty() && s.clock.Now().Before(expiresAt) {
			return token, nil
		}
	}

	v, err, _ := s.group.Do("issue", func() (any, error) {
		return s.issue(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(Secret), nil
}

type serviceTokenRequest struct {
	ServiceID     string `json:"service_id"`
	ServiceSecret string `json:"service_secret"`
}

func (s *ServiceTokenSource) issue(ctx context.Context) (Secret, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "auth.IssueServiceToken",
		attribute.String(telemetry.AttrServiceID, s.cfg.ServiceID),
	)
	defer span.End()

	ctx, cancel := detach(ctx, s.timeout)
	defer cancel()

	body := serviceTokenRequest{ServiceID: s.cfg.ServiceID, ServiceSecret: s.cfg.ServiceSecret.Value()}
	status, raw, err := postJSON(ctx, s.client, joinURL(s.cfg.AuthBaseURL, "/internal/service-token"), body, nil)
	if err != nil {
		err = NewError(ErrUpstreamUnavailable, err, "service token request failed: %v", err)
		telemetry.RecordError(span, err)
		return "", err
	}

	if status != http.StatusOK {
		err = NewError(ErrUnauthenticated, nil, "service token issuance rejected: %d", status)
		telemetry.RecordError(span, err)
		return "", err
	}

	payload, err := decodeObject(raw)
	if err != nil {
		err = NewError(ErrUpstreamUnavailable, err, "service token response malformed: %v", err)
		telemetry.RecordError(span, err)
		return "", err
	}
	tok, _ := payload["token"].(string)
	if tok == "" {
		err = NewError(ErrUpstreamUnavailable, nil, "service token missing in auth response")
		telemetry.RecordError(span, err)
		return "", err
	}

	token := Secret(tok)
	s.mu.Lock()
	s.token = token
	s.expiresAt = s.clock.Now().Add(s.cfg.TTL)
	s.mu.Unlock()

	s.logger.WithField("service_id", s.cfg.ServiceID).Debug("issued service token")
	return token, nil
}
