package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/telemetry"
)

const (
	// ServiceTokenType is the value of the "type" claim on service tokens.
	ServiceTokenType = "service"

	serviceTokenAlgorithm = "RS256"
)

// VerifierConfig describes where identities are verified.
type VerifierConfig struct {
	// AuthBaseURL is the identity service root; user tokens are posted to {AuthBaseURL}/verify.
	AuthBaseURL string
	// JWKSURL publishes the keys that sign service tokens.
	JWKSURL string
	// Issuer and Audience are required to match on service tokens.
	Issuer   string
	Audience string
	// KeySetTTL bounds how long fetched signing keys are trusted.
	KeySetTTL time.Duration
}

// TokenVerifier validates both kinds of inbound credentials.
type TokenVerifier interface {
	VerifyUserToken(ctx context.Context, token string) (*UserIdentity, error)
	VerifyServiceToken(ctx context.Context, token string) (*ServiceIdentity, error)
}

// Verifier checks user tokens remotely and service tokens locally.
type Verifier struct {
	cfg     VerifierConfig
	keys    *KeySetCache
	client  *http.Client
	clock   clock.Clock
	logger  logrus.FieldLogger
	timeout time.Duration
}

var _ TokenVerifier = (*Verifier)(nil)

// NewVerifier builds a Verifier. The JWKS URL defaults to the identity
// service's well-known location.
func NewVerifier(cfg VerifierConfig, opts ...Option) (*Verifier, error) {
	if cfg.AuthBaseURL == "" {
		return nil, fmt.Errorf("%w: AUTH_BASE_URL is required", ErrConfiguration)
	}
	if cfg.JWKSURL == "" {
		cfg.JWKSURL = joinURL(cfg.AuthBaseURL, "/.well-known/jwks.json")
	}

	o := buildOptions(opts)
	return &Verifier{
		cfg:     cfg,
		keys:    NewKeySetCache(cfg.JWKSURL, cfg.KeySetTTL, opts...),
		client:  o.client,
		clock:   o.clock,
		logger:  o.logger,
		timeout: o.timeout,
	}, nil
}

// VerifyUserToken asks the identity service whether the token is valid.
// Rejections (400, 401, 403) are ErrUnauthenticated; any other failure is
// ErrUpstreamUnavailable.
func (v *Verifier) VerifyUserToken(ctx context.Context, token string) (*UserIdentity, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "auth.VerifyUserToken")
	defer span.End()

	if token == "" {
		return nil, NewError(ErrUnauthenticated, nil, "user token is empty")
	}

	callCtx, cancel := detach(ctx, v.timeout)
	defer cancel()

	status, body, err := postJSON(callCtx, v.client, joinURL(v.cfg.AuthBaseURL, "/verify"), map[string]string{"token": token}, nil)
	if err != nil {
		err = NewError(ErrUpstreamUnavailable, err, "auth service unreachable: %v", err)
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", status))

	switch status {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		v.logger.WithField("status", status).Debug("user token rejected by auth service")
		return nil, NewError(ErrUnauthenticated, nil, "user token invalid: %d %s", status, truncateBody(body))
	default:
		err = NewError(ErrUpstreamUnavailable, nil, "auth service error: %d", status)
		telemetry.RecordError(span, err)
		return nil, err
	}

	payload, err := decodeObject(body)
	if err != nil {
		err = NewError(ErrUpstreamUnavailable, err, "auth service returned malformed identity: %v", err)
		telemetry.RecordError(span, err)
		return nil, err
	}

	ident := ExtractUserIdentity(payload)
	span.SetAttributes(attribute.String(telemetry.AttrPrincipalID, ident.UserID))
	return ident, nil
}

// VerifyServiceToken validates a service token against the cached signing
// keys. Only a failure to obtain the keys is ErrUpstreamUnavailable.
func (v *Verifier) VerifyServiceToken(ctx context.Context, token string) (*ServiceIdentity, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "auth.VerifyServiceToken")
	defer span.End()

	if token == "" {
		return nil, NewError(ErrUnauthenticated, nil, "service token is empty")
	}

	keys, err := v.keys.Get(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{serviceTokenAlgorithm}),
		jwt.WithTimeFunc(v.clock.Now),
	}
	if v.cfg.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.cfg.Issuer))
	}
	if v.cfg.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(v.cfg.Audience))
	}

	claims := jwt.MapClaims{}
	_, err = jwt.NewParser(parserOpts...).ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return lookupKey(keys, kid)
	})
	if err != nil {
		return nil, NewError(ErrUnauthenticated, err, "invalid service token: %v", err)
	}

	if typ, _ := claims["type"].(string); typ != ServiceTokenType {
		return nil, NewError(ErrUnauthenticated, nil, "invalid token type")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, NewError(ErrUnauthenticated, nil, "service token missing sub")
	}

	scopes := []string{}
	if raw, present := claims["scopes"]; present {
		if scopes, err = parseScopes(raw); err != nil {
			return nil, err
		}
	}

	span.SetAttributes(attribute.String(telemetry.AttrServiceID, sub))
	return &ServiceIdentity{ServiceID: sub, Scopes: scopes}, nil
}

// parseScopes accepts only a JSON array of strings. An explicit null is
// rejected like any other non-array value.
func parseScopes(raw any) ([]string, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, NewError(ErrUnauthenticated, nil, "invalid scopes format")
	}
	scopes := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, NewError(ErrUnauthenticated, nil, "invalid scopes format")
		}
		scopes = append(scopes, s)
	}
	return scopes, nil
}
