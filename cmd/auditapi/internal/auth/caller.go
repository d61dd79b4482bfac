package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/telemetry"
)

// Headers used between services.
const (
	HeaderServiceToken = "X-Service-Token"
	HeaderUserToken    = "X-User-Token"
	HeaderTenantID     = "X-Tenant-Id"
)

// PeerResolver maps a logical service name to its base URL.
type PeerResolver interface {
	PeerBaseURL(service string) (string, error)
}

// StaticPeers resolves peers from a fixed name to URL table. Names are
// matched case-insensitively.
type StaticPeers map[string]string

// PeerBaseURL returns the base URL registered for service.
func (p StaticPeers) PeerBaseURL(service string) (string, error) {
	if u := p[strings.ToUpper(service)]; u != "" {
		return u, nil
	}
	return "", fmt.Errorf("%w: %s_BASE_URL is not set", ErrConfiguration, strings.ToUpper(service))
}

// PeerRequest describes one call to a peer service.
type PeerRequest struct {
	Service string
	Method  string
	Path    string
	// UserToken is forwarded as X-User-Token; a "Bearer " prefix is stripped.
	UserToken string
	Header    http.Header
	// Body is encoded as JSON when non-nil.
	Body    any
	Timeout time.Duration
}

// PeerResponse is a fully read peer response.
type PeerResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// DecodeJSON unmarshals the response body into v.
func (r *PeerResponse) DecodeJSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// ServiceCaller performs authenticated calls to peer services. A 401 from the
// peer triggers exactly one forced token refresh and one retry.
type ServiceCaller struct {
	tokens  TokenProvider
	peers   PeerResolver
	client  *http.Client
	logger  logrus.FieldLogger
	timeout time.Duration
}

// NewServiceCaller wires a caller from its token source and peer table.
func NewServiceCaller(tokens TokenProvider, peers PeerResolver, opts ...Option) *ServiceCaller {
	o := buildOptions(opts)
	return &ServiceCaller{
		tokens:  tokens,
		peers:   peers,
		client:  o.client,
		logger:  o.logger,
		timeout: o.timeout,
	}
}

// Call sends req to the named peer. Transport failures are
// ErrServiceCallFailed; failures to obtain a service token are returned as is.
// A second 401 after the refresh is returned to the caller as a response.
func (c *ServiceCaller) Call(ctx context.Context, req PeerRequest) (*PeerResponse, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	ctx, span := telemetry.StartSpan(ctx, tracerName, "auth.CallService",
		attribute.String(telemetry.AttrPeerService, req.Service),
		attribute.String("http.method", method),
		attribute.String("http.path", req.Path),
	)
	defer span.End()

	base, err := c.peers.PeerBaseURL(req.Service)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	url := joinURL(base, req.Path)

	var payload []byte
	if req.Body != nil {
		payload, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request body: %w", req.Service, err)
		}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}

	token, err := c.tokens.Token(ctx, false)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp, err := c.send(ctx, method, url, payload, token, req, timeout)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.WithField("service", req.Service).Debug("peer rejected service token, refreshing")
		telemetry.AddEvent(span, "service_token.refresh")

		token, err = c.tokens.Token(ctx, true)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		resp, err = c.send(ctx, method, url, payload, token, req, timeout)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return resp, nil
}

func (c *ServiceCaller) send(ctx context.Context, method, url string, payload []byte, token Secret, req PeerRequest, timeout time.Duration) (*PeerResponse, error) {
	ctx, cancel := detach(ctx, timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", req.Service, err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(HeaderServiceToken, token.Value())
	if ut := StripBearer(req.UserToken); ut != "" {
		httpReq.Header.Set(HeaderUserToken, ut)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrServiceCallFailed, req.Service, req.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %v", ErrServiceCallFailed, req.Service, err)
	}

	return &PeerResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: raw}, nil
}

// StripBearer removes a leading "Bearer " from a header value.
func StripBearer(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 7 && strings.EqualFold(value[:7], "bearer ") {
		return strings.TrimSpace(value[7:])
	}
	return value
}

// BearerToken extracts the token from an Authorization header. It reports
// false when the header is absent, uses another scheme, or carries no token.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(h[7:])
	return token, token != ""
}
