package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-jose/go-jose/v4"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/telemetry"
)

// DefaultKeySetTTL is how long a fetched signing key set is trusted.
const DefaultKeySetTTL = 300 * time.Second

// KeySetCache holds the public keys used to verify service tokens. The set is
// fetched lazily and refreshed only once it is older than the TTL.
type KeySetCache struct {
	url     string
	ttl     time.Duration
	client  *http.Client
	clock   clock.Clock
	timeout time.Duration

	mu        sync.RWMutex
	keys      *jose.JSONWebKeySet
	fetchedAt time.Time

	group singleflight.Group
}

// NewKeySetCache creates a cache for the JWK set published at url.
func NewKeySetCache(url string, ttl time.Duration, opts ...Option) *KeySetCache {
	o := buildOptions(opts)
	if ttl <= 0 {
		ttl = DefaultKeySetTTL
	}
	return &KeySetCache{
		url:     url,
		ttl:     ttl,
		client:  o.client,
		clock:   o.clock,
		timeout: o.timeout,
	}
}

// Get returns the cached key set, fetching it when none is held or when the
// TTL has elapsed since the last fetch. Concurrent refreshes share one request.
func (c *KeySetCache) Get(ctx context.Context) (*jose.JSONWebKeySet, error) {
	c.mu.RLock()
	keys, fetchedAt := c.keys, c.fetchedAt
	c.mu.RUnlock()

	if keys != nil && c.clock.Since(fetchedAt) <= c.ttl {
		return keys, nil
	}

	v, err, _ := c.group.Do(c.url, func() (any, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*jose.JSONWebKeySet), nil
}

// Key returns the public key for kid. A token without a kid is accepted only
// when the set holds exactly one key.
func (c *KeySetCache) Key(ctx context.Context, kid string) (any, error) {
	keys, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	return lookupKey(keys, kid)
}

func (c *KeySetCache) refresh(ctx context.Context) (*jose.JSONWebKeySet, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "auth.RefreshKeySet",
		attribute.String("jwks.url", c.url),
	)
	defer span.End()

	ctx, cancel := detach(ctx, c.timeout)
	defer cancel()

	keys, err := c.fetch(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	c.mu.Lock()
	c.keys = keys
	c.fetchedAt = c.clock.Now()
	c.mu.Unlock()

	span.SetAttributes(attribute.Int("jwks.keys", len(keys.Keys)))
	return keys, nil
}

func (c *KeySetCache) fetch(ctx context.Context) (*jose.JSONWebKeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, NewError(ErrUpstreamUnavailable, err, "build key set request: %v", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, NewError(ErrUpstreamUnavailable, err, "fetch signing keys: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, NewError(ErrUpstreamUnavailable, nil, "fetch signing keys: unexpected status %d", resp.StatusCode)
	}

	var keys jose.JSONWebKeySet
	if err := json.NewDecoder(resp.Body).Decode(&keys); err != nil {
		return nil, NewError(ErrUpstreamUnavailable, err, "decode signing keys: %v", err)
	}
	return &keys, nil
}

func lookupKey(keys *jose.JSONWebKeySet, kid string) (any, error) {
	var jwk *jose.JSONWebKey
	switch {
	case kid != "":
		if found := keys.Key(kid); len(found) > 0 {
			jwk = &found[0]
		}
	case len(keys.Keys) == 1:
		jwk = &keys.Keys[0]
	}
	if jwk == nil {
		return nil, fmt.Errorf("no signing key for kid %q", kid)
	}
	if jwk.IsPublic() {
		return jwk.Key, nil
	}
	return jwk.Public().Key, nil
}
