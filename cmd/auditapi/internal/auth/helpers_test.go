package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testKID      = "test-key"
	testIssuer   = "auth-service"
	testAudience = "itmtb-internal"
)

type keyServer struct {
	*httptest.Server
	key     *rsa.PrivateKey
	fetches atomic.Int32
	status  atomic.Int32
}

// newKeyServer publishes a freshly generated RSA public key as a JWK set.
func newKeyServer(t *testing.T) *keyServer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	ks := &keyServer{key: key}
	ks.status.Store(http.StatusOK)

	set := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{
		Key:       &key.PublicKey,
		KeyID:     testKID,
		Algorithm: "RS256",
		Use:       "sig",
	}}}
	body, err := json.Marshal(set)
	require.NoError(t, err)

	ks.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ks.fetches.Add(1)
		status := int(ks.status.Load())
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(ks.Close)
	return ks
}

func (ks *keyServer) sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	return signWith(t, ks.key, testKID, claims)
}

func signWith(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		tok.Header["kid"] = kid
	}
	signed, err := tok.SignedString(key)
	require.NoError(t, err)
	return signed
}

func serviceClaims(overrides map[string]any) jwt.MapClaims {
	claims := jwt.MapClaims{
		"sub":    "report-service",
		"type":   ServiceTokenType,
		"scopes": []any{"audit.read", "audit.write"},
		"iss":    testIssuer,
		"aud":    testAudience,
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(10 * time.Minute).Unix(),
	}
	for k, v := range overrides {
		if v == nil {
			delete(claims, k)
			continue
		}
		claims[k] = v
	}
	return claims
}
