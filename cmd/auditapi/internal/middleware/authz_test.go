package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/auth"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/rbac"
)

func newGuard(t *testing.T, v *fakeVerifier, p PolicyChecker, activity string, roles ...string) (http.Handler, *recorder) {
	t.Helper()
	authz, err := NewAuthzMiddleware(AuthzDependencies{Verifier: v, Policy: p})
	require.NoError(t, err)
	rec := &recorder{}
	chain := Authenticate(AuthnDependencies{Verifier: v})(authz.Require(activity, roles...)(rec))
	return chain, rec
}

func TestNewAuthzMiddleware_RequiresDependencies(t *testing.T) {
	_, err := NewAuthzMiddleware(AuthzDependencies{Policy: &fakePolicy{}})
	assert.Error(t, err)
	_, err = NewAuthzMiddleware(AuthzDependencies{Verifier: &fakeVerifier{}})
	assert.Error(t, err)
}

func TestRequire_Allowed(t *testing.T) {
	policy := &fakePolicy{allowed: true}
	h, rec := newGuard(t, defaultVerifier(), policy, "company.create", "auditor")

	req := httptest.NewRequest(http.MethodPost, "/api/company-create", nil)
	req.Header.Set("Authorization", "Bearer user-jwt")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.True(t, rec.called)
	require.Len(t, policy.decisions, 1)
	assert.Equal(t, rbac.Decision{
		UserID:        "u-1",
		ProjectID:     "T1",
		Activity:      "company.create",
		RequiredRoles: []string{"auditor"},
		UserToken:     "user-jwt",
	}, policy.decisions[0])
}

func TestRequire_Denied(t *testing.T) {
	h, rec := newGuard(t, defaultVerifier(), &fakePolicy{allowed: false}, "company.create")

	req := httptest.NewRequest(http.MethodPost, "/api/company-create", nil)
	req.Header.Set("Authorization", "Bearer user-jwt")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "forbidden: company.create", errorBody(t, rr))
	assert.False(t, rec.called)
}

func TestRequire_PolicyUnavailable(t *testing.T) {
	policy := &fakePolicy{err: auth.ErrServiceCallFailed}
	h, rec := newGuard(t, defaultVerifier(), policy, "company.create")

	req := httptest.NewRequest(http.MethodPost, "/api/company-create", nil)
	req.Header.Set("Authorization", "Bearer user-jwt")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "RBAC service unavailable", errorBody(t, rr))
	assert.False(t, rec.called)
}

func TestRequire_ServiceOnlyCallerNeedsBearer(t *testing.T) {
	policy := &fakePolicy{allowed: true}
	h, rec := newGuard(t, defaultVerifier(), policy, "company.create")

	req := httptest.NewRequest(http.MethodPost, "/api/company-create", nil)
	req.Header.Set(auth.HeaderServiceToken, "svc-jwt")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "missing bearer token", errorBody(t, rr))
	assert.False(t, rec.called)
	assert.Empty(t, policy.decisions)
}

func TestRequire_MissingProject(t *testing.T) {
	v := defaultVerifier()
	v.users["no-tenant"] = &auth.UserIdentity{UserID: "u-2"}
	policy := &fakePolicy{allowed: true}
	h, rec := newGuard(t, v, policy, "company.create")

	req := httptest.NewRequest(http.MethodPost, "/api/company-create", strings.NewReader(`{"legal_name":"Acme"}`))
	req.Header.Set("Authorization", "Bearer no-tenant")
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "missing project/tenant context", errorBody(t, rr))
	assert.False(t, rec.called)
	assert.Empty(t, policy.decisions)
}

func TestRequire_UnresolvableUser(t *testing.T) {
	v := defaultVerifier()
	v.users["anon"] = &auth.UserIdentity{TenantID: "T9"}
	policy := &fakePolicy{allowed: true}
	h, _ := newGuard(t, v, policy, "company.create")

	req := httptest.NewRequest(http.MethodPost, "/api/company-create", nil)
	req.Header.Set("Authorization", "Bearer anon")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "cannot resolve user id", errorBody(t, rr))
	assert.Empty(t, policy.decisions)
}

func TestRequire_ReverifiesWithoutAttachedIdentity(t *testing.T) {
	v := defaultVerifier()
	policy := &fakePolicy{allowed: true}
	authz, err := NewAuthzMiddleware(AuthzDependencies{Verifier: v, Policy: policy})
	require.NoError(t, err)
	rec := &recorder{}
	h := authz.Require("engagement.create")(rec)

	req := httptest.NewRequest(http.MethodPost, "/api/engagement-create?tenant_id=T5", nil)
	req.Header.Set("Authorization", "Bearer user-jwt")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 1, v.userCalls)
	require.Len(t, policy.decisions, 1)
	assert.Equal(t, "u-1", policy.decisions[0].UserID)
	assert.Equal(t, "T5", policy.decisions[0].ProjectID)
}

func TestRequire_ReverifyFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "rejected", err: fakeErr(auth.ErrUnauthenticated, "user token invalid: 401"), wantStatus: http.StatusUnauthorized},
		{name: "unavailable", err: fakeErr(auth.ErrUpstreamUnavailable, "auth service error: 502"), wantStatus: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &fakeVerifier{userErr: tt.err}
			authz, err := NewAuthzMiddleware(AuthzDependencies{Verifier: v, Policy: &fakePolicy{allowed: true}})
			require.NoError(t, err)
			rec := &recorder{}
			h := authz.Require("engagement.create")(rec)

			req := httptest.NewRequest(http.MethodPost, "/api/engagement-create", nil)
			req.Header.Set("Authorization", "Bearer user-jwt")
			req.Header.Set(auth.HeaderTenantID, "T5")
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.False(t, rec.called)
		})
	}
}

func TestRequire_BodyContextIsRestored(t *testing.T) {
	v := defaultVerifier()
	v.users["no-tenant"] = &auth.UserIdentity{UserID: "u-2"}
	policy := &fakePolicy{allowed: true}
	h, rec := newGuard(t, v, policy, "engagement.context.create")

	payload := `{"engagement_id":"e-1","context":{"project_id":77}}`
	req := httptest.NewRequest(http.MethodPost, "/api/engagement-context", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer no-tenant")
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, payload, rec.body)
	require.Len(t, policy.decisions, 1)
	assert.Equal(t, "77", policy.decisions[0].ProjectID)
}

// tokenStub satisfies auth.TokenProvider without an identity service.
type tokenStub struct{}

func (tokenStub) Token(context.Context, bool) (auth.Secret, error) {
	return auth.Secret("svc-out"), nil
}

func TestRequire_EndToEndWithPolicyService(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		closed     bool
		wantStatus int
	}{
		{name: "allow", status: http.StatusOK, body: `{"data":{"allowed":true}}`, wantStatus: http.StatusNoContent},
		{name: "deny", status: http.StatusOK, body: `{"data":{"allowed":false}}`, wantStatus: http.StatusForbidden},
		{name: "policy error", status: http.StatusInternalServerError, body: `oops`, wantStatus: http.StatusForbidden},
		{name: "policy unreachable", closed: true, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]any
			var headers http.Header
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				headers = r.Header.Clone()
				raw, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(raw, &got)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			if tt.closed {
				srv.Close()
			} else {
				t.Cleanup(srv.Close)
			}

			caller := auth.NewServiceCaller(tokenStub{}, auth.StaticPeers{"RBAC": srv.URL})
			policy := rbac.NewClient(caller, "RBAC", 0, nil)

			v := defaultVerifier()
			v.users["user-jwt"] = &auth.UserIdentity{UserID: "u-1", TenantID: "42"}
			h, rec := newGuard(t, v, policy, "company.create")

			req := httptest.NewRequest(http.MethodPost, "/api/company-create", nil)
			req.Header.Set("Authorization", "Bearer user-jwt")
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantStatus == http.StatusNoContent, rec.called)
			if tt.closed {
				return
			}
			assert.Equal(t, "u-1", got["userId"])
			assert.Equal(t, "42", got["projectId"])
			assert.Equal(t, "company.create", got["activity"])
			assert.Equal(t, "svc-out", headers.Get(auth.HeaderServiceToken))
			assert.Equal(t, "user-jwt", headers.Get(auth.HeaderUserToken))
		})
	}
}
