package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/auth"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/rbac"
)

type fakeVerifier struct {
	mu         sync.Mutex
	users      map[string]*auth.UserIdentity
	services   map[string]*auth.ServiceIdentity
	userErr    error
	serviceErr error
	userCalls  int
}

func (f *fakeVerifier) VerifyUserToken(_ context.Context, token string) (*auth.UserIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	if f.userErr != nil {
		return nil, f.userErr
	}
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, fakeErr(auth.ErrUnauthenticated, "user token invalid: 401")
}

func (f *fakeVerifier) VerifyServiceToken(_ context.Context, token string) (*auth.ServiceIdentity, error) {
	if f.serviceErr != nil {
		return nil, f.serviceErr
	}
	if s, ok := f.services[token]; ok {
		return s, nil
	}
	return nil, fakeErr(auth.ErrUnauthenticated, "invalid service token")
}

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string        { return e.msg }
func (e *kindError) Is(target error) bool { return target == e.kind }

func fakeErr(kind error, msg string) error { return &kindError{kind: kind, msg: msg} }

type fakePolicy struct {
	mu        sync.Mutex
	allowed   bool
	err       error
	decisions []rbac.Decision
}

func (f *fakePolicy) Check(_ context.Context, d rbac.Decision) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions = append(f.decisions, d)
	return f.allowed, f.err
}

// recorder is a terminal handler that remembers what reached it.
type recorder struct {
	called  bool
	user    *auth.UserIdentity
	service *auth.ServiceIdentity
	body    string
}

func (rec *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec.called = true
	rec.user, _ = auth.GetUserFromContext(r.Context())
	rec.service, _ = auth.GetServiceFromContext(r.Context())
	if r.Body != nil {
		raw, _ := io.ReadAll(r.Body)
		rec.body = string(raw)
	}
	w.WriteHeader(http.StatusNoContent)
}

func errorBody(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error
}
