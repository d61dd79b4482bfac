package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/auth"
)

func TestResolveProjectID(t *testing.T) {
	tests := []struct {
		name        string
		user        *auth.UserIdentity
		header      string
		query       string
		contentType string
		body        string
		want        string
		wantOK      bool
	}{
		{
			name:   "token tenant beats header",
			user:   &auth.UserIdentity{UserID: "u", TenantID: "T-token"},
			header: "T-header",
			want:   "T-token", wantOK: true,
		},
		{
			name:   "header when token has no tenant",
			user:   &auth.UserIdentity{UserID: "u"},
			header: "T-header",
			query:  "tenant_id=T-query",
			want:   "T-header", wantOK: true,
		},
		{
			name:  "query tenant_id before project_id",
			query: "project_id=P&tenant_id=T",
			want:  "T", wantOK: true,
		},
		{
			name:  "query project_id",
			query: "project_id=P",
			want:  "P", wantOK: true,
		},
		{
			name:        "top level body",
			contentType: "application/json",
			body:        `{"project_id":"P-body","context":{"tenant_id":"nested"}}`,
			want:        "P-body", wantOK: true,
		},
		{
			name:        "nested context body",
			contentType: "application/json",
			body:        `{"context":{"project_id":12345678901234567890}}`,
			want:        "12345678901234567890", wantOK: true,
		},
		{
			name:        "body ignored without json content type",
			contentType: "text/plain",
			body:        `{"tenant_id":"T"}`,
		},
		{
			name:        "malformed body",
			contentType: "application/json",
			body:        `{"tenant_id":`,
		},
		{
			name:        "empty string values are absent",
			contentType: "application/json",
			body:        `{"tenant_id":"","project_id":""}`,
		},
		{
			name:        "zero tenant falls through to project",
			contentType: "application/json",
			body:        `{"tenant_id":0,"project_id":"P9"}`,
			want:        "P9", wantOK: true,
		},
		{
			name:        "false tenant falls through to project",
			contentType: "application/json",
			body:        `{"tenant_id":false,"project_id":"P9"}`,
			want:        "P9", wantOK: true,
		},
		{
			name:        "zero and false only",
			contentType: "application/json",
			body:        `{"tenant_id":0.0,"project_id":false}`,
		},
		{
			name:        "true is a value",
			contentType: "application/json",
			body:        `{"tenant_id":true}`,
			want:        "true", wantOK: true,
		},
		{
			name: "nothing anywhere",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/api/x"
			if tt.query != "" {
				target += "?" + tt.query
			}
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(http.MethodPost, target, body)
			if tt.header != "" {
				req.Header.Set(auth.HeaderTenantID, tt.header)
			}
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			if tt.user != nil {
				req = req.WithContext(auth.SetUserContext(req.Context(), tt.user))
			}

			got, ok := ResolveProjectID(req)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)

			if tt.body != "" {
				rest, _ := io.ReadAll(req.Body)
				assert.Equal(t, tt.body, string(rest), "body must stay readable")
			}
		})
	}
}
