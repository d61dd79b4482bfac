package middleware

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/auth"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/httputil"
)

// contextKeys are the body and query fields that carry the project, in order.
var contextKeys = []string{"tenant_id", "project_id"}

// ResolveProjectID finds the project (tenant) an authorization decision is
// scoped to. The first source with a value wins:
//
//  1. tenant of the verified user token
//  2. X-Tenant-Id header
//  3. tenant_id, then project_id query parameter
//  4. JSON body: top-level tenant_id/project_id, then context.tenant_id/context.project_id
//
// The body is only inspected for application/json requests and is left
// readable for the handler. A malformed body counts as no value.
func ResolveProjectID(r *http.Request) (string, bool) {
	if user, ok := auth.GetUserFromContext(r.Context()); ok && user.TenantID != "" {
		return user.TenantID, true
	}

	if v := r.Header.Get(auth.HeaderTenantID); v != "" {
		return v, true
	}

	q := r.URL.Query()
	for _, key := range contextKeys {
		if v := q.Get(key); v != "" {
			return v, true
		}
	}

	return projectFromBody(r)
}

func projectFromBody(r *http.Request) (string, bool) {
	if !isJSON(r) {
		return "", false
	}
	raw, err := httputil.ReadBody(r)
	if err != nil || len(raw) == 0 {
		return "", false
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return "", false
	}

	if v, ok := firstValue(body); ok {
		return v, true
	}
	if nested, ok := body["context"].(map[string]any); ok {
		return firstValue(nested)
	}
	return "", false
}

// firstValue returns the first context key whose value is set. Zero numbers
// and false count as unset, so a later key can still supply the project.
func firstValue(m map[string]any) (string, bool) {
	for _, key := range contextKeys {
		if isZeroValue(m[key]) {
			continue
		}
		if v, ok := auth.StringValue(m[key]); ok {
			return v, true
		}
	}
	return "", false
}

func isZeroValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	default:
		return false
	}
}

func isJSON(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}
