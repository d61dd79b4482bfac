package auth

import (
	"encoding/json"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// identityFields mirrors every key the identity service has been seen to use
// for the acting user and tenant.
type identityFields struct {
	UID        string `mapstructure:"u_id"`
	UserID     string `mapstructure:"user_id"`
	AuthUserID string `mapstructure:"auth_user_id"`
	ShortUID   string `mapstructure:"uid"`
	Subject    string `mapstructure:"sub"`
	TenantID   string `mapstructure:"tenant_id"`
	Email      string `mapstructure:"email"`
}

// userID applies the resolution order u_id, user_id, auth_user_id, uid, sub.
func (f identityFields) userID() string {
	for _, candidate := range []string{f.UID, f.UserID, f.AuthUserID, f.ShortUID, f.Subject} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

// ExtractIdentity normalizes an identity payload into (userID, tenantID).
//
// The payload is either nested, {"user": {...}}, or flat with the same keys at
// the top level. A non-empty nested user object decides the user id on its
// own; the tenant id prefers the nested value and falls back to the top level.
// Empty strings are returned when nothing is present.
func ExtractIdentity(payload map[string]any) (userID, tenantID string) {
	ident := ExtractUserIdentity(payload)
	return ident.UserID, ident.TenantID
}

// ExtractUserIdentity is ExtractIdentity returning the full UserIdentity,
// including email and the original claims.
func ExtractUserIdentity(payload map[string]any) *UserIdentity {
	if len(payload) == 0 {
		return &UserIdentity{Claims: payload}
	}

	top := decodeIdentityFields(payload)

	nestedMap, _ := payload["user"].(map[string]any)
	if len(nestedMap) == 0 {
		return &UserIdentity{
			UserID:   top.userID(),
			TenantID: top.TenantID,
			Email:    top.Email,
			Claims:   payload,
		}
	}

	nested := decodeIdentityFields(nestedMap)
	ident := &UserIdentity{
		UserID:   nested.userID(),
		TenantID: nested.TenantID,
		Email:    nested.Email,
		Claims:   payload,
	}
	if ident.TenantID == "" {
		ident.TenantID = top.TenantID
	}
	if ident.Email == "" {
		ident.Email = top.Email
	}
	return ident
}

func decodeIdentityFields(input map[string]any) identityFields {
	var out identityFields
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.DecodeHookFuncType(scalarToString),
		Result:     &out,
	})
	if err != nil {
		return out
	}
	// Fields with unusable shapes decode to "" through the hook, so a decode
	// error only leaves the remaining fields unset.
	_ = decoder.Decode(input)
	return out
}

// scalarToString renders JSON scalars as the string form of the identifier.
// Objects and arrays are treated as absent.
func scalarToString(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", nil
	}
}

// StringValue renders a decoded JSON scalar the same way identifiers are
// normalized. It reports false for nil, empty strings, objects and arrays.
func StringValue(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	out, _ := scalarToString(nil, reflect.TypeOf(""), v)
	s, _ := out.(string)
	return s, s != ""
}
