package auth

import "context"

// UserIdentity is the end user behind a bearer token, as reported by the
// identity service.
type UserIdentity struct {
	// UserID is the canonical user identifier, normalized to a string.
	UserID string
	// TenantID is the tenant (project) the token was issued for. Optional.
	TenantID string
	// Email is present when the identity service returns it.
	Email string
	// Claims is the full verification payload, nested or flat.
	Claims map[string]any
}

// ServiceIdentity is a peer service authenticated with a locally verified
// service token.
type ServiceIdentity struct {
	// ServiceID is the token subject.
	ServiceID string
	// Scopes lists the scopes granted to the calling service.
	Scopes []string
}

type userContextKey struct{}

// SetUserContext stores the verified user identity on the context.
func SetUserContext(ctx context.Context, user *UserIdentity) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUserFromContext retrieves the verified user identity from the context.
func GetUserFromContext(ctx context.Context) (*UserIdentity, bool) {
	user, ok := ctx.Value(userContextKey{}).(*UserIdentity)
	return user, ok && user != nil
}

type serviceContextKey struct{}

// SetServiceContext stores the verified calling service on the context.
func SetServiceContext(ctx context.Context, svc *ServiceIdentity) context.Context {
	return context.WithValue(ctx, serviceContextKey{}, svc)
}

// GetServiceFromContext retrieves the verified calling service from the context.
func GetServiceFromContext(ctx context.Context) (*ServiceIdentity, bool) {
	svc, ok := ctx.Value(serviceContextKey{}).(*ServiceIdentity)
	return svc, ok && svc != nil
}
