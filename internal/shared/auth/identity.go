package auth

import "context"

// Role is the access level of a caller.
type Role string

const (
	RoleIntern     Role = "intern"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// Identity is the authenticated caller resolved from a bearer token.
type Identity struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

// IsIntern reports whether read-side aggregation must be restricted to
// the caller's own visits.
func (i *Identity) IsIntern() bool {
	return i.Role == RoleIntern
}

// UserLookup resolves a token subject to a full identity. Implemented
// by the identity repository.
type UserLookup interface {
	FindIdentity(ctx context.Context, username string) (*Identity, error)
}

type contextKey string

const identityContextKey contextKey = "identity"

// WithIdentity stores the caller identity in the context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// GetIdentity extracts the caller identity from the request context.
func GetIdentity(ctx context.Context) *Identity {
	id, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok {
		return nil
	}
	return id
}
