package common

import "context"

type contextKey string

const adminContextKey contextKey = "adminPrincipal"

// AdminPrincipal represents the JWT-derived operator identity.
type AdminPrincipal struct {
	Subject string `json:"sub"`
	Issuer  string `json:"iss,omitempty"`
	Name    string `json:"name,omitempty"`
}

// ContextWithAdmin stores the authenticated operator into context.
func ContextWithAdmin(ctx context.Context, admin AdminPrincipal) context.Context {
	return context.WithValue(ctx, adminContextKey, admin)
}

// AdminFromContext extracts the authenticated operator from context.
func AdminFromContext(ctx context.Context) (AdminPrincipal, bool) {
	admin, ok := ctx.Value(adminContextKey).(AdminPrincipal)
	return admin, ok
}
