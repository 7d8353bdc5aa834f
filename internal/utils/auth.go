package utils

import "context"

const RoleAdmin = "admin"

// Principal is the signed-in caller resolved from a bearer token.
type Principal struct {
	UserID uint
	Email  string
	Role   string
}

type principalKey struct{}

// SetUserContext stores the caller for handlers further down the chain.
func SetUserContext(ctx context.Context, id uint, email string, role string) context.Context {
	return context.WithValue(ctx, principalKey{}, Principal{UserID: id, Email: email, Role: role})
}

// PrincipalFrom reports false for anonymous requests, including a zero user id.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok && p.UserID != 0
}

func GetUserIDFromContext(ctx context.Context) (uint, bool) {
	p, ok := PrincipalFrom(ctx)
	return p.UserID, ok
}

func GetUserEmailFromContext(ctx context.Context) string {
	p, _ := PrincipalFrom(ctx)
	return p.Email
}

func GetUserRoleFromContext(ctx context.Context) string {
	p, _ := PrincipalFrom(ctx)
	return p.Role
}

func IsAdmin(ctx context.Context) bool {
	return GetUserRoleFromContext(ctx) == RoleAdmin
}
