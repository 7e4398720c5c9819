// Package auth holds the request principal, the authorization policy applied
// by services, JWT handling and password hashing.
package auth

import (
	"context"

	apperrors "tournament-backend/internal/errors"
	"tournament-backend/internal/model"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID       int64
	Username string
	Role     model.Role
}

func (p Principal) IsAdmin() bool { return p.Role == model.RoleAdmin }

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// System returns an admin context for seeding and maintenance tasks.
func System(ctx context.Context) context.Context {
	return WithPrincipal(ctx, Principal{Username: "system", Role: model.RoleAdmin})
}

// Rule decides whether a principal may perform an operation.
type Rule func(p Principal) bool

var (
	Authenticated Rule = func(Principal) bool { return true }
	AnyRole       Rule = func(p Principal) bool { return p.Role == model.RoleUser || p.Role == model.RoleAdmin }
	AdminOnly     Rule = func(p Principal) bool { return p.IsAdmin() }
)

func SelfOrAdmin(userID int64) Rule {
	return func(p Principal) bool { return p.IsAdmin() || (p.ID != 0 && p.ID == userID) }
}

func SelfOrAdminByName(username string) Rule {
	return func(p Principal) bool { return p.IsAdmin() || p.Username == username }
}

// Require checks the principal in ctx against rule.
func Require(ctx context.Context, rule Rule) (Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return Principal{}, apperrors.New(apperrors.CodeAuthenticationFailed, "Authentication required")
	}
	if !rule(p) {
		return p, apperrors.ErrAccessDenied
	}
	return p, nil
}

// ActorID returns the principal's user id, nil for anonymous or system callers.
func ActorID(ctx context.Context) *int64 {
	p, ok := FromContext(ctx)
	if !ok || p.ID == 0 {
		return nil
	}
	id := p.ID
	return &id
}
