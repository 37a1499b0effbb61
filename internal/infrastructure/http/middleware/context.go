package middleware

import (
	"context"

	"github.com/Gautam2117/cliplingua/internal/domain"
)

type contextKey string

const (
	accountContextKey contextKey = "account"
	orgContextKey     contextKey = "org"
)

// WithAccount injects the authenticated account into the context.
func WithAccount(ctx context.Context, account *domain.Account) context.Context {
	return context.WithValue(ctx, accountContextKey, account)
}

// AccountFromContext returns the authenticated account, or nil.
func AccountFromContext(ctx context.Context) *domain.Account {
	v := ctx.Value(accountContextKey)
	if v == nil {
		return nil
	}
	a, _ := v.(*domain.Account)
	return a
}

// WithOrg injects the key-resolved organization into the context.
func WithOrg(ctx context.Context, org *domain.Organization) context.Context {
	return context.WithValue(ctx, orgContextKey, org)
}

// OrgFromContext returns the key-resolved organization, or nil.
func OrgFromContext(ctx context.Context) *domain.Organization {
	v := ctx.Value(orgContextKey)
	if v == nil {
		return nil
	}
	o, _ := v.(*domain.Organization)
	return o
}
