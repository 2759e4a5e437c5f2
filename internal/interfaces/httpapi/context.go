package httpapi

import (
	"context"
	"fmt"

	"github.com/riskibarqy/esport-notifier/internal/domain/user"
	"github.com/riskibarqy/esport-notifier/internal/usecase"
)

type principalKey struct{}

func contextWithPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func principalFrom(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(user.Principal)
	return p, ok && p.UserID != ""
}

// requirePrincipal is for routes mounted behind RequireAuth.
func requirePrincipal(ctx context.Context) (user.Principal, error) {
	p, ok := principalFrom(ctx)
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: no authenticated user on request", usecase.ErrUnauthorized)
	}
	return p, nil
}
