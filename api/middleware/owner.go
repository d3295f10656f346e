package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/microshop/microshop-backend/pkg/logger"
)

const ownerHeader = "X-Owner-Id"

type ownerCtxKey struct{}

// Owner resolves the cart owner from the X-Owner-Id header, falling back
// to the configured default for clients that do not identify themselves.
func Owner(defaultOwner string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := strings.TrimSpace(r.Header.Get(ownerHeader))
			if owner == "" {
				owner = defaultOwner
			}

			ctx := context.WithValue(r.Context(), ownerCtxKey{}, owner)
			if logg != nil {
				ctx = logg.WithOwnerID(ctx, owner)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithOwner stores an owner id on the context the way Owner does.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerCtxKey{}, ownerID)
}

// OwnerFromContext returns the owner resolved by the Owner middleware.
func OwnerFromContext(ctx context.Context) string {
	if owner, ok := ctx.Value(ownerCtxKey{}).(string); ok {
		return owner
	}
	return ""
}
