package middleware

import (
	"context"
	"net/http"

	"github.com/eldenfruit/storefront/pkg/logger"
)

// CustomerResolver returns the signed-in customer id, or "" for guests.
type CustomerResolver func(ctx context.Context) string

// Customer stores the signed-in customer id in the request context so logs
// and published events can carry it. Guests pass through untouched.
func Customer(resolve CustomerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if resolve == nil {
				next.ServeHTTP(w, r)
				return
			}
			if id := resolve(r.Context()); id != "" {
				r = r.WithContext(logger.WithCustomerID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}
