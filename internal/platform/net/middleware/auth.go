package middleware

import (
	"net/http"

	pnet "curtaincall/internal/platform/net"
)

// AuthPort authenticates a request to a single operator principal
type AuthPort interface {
	// Parse returns the authenticated principal id or an error
	Parse(r *http.Request) (principal string, err error)
}

// Auth guards routes with the port. A nil port leaves them open
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			uid, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithUser(r.Context(), uid)))
		})
	}
}
