package auth

import (
	"log"
	"net/http"
	"strings"
)

// Middleware resolves an optional bearer token into a caller Identity on the
// request context. Requests without a token, or with an unknown one, pass
// through anonymously.
func Middleware(store *TokenStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if raw, ok := strings.CutPrefix(header, "Bearer "); ok && raw != "" {
				identity, err := store.Verify(r.Context(), raw)
				if err != nil {
					log.Printf("auth: verifying token: %v", err)
				} else if identity != nil {
					r = r.WithContext(WithIdentity(r.Context(), *identity))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
