package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/dukerupert/kiosk/internal/domain"
)

// AdminPINHeader carries the operator PIN on admin requests.
const AdminPINHeader = "X-Admin-Pin"

// RequireAdminPIN gates admin routes behind the configured PIN. A missing
// or wrong PIN gets a 401 without revealing which of the two it was.
func RequireAdminPIN(pin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(AdminPINHeader)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(pin)) != 1 {
				GetLogger(r.Context()).Info("admin PIN rejected", "path", r.URL.Path)
				respondUnauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// respondUnauthorized writes the JSON 401 body. Self-contained so this
// package does not import handler (handler imports middleware for
// GetLogger).
func respondUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    domain.EUNAUTHORIZED,
			"message": "Valid admin PIN required",
		},
	})
}
