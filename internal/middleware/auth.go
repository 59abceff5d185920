package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Imohh/portfolio-backend/internal/auth"
	"github.com/Imohh/portfolio-backend/internal/models"
)

// AdminFinder resolves the admin record a verified token points at.
type AdminFinder interface {
	GetAdminByID(ctx context.Context, id string) (*models.Admin, error)
}

type contextKey string

const adminContextKey contextKey = "admin"

// AdminAuth gates protected routes on a bearer session token. On success the
// resolved admin (password hash stripped) is attached to the request context.
func AdminAuth(store AdminFinder, secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parts := strings.Fields(r.Header.Get("Authorization"))
			if len(parts) < 2 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			adminID, err := auth.AdminIDFromToken(parts[1], secret)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			admin, err := store.GetAdminByID(r.Context(), adminID)
			if err != nil || admin == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			admin.PasswordHash = ""

			ctx := context.WithValue(r.Context(), adminContextKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminFrom returns the admin attached by AdminAuth, if any.
func AdminFrom(ctx context.Context) (*models.Admin, bool) {
	admin, ok := ctx.Value(adminContextKey).(*models.Admin)
	return admin, ok && admin != nil
}
