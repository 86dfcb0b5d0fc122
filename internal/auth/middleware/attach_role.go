package auth

import (
	"errors"
	"net/http"

	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/rbac"
)

// AttachRoleFromStore replaces the claimed role with the stored one, so a
// demoted or deleted user loses access before the token expires.
// allowClaimFallback=true in dev/offline; false in prod.
func AttachRoleFromStore(users UserFinder, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := SubjectFromContext(ctx)
			claimRole := rbac.RoleFromContext(ctx) // set by JWTMiddleware

			u, err := users.FindUser(ctx, sub)
			switch {
			case err == nil && u.Role != "":
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, u.Role)))

			case errors.Is(err, quiz.ErrNotFound):
				http.Error(w, "forbidden", http.StatusForbidden)

			default:
				// store unavailable: lenient in dev, deny in prod
				if allowClaimFallback && claimRole != "" {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}
