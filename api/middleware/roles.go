package middleware

import (
	"net/http"

	"github.com/mariasandoval/storelocator-backend/api/responses"
	pkgauth "github.com/mariasandoval/storelocator-backend/pkg/auth"
	pkgerrors "github.com/mariasandoval/storelocator-backend/pkg/errors"
	"github.com/mariasandoval/storelocator-backend/pkg/logger"
	"github.com/mariasandoval/storelocator-backend/pkg/enums"
)

// RequireCapability rejects requests whose actor role does not grant the
// capability. It assumes Auth has already seeded the context.
func RequireCapability(capability pkgauth.Capability, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := enums.Role(RoleFromContext(r.Context()))
			if role == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			if !pkgauth.RoleHasCapability(role, capability) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
