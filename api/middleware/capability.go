package middleware

import (
	"net/http"

	"github.com/quayside/quayside-backend/api/responses"
	"github.com/quayside/quayside-backend/pkg/capability"
	"github.com/quayside/quayside-backend/pkg/enums"
	pkgerrors "github.com/quayside/quayside-backend/pkg/errors"
	"github.com/quayside/quayside-backend/pkg/logger"
)

// RequireCapability rejects requests whose actor role does not carry the capability.
func RequireCapability(cap capability.Capability, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := enums.StaffRole(RoleFromContext(r.Context()))
			if !capability.Allows(role, cap) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "capability required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
