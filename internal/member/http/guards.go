package http

import (
	"net/http"

	"github.com/crewdesk/memberd/internal/member/domain"
	"github.com/crewdesk/memberd/internal/member/service"
	"github.com/crewdesk/memberd/pkg/httpx"
	"github.com/crewdesk/memberd/pkg/membersdk"
)

// RequirePermission gates a route on the permission resolver. The role
// claim from the token decides first; when the role's defaults don't cover
// the permission the resolver consults the user record for explicit
// grants. Fails closed in every other case.
func RequirePermission(perms *service.PermissionService, permission string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if role, err := domain.ParseRole(httpx.Role(ctx)); err == nil {
				if service.Resolve(domain.User{Role: role}, permission) {
					next.ServeHTTP(w, r)
					return
				}
			}

			if perms.HasPermission(ctx, httpx.TenantID(ctx), httpx.UserID(ctx), permission) {
				next.ServeHTTP(w, r)
				return
			}

			httpx.WriteJSON(w, http.StatusForbidden, membersdk.ErrorResponse{
				Error:            "forbidden",
				ErrorDescription: "Insufficient permissions",
			})
		})
	}
}

// RequireRole gates a route on the role hierarchy.
func RequireRole(required domain.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := domain.ParseRole(httpx.Role(r.Context()))
			if err != nil || !role.Satisfies(required) {
				httpx.WriteJSON(w, http.StatusForbidden, membersdk.ErrorResponse{
					Error:            "forbidden",
					ErrorDescription: "Insufficient role",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
