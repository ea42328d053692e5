package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/crewdesk/memberd/internal/member/audit"
	"github.com/crewdesk/memberd/internal/member/service"
	"github.com/crewdesk/memberd/internal/member/store"
	"github.com/crewdesk/memberd/pkg/httpx"
	"github.com/crewdesk/memberd/pkg/jwtx"
	"github.com/crewdesk/memberd/pkg/slogx"

	_ "github.com/crewdesk/memberd/api/member" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store             store.Store
	InvitationService *service.InvitationService
	MembershipService *service.MembershipService
	PermissionService *service.PermissionService

	// Audit receives the domain events the services return. Defaults to
	// the structured-log recorder.
	Audit audit.Recorder
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		Audit:        audit.SlogRecorder{},
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerInvitations()
	r.registerTeams()
	r.registerPermissions()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Memberd Membership Service API
//	@version		0.1.0
//	@description	Invitation and team-membership lifecycle for the Crewdesk platform: invite agents
//	@description	into a tenant, redeem invitation tokens, manage teams, and resolve permissions.
//
//	@contact.name				Crewdesk Platform Team
//	@contact.url				https://github.com/crewdesk/memberd
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerInvitations() {
	h := &InvitationsHandler{InvitationService: r.InvitationService, Audit: r.Audit}

	// Admin-facing lifecycle operations - moderate rate limit by user
	managed := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			RequirePermission(r.PermissionService, "invitations:manage"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /v1/invitations", managed(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/invitations", managed(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("POST /v1/invitations/{id}/resend", managed(http.HandlerFunc(h.HandleResend)))
	r.Mux.Handle("DELETE /v1/invitations/{id}", managed(http.HandlerFunc(h.HandleCancel)))

	// Public token endpoints - strict rate limit by IP. The token is the
	// only credential; responses stay generic to prevent enumeration.
	accept := &AcceptHandler{InvitationService: r.InvitationService, Audit: r.Audit}
	r.Mux.Handle("GET /v1/invitations/validate",
		httpx.Chain(http.HandlerFunc(accept.HandleValidate),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/invitations/accept",
		httpx.Chain(http.HandlerFunc(accept.HandleAccept),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerTeams() {
	h := &TeamsHandler{MembershipService: r.MembershipService, Audit: r.Audit}

	teamAdmin := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			RequirePermission(r.PermissionService, "teams:manage"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}
	memberAdmin := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			RequirePermission(r.PermissionService, "members:manage"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}
	authed := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("POST /v1/teams", teamAdmin(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/teams", authed(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("DELETE /v1/teams/{id}", teamAdmin(http.HandlerFunc(h.HandleDelete)))

	r.Mux.Handle("POST /v1/teams/{id}/members", memberAdmin(http.HandlerFunc(h.HandleAddMember)))
	r.Mux.Handle("DELETE /v1/teams/{id}/members/{userId}", memberAdmin(http.HandlerFunc(h.HandleRemoveMember)))
	r.Mux.Handle("GET /v1/teams/{id}/members", authed(http.HandlerFunc(h.HandleListMembers)))
}

func (r *Router) registerPermissions() {
	h := &PermissionsHandler{PermissionService: r.PermissionService}

	r.Mux.Handle("POST /v1/permissions/check",
		httpx.Chain(h,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
