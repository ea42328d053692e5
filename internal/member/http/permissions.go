package http

import (
	"encoding/json"
	"net/http"

	"github.com/crewdesk/memberd/internal/member/service"
	"github.com/crewdesk/memberd/pkg/httpx"
	"github.com/crewdesk/memberd/pkg/membersdk"
)

type PermissionsHandler struct {
	PermissionService *service.PermissionService
}

// ServeHTTP godoc
//
//	@Summary		Check Permission
//	@Description	Resolve whether a user in the caller's tenant holds a named permission. The check
//	@Description	fails closed: an unknown user or permission name resolves to allowed=false.
//	@Tags			Permissions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.PermissionCheckRequest	true	"Check request"
//	@Success		200		{object}	membersdk.PermissionCheckResponse
//	@Failure		400		{object}	membersdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/permissions/check [post].
func (h *PermissionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req membersdk.PermissionCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}
	if req.Permission == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "permission is required",
		})
		return
	}

	// Default to the caller when no user is named.
	userID := req.UserID
	if userID == "" {
		userID = httpx.UserID(ctx)
	}

	allowed := h.PermissionService.HasPermission(ctx, httpx.TenantID(ctx), userID, req.Permission)
	httpx.WriteJSON(w, http.StatusOK, membersdk.PermissionCheckResponse{Allowed: allowed})
}
