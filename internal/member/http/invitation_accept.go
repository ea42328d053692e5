package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crewdesk/memberd/internal/member/audit"
	"github.com/crewdesk/memberd/internal/member/service"
	"github.com/crewdesk/memberd/pkg/httpx"
	"github.com/crewdesk/memberd/pkg/membersdk"
	"github.com/crewdesk/memberd/pkg/slogx"
)

// AcceptHandler serves the unauthenticated token endpoints. The token is
// the credential. Whatever goes wrong, the response body says only
// "invalid or expired" so callers cannot enumerate invited emails.
type AcceptHandler struct {
	InvitationService *service.InvitationService
	Audit             audit.Recorder
}

// HandleValidate godoc
//
//	@Summary		Validate Invitation Token
//	@Description	Read-only check of an invitation token, for the signup page to render the invite
//	@Description	before the invitee fills in their details.
//	@Tags			Invitations
//	@Produce		json
//	@Param			token	query		string	true	"Invitation token"
//	@Success		200		{object}	membersdk.ValidateInvitationResponse
//	@Failure		500		{object}	membersdk.ErrorResponse	"error, error_description"
//	@Router			/v1/invitations/validate [get].
func (h *AcceptHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	inv, err := h.InvitationService.GetByToken(ctx, r.URL.Query().Get("token"))
	if err != nil {
		if errors.Is(err, service.ErrInvitationNotFound) {
			httpx.WriteJSON(w, http.StatusOK, membersdk.ValidateInvitationResponse{
				Valid:   false,
				Message: "Invalid or expired invitation token",
			})
			return
		}
		slogx.FromContext(ctx).Error("failed to validate invitation", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, membersdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to validate invitation",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, membersdk.ValidateInvitationResponse{
		Valid:     true,
		Email:     inv.Email,
		Role:      inv.Role.String(),
		ExpiresAt: inv.ExpiresAt,
	})
}

// HandleAccept godoc
//
//	@Summary		Accept Invitation
//	@Description	Redeem an invitation token: creates the user, marks the invitation accepted, and
//	@Description	joins any teams the inviter selected. The outcome is a structured result; a spent
//	@Description	or unknown token and an already-registered email are reported in the body with
//	@Description	success=false rather than as an HTTP error.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.AcceptInvitationRequest	true	"Accept request"
//	@Success		200		{object}	membersdk.AcceptInvitationResponse
//	@Failure		400		{object}	membersdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	membersdk.ErrorResponse	"error, error_description"
//	@Router			/v1/invitations/accept [post].
func (h *AcceptHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req membersdk.AcceptInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}
	if req.Token == "" || req.Password == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "token and password are required",
		})
		return
	}

	res, events, err := h.InvitationService.Accept(ctx, service.AcceptParams{
		Token:     req.Token,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to accept invitation", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, membersdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to accept invitation",
		})
		return
	}

	h.Audit.Record(ctx, events...)
	out := membersdk.AcceptInvitationResponse{
		Success: res.Success,
		Message: res.Message,
	}
	if res.User != nil {
		u := userView(*res.User)
		out.User = &u
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
