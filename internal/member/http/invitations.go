package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crewdesk/memberd/internal/member/audit"
	"github.com/crewdesk/memberd/internal/member/domain"
	"github.com/crewdesk/memberd/internal/member/service"
	"github.com/crewdesk/memberd/pkg/httpx"
	"github.com/crewdesk/memberd/pkg/membersdk"
	"github.com/crewdesk/memberd/pkg/slogx"
)

type InvitationsHandler struct {
	InvitationService *service.InvitationService
	Audit             audit.Recorder
}

// HandleCreate godoc
//
//	@Summary		Create Invitation
//	@Description	Invite an email address into the caller's tenant. The response includes the raw
//	@Description	invitation token exactly once; it is not retrievable afterwards.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.CreateInvitationRequest	true	"Invitation request"
//	@Success		201		{object}	membersdk.Invitation				"created invitation including token"
//	@Failure		400		{object}	membersdk.ErrorResponse				"error, error_description"
//	@Failure		409		{object}	membersdk.ErrorResponse				"error, error_description"
//	@Failure		500		{object}	membersdk.ErrorResponse				"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/invitations [post].
func (h *InvitationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req membersdk.CreateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}
	if req.Email == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "email is required",
		})
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid role",
		})
		return
	}

	inv, events, err := h.InvitationService.Invite(ctx, service.InviteParams{
		TenantID:      httpx.TenantID(ctx),
		InviterID:     httpx.UserID(ctx),
		Email:         req.Email,
		Role:          role,
		CustomMessage: req.CustomMessage,
		TeamIDs:       req.TeamIDs,
		Permissions:   req.Permissions,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "Invalid invitation parameters",
			})
		case errors.Is(err, service.ErrRoleNotInvitable):
			httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "This role cannot be assigned through an invitation",
			})
		case errors.Is(err, service.ErrUserAlreadyExists):
			httpx.WriteJSON(w, http.StatusConflict, membersdk.ErrorResponse{
				Error:            "conflict",
				ErrorDescription: "A user with this email already exists",
			})
		case errors.Is(err, service.ErrInvitationPending):
			httpx.WriteJSON(w, http.StatusConflict, membersdk.ErrorResponse{
				Error:            "conflict",
				ErrorDescription: "A pending invitation already exists for this email",
			})
		default:
			log.Error("failed to create invitation", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, membersdk.ErrorResponse{
				Error:            "server_error",
				ErrorDescription: "Failed to create invitation",
			})
		}
		return
	}

	h.Audit.Record(ctx, events...)
	httpx.WriteJSON(w, http.StatusCreated, invitationView(inv, true))
}

// HandleList godoc
//
//	@Summary		List Invitations
//	@Description	List all invitations for the caller's tenant, newest first. Tokens are omitted.
//	@Tags			Invitations
//	@Produce		json
//	@Success		200	{object}	membersdk.InvitationListResponse
//	@Failure		500	{object}	membersdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/invitations [get].
func (h *InvitationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	invs, err := h.InvitationService.List(ctx, httpx.TenantID(ctx))
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list invitations", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, membersdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to list invitations",
		})
		return
	}

	out := membersdk.InvitationListResponse{Invitations: make([]membersdk.Invitation, 0, len(invs))}
	for _, inv := range invs {
		out.Invitations = append(out.Invitations, invitationView(inv, false))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleResend godoc
//
//	@Summary		Resend Invitation
//	@Description	Extend a pending invitation's expiry and re-deliver the email. The token is not
//	@Description	rotated, so any previously delivered link keeps working.
//	@Tags			Invitations
//	@Produce		json
//	@Param			id	path		string					true	"Invitation ID"
//	@Success		200	{object}	membersdk.Invitation	"updated invitation including token"
//	@Failure		404	{object}	membersdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	membersdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/invitations/{id}/resend [post].
func (h *InvitationsHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	inv, events, err := h.InvitationService.Resend(ctx, httpx.TenantID(ctx), httpx.UserID(ctx), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrInvitationNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, membersdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "No pending invitation with this id",
			})
			return
		}
		slogx.FromContext(ctx).Error("failed to resend invitation", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, membersdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to resend invitation",
		})
		return
	}

	h.Audit.Record(ctx, events...)
	httpx.WriteJSON(w, http.StatusOK, invitationView(inv, true))
}

// HandleCancel godoc
//
//	@Summary		Cancel Invitation
//	@Description	Cancel a pending invitation. Cancelling an already cancelled, accepted, or expired
//	@Description	invitation returns 404: the record is no longer pending.
//	@Tags			Invitations
//	@Produce		json
//	@Param			id	path	string	true	"Invitation ID"
//	@Success		204	"invitation cancelled"
//	@Failure		404	{object}	membersdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	membersdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/invitations/{id} [delete].
func (h *InvitationsHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events, err := h.InvitationService.Cancel(ctx, httpx.TenantID(ctx), httpx.UserID(ctx), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrInvitationNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, membersdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "No pending invitation with this id",
			})
			return
		}
		slogx.FromContext(ctx).Error("failed to cancel invitation", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, membersdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to cancel invitation",
		})
		return
	}

	h.Audit.Record(ctx, events...)
	w.WriteHeader(http.StatusNoContent)
}
