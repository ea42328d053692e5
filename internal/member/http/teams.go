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

type TeamsHandler struct {
	MembershipService *service.MembershipService
	Audit             audit.Recorder
}

// HandleCreate godoc
//
//	@Summary		Create Team
//	@Description	Create a team in the caller's tenant. When is_default is set, the previous default
//	@Description	team loses the flag in the same transaction.
//	@Tags			Teams
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.CreateTeamRequest	true	"Team request"
//	@Success		201		{object}	membersdk.Team
//	@Failure		400		{object}	membersdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	membersdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	membersdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/teams [post].
func (h *TeamsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req membersdk.CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}

	team, events, err := h.MembershipService.CreateTeam(ctx, service.CreateTeamParams{
		TenantID:  httpx.TenantID(ctx),
		ActorID:   httpx.UserID(ctx),
		Name:      req.Name,
		Color:     req.Color,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "name is required",
			})
		case errors.Is(err, service.ErrTeamNameTaken):
			httpx.WriteJSON(w, http.StatusConflict, membersdk.ErrorResponse{
				Error:            "conflict",
				ErrorDescription: "A team with this name already exists",
			})
		default:
			slogx.FromContext(ctx).Error("failed to create team", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, membersdk.ErrorResponse{
				Error:            "server_error",
				ErrorDescription: "Failed to create team",
			})
		}
		return
	}

	h.Audit.Record(ctx, events...)
	httpx.WriteJSON(w, http.StatusCreated, teamView(team))
}

// HandleList godoc
//
//	@Summary		List Teams
//	@Description	List all teams in the caller's tenant, newest first.
//	@Tags			Teams
//	@Produce		json
//	@Success		200	{object}	membersdk.TeamListResponse
//	@Failure		500	{object}	membersdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/teams [get].
func (h *TeamsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	teams, err := h.MembershipService.ListTeams(ctx, httpx.TenantID(ctx))
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list teams", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, membersdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to list teams",
		})
		return
	}

	out := membersdk.TeamListResponse{Teams: make([]membersdk.Team, 0, len(teams))}
	for _, t := range teams {
		out.Teams = append(out.Teams, teamView(t))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleDelete godoc
//
//	@Summary		Delete Team
//	@Description	Delete a team. The team must not be the tenant default and must have no members;
//	@Description	the default check runs first.
//	@Tags			Teams
//	@Produce		json
//	@Param			id	path	string	true	"Team ID"
//	@Success		204	"team deleted"
//	@Failure		404	{object}	membersdk.ErrorResponse	"error, error_description"
//	@Failure		409	{object}	membersdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	membersdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/teams/{id} [delete].
func (h *TeamsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events, err := h.MembershipService.DeleteTeam(ctx, httpx.TenantID(ctx), httpx.UserID(ctx), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTeamNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, membersdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "Team not found",
			})
		case errors.Is(err, service.ErrTeamIsDefault):
			httpx.WriteJSON(w, http.StatusConflict, membersdk.ErrorResponse{
				Error:            "conflict",
				ErrorDescription: "The default team cannot be deleted",
			})
		case errors.Is(err, service.ErrTeamNotEmpty):
			httpx.WriteJSON(w, http.StatusConflict, membersdk.ErrorResponse{
				Error:            "conflict",
				ErrorDescription: "The team still has members",
			})
		default:
			slogx.FromContext(ctx).Error("failed to delete team", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, membersdk.ErrorResponse{
				Error:            "server_error",
				ErrorDescription: "Failed to delete team",
			})
		}
		return
	}

	h.Audit.Record(ctx, events...)
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddMember godoc
//
//	@Summary		Add Team Member
//	@Description	Add a user to a team. A user appears at most once per team.
//	@Tags			Teams
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Team ID"
//	@Param			request	body		membersdk.AddMemberRequest	true	"Member request"
//	@Success		201		{object}	membersdk.TeamMember
//	@Failure		400		{object}	membersdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	membersdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	membersdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	membersdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/teams/{id}/members [post].
func (h *TeamsHandler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req membersdk.AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}
	if req.UserID == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "user_id is required",
		})
		return
	}

	m, events, err := h.MembershipService.AddMember(ctx, service.AddMemberParams{
		TenantID: httpx.TenantID(ctx),
		ActorID:  httpx.UserID(ctx),
		TeamID:   r.PathValue("id"),
		UserID:   req.UserID,
		Role:     domain.TeamRole(req.Role),
		Skills:   req.Skills,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			httpx.WriteJSON(w, http.StatusBadRequest, membersdk.ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "Invalid member parameters",
			})
		case errors.Is(err, service.ErrTeamNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, membersdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "Team not found",
			})
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, membersdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "User not found",
			})
		case errors.Is(err, service.ErrMemberAlreadyExists):
			httpx.WriteJSON(w, http.StatusConflict, membersdk.ErrorResponse{
				Error:            "conflict",
				ErrorDescription: "User is already a member of this team",
			})
		default:
			slogx.FromContext(ctx).Error("failed to add team member", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, membersdk.ErrorResponse{
				Error:            "server_error",
				ErrorDescription: "Failed to add team member",
			})
		}
		return
	}

	h.Audit.Record(ctx, events...)
	httpx.WriteJSON(w, http.StatusCreated, memberView(m))
}

// HandleRemoveMember godoc
//
//	@Summary		Remove Team Member
//	@Description	Remove a user from a team.
//	@Tags			Teams
//	@Produce		json
//	@Param			id		path	string	true	"Team ID"
//	@Param			userId	path	string	true	"User ID"
//	@Success		204		"member removed"
//	@Failure		404		{object}	membersdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	membersdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/teams/{id}/members/{userId} [delete].
func (h *TeamsHandler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events, err := h.MembershipService.RemoveMember(ctx,
		httpx.TenantID(ctx), httpx.UserID(ctx), r.PathValue("id"), r.PathValue("userId"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTeamNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, membersdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "Team not found",
			})
		case errors.Is(err, service.ErrMemberNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, membersdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "Team member not found",
			})
		default:
			slogx.FromContext(ctx).Error("failed to remove team member", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, membersdk.ErrorResponse{
				Error:            "server_error",
				ErrorDescription: "Failed to remove team member",
			})
		}
		return
	}

	h.Audit.Record(ctx, events...)
	w.WriteHeader(http.StatusNoContent)
}

// HandleListMembers godoc
//
//	@Summary		List Team Members
//	@Description	List the members of a team ordered by join time.
//	@Tags			Teams
//	@Produce		json
//	@Param			id	path		string	true	"Team ID"
//	@Success		200	{object}	membersdk.MemberListResponse
//	@Failure		404	{object}	membersdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	membersdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/teams/{id}/members [get].
func (h *TeamsHandler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	members, err := h.MembershipService.ListMembers(ctx, httpx.TenantID(ctx), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrTeamNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, membersdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "Team not found",
			})
			return
		}
		slogx.FromContext(ctx).Error("failed to list team members", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, membersdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to list team members",
		})
		return
	}

	out := membersdk.MemberListResponse{Members: make([]membersdk.TeamMember, 0, len(members))}
	for _, m := range members {
		out.Members = append(out.Members, memberView(m))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
