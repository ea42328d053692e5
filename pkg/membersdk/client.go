// Package membersdk is a thin client for the membership service. It is
// used by the end-to-end tests and by sibling services that need to drive
// invitations programmatically.
package membersdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a memberd instance. Token is the bearer token of the
// acting user; endpoints that are public (accept, validate, health) work
// with an empty token.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Token: token,
	}
}

// APIError is returned when the service responds with a non-2xx status.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("memberd: %d %s: %s", e.StatusCode, e.Code, e.Description)
}

func (c *Client) CreateInvitation(ctx context.Context, req CreateInvitationRequest) (Invitation, error) {
	var out Invitation
	err := c.do(ctx, http.MethodPost, "/v1/invitations", req, &out, http.StatusCreated)
	return out, err
}

func (c *Client) ListInvitations(ctx context.Context) ([]Invitation, error) {
	var out InvitationListResponse
	err := c.do(ctx, http.MethodGet, "/v1/invitations", nil, &out, http.StatusOK)
	return out.Invitations, err
}

func (c *Client) ResendInvitation(ctx context.Context, id string) (Invitation, error) {
	var out Invitation
	err := c.do(ctx, http.MethodPost, "/v1/invitations/"+url.PathEscape(id)+"/resend", nil, &out, http.StatusOK)
	return out, err
}

func (c *Client) CancelInvitation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/invitations/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

func (c *Client) ValidateInvitation(ctx context.Context, token string) (ValidateInvitationResponse, error) {
	var out ValidateInvitationResponse
	err := c.do(ctx, http.MethodGet, "/v1/invitations/validate?token="+url.QueryEscape(token), nil, &out, http.StatusOK)
	return out, err
}

func (c *Client) AcceptInvitation(ctx context.Context, req AcceptInvitationRequest) (AcceptInvitationResponse, error) {
	var out AcceptInvitationResponse
	err := c.do(ctx, http.MethodPost, "/v1/invitations/accept", req, &out, http.StatusOK)
	return out, err
}

func (c *Client) CreateTeam(ctx context.Context, req CreateTeamRequest) (Team, error) {
	var out Team
	err := c.do(ctx, http.MethodPost, "/v1/teams", req, &out, http.StatusCreated)
	return out, err
}

func (c *Client) ListTeams(ctx context.Context) ([]Team, error) {
	var out TeamListResponse
	err := c.do(ctx, http.MethodGet, "/v1/teams", nil, &out, http.StatusOK)
	return out.Teams, err
}

func (c *Client) DeleteTeam(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/teams/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

func (c *Client) AddMember(ctx context.Context, teamID string, req AddMemberRequest) (TeamMember, error) {
	var out TeamMember
	err := c.do(ctx, http.MethodPost, "/v1/teams/"+url.PathEscape(teamID)+"/members", req, &out, http.StatusCreated)
	return out, err
}

func (c *Client) RemoveMember(ctx context.Context, teamID, userID string) error {
	return c.do(ctx, http.MethodDelete,
		"/v1/teams/"+url.PathEscape(teamID)+"/members/"+url.PathEscape(userID),
		nil, nil, http.StatusNoContent)
}

func (c *Client) ListMembers(ctx context.Context, teamID string) ([]TeamMember, error) {
	var out MemberListResponse
	err := c.do(ctx, http.MethodGet, "/v1/teams/"+url.PathEscape(teamID)+"/members", nil, &out, http.StatusOK)
	return out.Members, err
}

func (c *Client) CheckPermission(ctx context.Context, req PermissionCheckRequest) (bool, error) {
	var out PermissionCheckResponse
	err := c.do(ctx, http.MethodPost, "/v1/permissions/check", req, &out, http.StatusOK)
	return out.Allowed, err
}

func (c *Client) Livez(ctx context.Context) (LivezResponse, error) {
	var out LivezResponse
	err := c.do(ctx, http.MethodGet, "/livez", nil, &out, http.StatusOK)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, expected int) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expected {
		var errResp ErrorResponse
		_ = json.Unmarshal(raw, &errResp)
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
