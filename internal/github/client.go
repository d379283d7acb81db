// Package github talks to the GitHub REST API on behalf of the organization:
// membership lookups and invitations.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
)

const (
	apiVersion = "2022-11-28"
	service    = "github"
)

var (
	ErrUserNotFound      = errors.New("github user not found")
	ErrAlreadyInvited    = errors.New("github user already invited or a member")
	ErrUnexpectedStatus  = errors.New("unexpected github response")
	errMissingIdentifier = errors.New("github username is required")
)

// Config holds the organization and credentials used by the client.
type Config struct {
	BaseURL           string
	Org               string
	Token             string
	RequestsPerSecond float64
	Timeout           time.Duration
}

type Client struct {
	baseURL string
	org     string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(cfg Config) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		org:     cfg.Org,
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
	}
}

type membershipResponse struct {
	State string `json:"state"`
	Role  string `json:"role"`
}

// CheckMembership reports whether username is an active member of the
// organization, has a pending invitation, or neither.
func (c *Client) CheckMembership(ctx context.Context, username string) (domain.MembershipState, error) {
	if username == "" {
		return "", errMissingIdentifier
	}
	logger.ExternalServiceCall(service, "CheckMembership", "username", username, "org", c.org)

	path := fmt.Sprintf("/orgs/%s/memberships/%s", url.PathEscape(c.org), url.PathEscape(username))
	var body membershipResponse
	status, _, err := c.do(ctx, http.MethodGet, path, nil, &body)
	if err != nil {
		logger.ExternalServiceResult(service, "CheckMembership", err, "username", username)
		return "", err
	}

	var state domain.MembershipState
	switch {
	case status == http.StatusNotFound:
		state = domain.MembershipStateNone
	case status == http.StatusOK && body.State == "active":
		state = domain.MembershipStateActive
	case status == http.StatusOK && body.State == "pending":
		state = domain.MembershipStatePending
	default:
		err = fmt.Errorf("%w: membership lookup returned %d (state %q)", ErrUnexpectedStatus, status, body.State)
	}
	logger.ExternalServiceResult(service, "CheckMembership", err, "username", username, "state", state)
	return state, err
}

type userResponse struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

type invitationRequest struct {
	InviteeID int64  `json:"invitee_id"`
	Role      string `json:"role"`
}

// InviteUser sends an organization invitation to username as a direct member.
func (c *Client) InviteUser(ctx context.Context, username string) error {
	if username == "" {
		return errMissingIdentifier
	}
	logger.ExternalServiceCall(service, "InviteUser", "username", username, "org", c.org)

	var user userResponse
	status, _, err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(username), nil, &user)
	if err == nil {
		switch status {
		case http.StatusOK:
		case http.StatusNotFound:
			err = fmt.Errorf("%w: %s", ErrUserNotFound, username)
		default:
			err = fmt.Errorf("%w: user lookup returned %d", ErrUnexpectedStatus, status)
		}
	}
	if err != nil {
		logger.ExternalServiceResult(service, "InviteUser", err, "username", username)
		return err
	}

	path := fmt.Sprintf("/orgs/%s/invitations", url.PathEscape(c.org))
	status, apiErr, err := c.do(ctx, http.MethodPost, path, invitationRequest{InviteeID: user.ID, Role: "direct_member"}, nil)
	if err == nil {
		switch {
		case status == http.StatusCreated:
		case status == http.StatusUnprocessableEntity && apiErr.alreadyInvited():
			err = ErrAlreadyInvited
		case status == http.StatusUnprocessableEntity:
			err = fmt.Errorf("%w: invitation rejected: %s", ErrUnexpectedStatus, apiErr)
		default:
			err = fmt.Errorf("%w: invitation returned %d", ErrUnexpectedStatus, status)
		}
	}
	logger.ExternalServiceResult(service, "InviteUser", err, "username", username, "invitee_id", user.ID)
	return err
}

// errorResponse is GitHub's error body, e.g. the 422 validation failures.
type errorResponse struct {
	Message string `json:"message"`
	Errors  []struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"errors"`
}

func (e errorResponse) messages() []string {
	out := []string{e.Message}
	for _, d := range e.Errors {
		out = append(out, d.Message)
	}
	return out
}

// alreadyInvited reports whether a 422 means the user is already in or invited to the org.
func (e errorResponse) alreadyInvited() bool {
	for _, m := range e.messages() {
		m = strings.ToLower(m)
		if strings.Contains(m, "already a part of") || strings.Contains(m, "already invited") {
			return true
		}
	}
	return false
}

func (e errorResponse) String() string {
	var parts []string
	for _, m := range e.messages() {
		if m != "" {
			parts = append(parts, m)
		}
	}
	return strings.Join(parts, "; ")
}

// do performs one throttled API call. Decoding into out only happens for 2xx
// responses; other bodies are decoded as an errorResponse.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, errorResponse, error) {
	var apiErr errorResponse
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, apiErr, err
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return 0, apiErr, fmt.Errorf("failed to encode github request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, apiErr, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, apiErr, fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Error bodies are informational; an empty or malformed one is not an error.
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return resp.StatusCode, apiErr, nil
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, apiErr, fmt.Errorf("failed to decode github response: %w", err)
		}
	}
	return resp.StatusCode, apiErr, nil
}
