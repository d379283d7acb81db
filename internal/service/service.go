package service

import (
	"context"

	"clubhub-backend/internal/domain"
)

// SubmitInput is a requester's membership request. UserID and UserEmail come
// from the authenticated principal, never from the request body.
type SubmitInput struct {
	UserID         string
	UserEmail      string
	GitHubUsername string
	Note           string
}

// ActionResult is the outcome of an admin review action.
type ActionResult struct {
	Request     *domain.MembershipRequest `json:"-"`
	Status      domain.MembershipStatus   `json:"status"`
	Message     string                    `json:"message"`
	InviteError string                    `json:"inviteError,omitempty"`
}

type MembershipService interface {
	SubmitRequest(ctx context.Context, in SubmitInput) (*domain.MembershipRequest, error)
	ListMyRequests(ctx context.Context, userID string) ([]domain.MembershipRequest, error)
	GetRequest(ctx context.Context, userID, requestID string) (*domain.MembershipRequest, error)
	CheckMembership(ctx context.Context, githubUsername string) (domain.MembershipState, error)
	RefreshStatus(ctx context.Context, requestID string) (*domain.MembershipRequest, error)
	ListPollable(ctx context.Context) ([]domain.MembershipRequest, error)
}

type AdminService interface {
	Approve(ctx context.Context, adminID, requestID, adminNotes string) (*ActionResult, error)
	Deny(ctx context.Context, adminID, requestID, adminNotes string) (*ActionResult, error)
	ListRequests(ctx context.Context, status string) ([]domain.MembershipRequest, error)
}

// GitHubOrgClient is the slice of the GitHub API the workflow depends on.
type GitHubOrgClient interface {
	CheckMembership(ctx context.Context, username string) (domain.MembershipState, error)
	InviteUser(ctx context.Context, username string) error
}

// EmailService delivers requester notifications.
type EmailService interface {
	SendStatusNotification(ctx context.Context, req *domain.MembershipRequest) error
}

// PollWatcher receives requests that became pollable so their status gets tracked.
type PollWatcher interface {
	Watch(requestID string)
}
