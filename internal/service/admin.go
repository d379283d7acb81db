package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/github"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/repository"
)

type adminService struct {
	repo     repository.MembershipRequestRepository
	github   GitHubOrgClient
	emailSvc EmailService
	watcher  PollWatcher
	now      func() time.Time
}

// NewAdminService builds the reviewer. watcher may be nil when no in-process poller runs.
func NewAdminService(
	repo repository.MembershipRequestRepository,
	gh GitHubOrgClient,
	emailSvc EmailService,
	watcher PollWatcher,
) AdminService {
	return &adminService{
		repo:     repo,
		github:   gh,
		emailSvc: emailSvc,
		watcher:  watcher,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *adminService) Approve(ctx context.Context, adminID, requestID, adminNotes string) (*ActionResult, error) {
	logger.EnterMethod("Approve", "admin_id", adminID, "request_id", requestID)

	// 1. Fetch the request and make sure it is still under review
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.Status.IsReviewable() {
		return nil, &domain.TransitionError{From: req.Status, To: domain.MembershipStatusApproved}
	}

	// 2. Ask GitHub where the user stands; on failure nothing is written
	state, err := s.github.CheckMembership(ctx, req.GitHubUsername)
	if err != nil {
		logger.ExitMethodWithError("Approve", err, "request_id", requestID)
		return nil, fmt.Errorf("%w: failed to check github membership: %w", domain.ErrUpstream, err)
	}

	now := s.now()
	req.MarkReviewed(adminID, adminNotes, now)
	result := &ActionResult{}

	// 3. Record what GitHub reported, inviting only users with no membership at all
	switch state {
	case domain.MembershipStateActive:
		err = req.Transition(domain.MembershipStatusAlreadyMember, now)
		result.Message = "User is already a member of the organization"
	case domain.MembershipStatePending:
		err = req.Transition(domain.MembershipStatusAlreadyInvited, now)
		result.Message = "User already has a pending invitation"
	default:
		inviteErr := s.github.InviteUser(ctx, req.GitHubUsername)
		switch {
		case inviteErr == nil:
			err = req.Transition(domain.MembershipStatusInviteSent, now)
			result.Message = "Invitation sent"
		case errors.Is(inviteErr, github.ErrAlreadyInvited):
			err = req.Transition(domain.MembershipStatusAlreadyInvited, now)
			result.Message = "User already has a pending invitation"
		default:
			err = req.Transition(domain.MembershipStatusApproved, now)
			req.InviteError = inviteErr.Error()
			result.Message = "Request approved but the invitation could not be sent; approve again to retry"
			logger.Warn("Invitation failed", "request_id", req.ID, "github_username", req.GitHubUsername, "error", inviteErr)
		}
	}
	if err != nil {
		return nil, err
	}

	// 4. Persist the outcome
	if err := s.repo.Update(ctx, req); err != nil {
		logger.ExitMethodWithError("Approve", err, "request_id", requestID)
		return nil, fmt.Errorf("failed to update membership request: %w", err)
	}

	if s.watcher != nil && req.Status.IsPollable() {
		s.watcher.Watch(req.ID)
	}
	s.notify(ctx, req)

	result.Request = req
	result.Status = req.Status
	result.InviteError = req.InviteError
	logger.Info("Membership request approved", "request_id", req.ID, "status", req.Status, "admin_id", adminID)
	return result, nil
}

func (s *adminService) Deny(ctx context.Context, adminID, requestID, adminNotes string) (*ActionResult, error) {
	logger.EnterMethod("Deny", "admin_id", adminID, "request_id", requestID)

	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.Status.IsReviewable() {
		return nil, &domain.TransitionError{From: req.Status, To: domain.MembershipStatusDenied}
	}

	now := s.now()
	req.MarkReviewed(adminID, adminNotes, now)
	if err := req.Transition(domain.MembershipStatusDenied, now); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, req); err != nil {
		logger.ExitMethodWithError("Deny", err, "request_id", requestID)
		return nil, fmt.Errorf("failed to update membership request: %w", err)
	}

	s.notify(ctx, req)

	logger.Info("Membership request denied", "request_id", req.ID, "admin_id", adminID)
	return &ActionResult{Request: req, Status: req.Status, Message: "Request denied"}, nil
}

func (s *adminService) ListRequests(ctx context.Context, status string) ([]domain.MembershipRequest, error) {
	if status == "" {
		return s.repo.ListByStatus(ctx)
	}
	st, ok := domain.ParseMembershipStatus(status)
	if !ok {
		return nil, domain.NewValidationError("status", "is not a known membership status")
	}
	return s.repo.ListByStatus(ctx, st)
}

// notify sends the requester an email; failures never affect the review outcome.
func (s *adminService) notify(ctx context.Context, req *domain.MembershipRequest) {
	if s.emailSvc == nil {
		return
	}
	if err := s.emailSvc.SendStatusNotification(ctx, req); err != nil {
		logger.Warn("Failed to send status notification", "request_id", req.ID, "error", err)
	}
}
