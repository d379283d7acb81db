package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/repository"
	"clubhub-backend/internal/validation"
)

type submitPayload struct {
	UserID         string `json:"userId" validate:"required"`
	UserEmail      string `json:"userEmail" validate:"required,email"`
	GitHubUsername string `json:"githubUsername" validate:"required,github_username"`
	Note           string `json:"note" validate:"max=500"`
}

type membershipService struct {
	repo      repository.MembershipRequestRepository
	github    GitHubOrgClient
	validator *validation.Validator
	now       func() time.Time
}

func NewMembershipService(repo repository.MembershipRequestRepository, gh GitHubOrgClient) MembershipService {
	return &membershipService{
		repo:      repo,
		github:    gh,
		validator: validation.New(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *membershipService) SubmitRequest(ctx context.Context, in SubmitInput) (*domain.MembershipRequest, error) {
	logger.EnterMethod("SubmitRequest", "user_id", in.UserID)

	payload := submitPayload{
		UserID:         in.UserID,
		UserEmail:      strings.TrimSpace(in.UserEmail),
		GitHubUsername: validation.NormalizeGitHubUsername(in.GitHubUsername),
		Note:           strings.TrimSpace(in.Note),
	}
	if err := s.validator.Validate(payload); err != nil {
		return nil, err
	}

	now := s.now()
	req := &domain.MembershipRequest{
		ID:             uuid.NewString(),
		UserID:         payload.UserID,
		UserEmail:      payload.UserEmail,
		GitHubUsername: payload.GitHubUsername,
		Note:           payload.Note,
		Status:         domain.MembershipStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		if errors.Is(err, domain.ErrActiveRequestExists) {
			return nil, err
		}
		logger.ExitMethodWithError("SubmitRequest", err, "user_id", in.UserID)
		return nil, fmt.Errorf("failed to create membership request: %w", err)
	}

	logger.Info("Membership request submitted", "request_id", req.ID, "user_id", req.UserID, "github_username", req.GitHubUsername)
	logger.ExitMethod("SubmitRequest", "request_id", req.ID)
	return req, nil
}

func (s *membershipService) ListMyRequests(ctx context.Context, userID string) ([]domain.MembershipRequest, error) {
	if userID == "" {
		return nil, domain.NewValidationError("userId", "is required")
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *membershipService) GetRequest(ctx context.Context, userID, requestID string) (*domain.MembershipRequest, error) {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	// Other users' requests are reported as missing.
	if req.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

func (s *membershipService) CheckMembership(ctx context.Context, githubUsername string) (domain.MembershipState, error) {
	username := validation.NormalizeGitHubUsername(githubUsername)
	if !validation.IsGitHubUsername(username) {
		return "", domain.NewValidationError("githubUsername", "must be a valid GitHub username")
	}
	state, err := s.github.CheckMembership(ctx, username)
	if err != nil {
		return "", fmt.Errorf("%w: failed to check github membership: %w", domain.ErrUpstream, err)
	}
	return state, nil
}

// RefreshStatus runs one poll step. The record is only written when GitHub
// reports an active membership and ctx is still live.
func (s *membershipService) RefreshStatus(ctx context.Context, requestID string) (*domain.MembershipRequest, error) {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(req.Status, domain.MembershipStatusJoined) {
		return req, nil
	}

	state, err := s.github.CheckMembership(ctx, req.GitHubUsername)
	if err != nil {
		return req, fmt.Errorf("%w: failed to check github membership: %w", domain.ErrUpstream, err)
	}
	if state != domain.MembershipStateActive {
		return req, nil
	}

	if err := ctx.Err(); err != nil {
		return req, err
	}
	if err := req.Transition(domain.MembershipStatusJoined, s.now()); err != nil {
		return req, err
	}
	if err := s.repo.Update(ctx, req); err != nil {
		return req, fmt.Errorf("failed to record joined status: %w", err)
	}

	logger.Info("Membership request joined", "request_id", req.ID, "github_username", req.GitHubUsername)
	return req, nil
}

func (s *membershipService) ListPollable(ctx context.Context) ([]domain.MembershipRequest, error) {
	return s.repo.ListByStatus(ctx, domain.PollableStatuses()...)
}
