package repository

import (
	"context"

	"clubhub-backend/internal/domain"
)

// MembershipRequestRepository persists membership requests, one record per request.
type MembershipRequestRepository interface {
	// Create stores a new request. It returns domain.ErrActiveRequestExists when
	// the user already holds a request whose status blocks a new submission; the
	// check and the insert are atomic.
	Create(ctx context.Context, req *domain.MembershipRequest) error
	GetByID(ctx context.Context, id string) (*domain.MembershipRequest, error)
	// Update overwrites the mutable fields of an existing request. Last write wins.
	Update(ctx context.Context, req *domain.MembershipRequest) error
	// ListByUser returns the user's requests, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.MembershipRequest, error)
	// ListByStatus returns requests in any of the given statuses, newest first.
	// With no statuses it returns every request.
	ListByStatus(ctx context.Context, statuses ...domain.MembershipStatus) ([]domain.MembershipRequest, error)
}
