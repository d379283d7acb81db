package service_test

import (
	"context"
	"sync"

	"clubhub-backend/internal/domain"
)

// fakeRepo is an in-memory MembershipRequestRepository for workflow tests.
type fakeRepo struct {
	mu   sync.Mutex
	reqs map[string]domain.MembershipRequest
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{reqs: make(map[string]domain.MembershipRequest)}
}

func (r *fakeRepo) Create(_ context.Context, req *domain.MembershipRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reqs {
		if existing.UserID == req.UserID && existing.Status.BlocksNewRequest() {
			return domain.ErrActiveRequestExists
		}
	}
	r.reqs[req.ID] = *req
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*domain.MembershipRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.reqs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &req, nil
}

func (r *fakeRepo) Update(_ context.Context, req *domain.MembershipRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reqs[req.ID]; !ok {
		return domain.ErrNotFound
	}
	r.reqs[req.ID] = *req
	return nil
}

func (r *fakeRepo) ListByUser(_ context.Context, userID string) ([]domain.MembershipRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MembershipRequest
	for _, req := range r.reqs {
		if req.UserID == userID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByStatus(_ context.Context, statuses ...domain.MembershipStatus) ([]domain.MembershipRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MembershipRequest
	for _, req := range r.reqs {
		if len(statuses) == 0 || containsStatus(statuses, req.Status) {
			out = append(out, req)
		}
	}
	return out, nil
}

func containsStatus(statuses []domain.MembershipStatus, s domain.MembershipStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}
