package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clubhub-backend/internal/domain"
)

// MockMembershipRepo
type MockMembershipRepo struct {
	mock.Mock
}

func (m *MockMembershipRepo) Create(ctx context.Context, req *domain.MembershipRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockMembershipRepo) GetByID(ctx context.Context, id string) (*domain.MembershipRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Hand out a copy so callers mutating the record do not change the fixture.
	req := *args.Get(0).(*domain.MembershipRequest)
	return &req, args.Error(1)
}
func (m *MockMembershipRepo) Update(ctx context.Context, req *domain.MembershipRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockMembershipRepo) ListByUser(ctx context.Context, userID string) ([]domain.MembershipRequest, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.MembershipRequest), args.Error(1)
}
func (m *MockMembershipRepo) ListByStatus(ctx context.Context, statuses ...domain.MembershipStatus) ([]domain.MembershipRequest, error) {
	args := m.Called(ctx, statuses)
	return args.Get(0).([]domain.MembershipRequest), args.Error(1)
}

// MockGitHubClient
type MockGitHubClient struct {
	mock.Mock
}

func (m *MockGitHubClient) CheckMembership(ctx context.Context, username string) (domain.MembershipState, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(domain.MembershipState), args.Error(1)
}
func (m *MockGitHubClient) InviteUser(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendStatusNotification(ctx context.Context, req *domain.MembershipRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// MockWatcher
type MockWatcher struct {
	mock.Mock
}

func (m *MockWatcher) Watch(requestID string) {
	m.Called(requestID)
}
