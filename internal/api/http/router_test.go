package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/security"
	"clubhub-backend/internal/service"
)

type mockMembershipService struct {
	mock.Mock
}

func (m *mockMembershipService) SubmitRequest(ctx context.Context, in service.SubmitInput) (*domain.MembershipRequest, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MembershipRequest), args.Error(1)
}
func (m *mockMembershipService) ListMyRequests(ctx context.Context, userID string) ([]domain.MembershipRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MembershipRequest), args.Error(1)
}
func (m *mockMembershipService) GetRequest(ctx context.Context, userID, requestID string) (*domain.MembershipRequest, error) {
	args := m.Called(ctx, userID, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MembershipRequest), args.Error(1)
}
func (m *mockMembershipService) CheckMembership(ctx context.Context, username string) (domain.MembershipState, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(domain.MembershipState), args.Error(1)
}
func (m *mockMembershipService) RefreshStatus(ctx context.Context, requestID string) (*domain.MembershipRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MembershipRequest), args.Error(1)
}
func (m *mockMembershipService) ListPollable(ctx context.Context) ([]domain.MembershipRequest, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.MembershipRequest), args.Error(1)
}

type mockAdminService struct {
	mock.Mock
}

func (m *mockAdminService) Approve(ctx context.Context, adminID, requestID, notes string) (*service.ActionResult, error) {
	args := m.Called(ctx, adminID, requestID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ActionResult), args.Error(1)
}
func (m *mockAdminService) Deny(ctx context.Context, adminID, requestID, notes string) (*service.ActionResult, error) {
	args := m.Called(ctx, adminID, requestID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ActionResult), args.Error(1)
}
func (m *mockAdminService) ListRequests(ctx context.Context, status string) ([]domain.MembershipRequest, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MembershipRequest), args.Error(1)
}

// tokenAuth accepts "user" and "admin" as bearer tokens.
type tokenAuth struct{}

func (tokenAuth) Authenticate(_ context.Context, token string) (*security.Principal, error) {
	switch token {
	case "user":
		return &security.Principal{UserID: "U1", Email: "u1@club.dev"}, nil
	case "admin":
		return &security.Principal{UserID: "A1", Email: "boss@club.dev", Admin: true}, nil
	}
	return nil, security.ErrInvalidToken
}

type fixture struct {
	members *mockMembershipService
	admin   *mockAdminService
	handler http.Handler
}

func newFixture() *fixture {
	f := &fixture{members: new(mockMembershipService), admin: new(mockAdminService)}
	f.handler = NewRouter(f.members, f.admin, tokenAuth{}, Options{RateLimitPerMinute: 600, RateLimitBurst: 100})
	return f
}

func (f *fixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e apiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e.Error.Code
}

func TestHealth(t *testing.T) {
	f := newFixture()
	rec := f.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAuth(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/api/v1/membership-requests/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, CodeUnauthenticated, errorCode(t, rec))

	rec = f.do(http.MethodGet, "/api/v1/membership-requests/me", "forged", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/admin/membership-requests", "user", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	f.admin.AssertNotCalled(t, "ListRequests", mock.Anything, mock.Anything)
}

func TestSubmitRequest(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		f := newFixture()
		f.members.On("SubmitRequest", mock.Anything, service.SubmitInput{
			UserID: "U1", UserEmail: "u1@club.dev", GitHubUsername: "octo", Note: "hi",
		}).Return(&domain.MembershipRequest{ID: "r1", UserID: "U1", GitHubUsername: "octo", Status: domain.MembershipStatusPending}, nil)

		// userId in the body is ignored in favour of the token.
		rec := f.do(http.MethodPost, "/api/v1/membership-requests", "user", `{"githubUsername":"octo","note":"hi","userId":"U9"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp requestResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "r1", resp.Request.ID)
		assert.Equal(t, domain.MembershipStatusPending, resp.Request.Status)
	})

	t.Run("Conflict", func(t *testing.T) {
		f := newFixture()
		f.members.On("SubmitRequest", mock.Anything, mock.Anything).Return(nil, domain.ErrActiveRequestExists)

		rec := f.do(http.MethodPost, "/api/v1/membership-requests", "user", `{"githubUsername":"octo"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, CodeRequestExists, errorCode(t, rec))
	})

	t.Run("Invalid", func(t *testing.T) {
		f := newFixture()
		f.members.On("SubmitRequest", mock.Anything, mock.Anything).Return(nil, domain.NewValidationError("githubUsername", "is required"))

		rec := f.do(http.MethodPost, "/api/v1/membership-requests", "user", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, CodeValidation, errorCode(t, rec))
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		f := newFixture()
		rec := f.do(http.MethodPost, "/api/v1/membership-requests", "user", `{"githubUsername":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.members.AssertNotCalled(t, "SubmitRequest", mock.Anything, mock.Anything)
	})
}

func TestListMyRequests(t *testing.T) {
	f := newFixture()
	f.members.On("ListMyRequests", mock.Anything, "U1").Return(nil, nil)

	rec := f.do(http.MethodGet, "/api/v1/membership-requests/me", "user", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"requests":[]}`, rec.Body.String())
	f.members.AssertNotCalled(t, "GetRequest", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetRequest_NotOwner(t *testing.T) {
	f := newFixture()
	f.members.On("GetRequest", mock.Anything, "U1", "r9").Return(nil, domain.ErrNotFound)

	rec := f.do(http.MethodGet, "/api/v1/membership-requests/r9", "user", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, errorCode(t, rec))
}

func TestRefreshStatus(t *testing.T) {
	f := newFixture()
	f.members.On("GetRequest", mock.Anything, "U1", "r1").Return(&domain.MembershipRequest{ID: "r1", UserID: "U1"}, nil)
	f.members.On("RefreshStatus", mock.Anything, "r1").Return(&domain.MembershipRequest{ID: "r1", Status: domain.MembershipStatusJoined}, nil)

	rec := f.do(http.MethodPost, "/api/v1/membership-requests/r1/refresh", "user", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"joined"`)
}

func TestCheckMembership(t *testing.T) {
	f := newFixture()
	f.members.On("CheckMembership", mock.Anything, "octo").Return(domain.MembershipStateActive, nil)
	f.members.On("CheckMembership", mock.Anything, "down").Return(domain.MembershipState(""), fmt.Errorf("%w: timeout", domain.ErrUpstream))

	rec := f.do(http.MethodGet, "/api/v1/membership/check?githubUsername=octo", "user", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"githubUsername":"octo","status":"active"}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/api/v1/membership/check?githubUsername=down", "user", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, CodeUpstream, errorCode(t, rec))
}

func TestAdminReviewAction(t *testing.T) {
	t.Run("ApproveWithInviteError", func(t *testing.T) {
		f := newFixture()
		f.admin.On("Approve", mock.Anything, "A1", "r1", "ok").Return(&service.ActionResult{
			Status:      domain.MembershipStatusApproved,
			Message:     "Request approved but the invitation could not be sent",
			InviteError: "rate limited",
		}, nil)

		rec := f.do(http.MethodPost, "/api/v1/admin/membership-requests/r1/actions", "admin", `{"action":"approve","adminNotes":"ok"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var res map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "approved", res["status"])
		assert.Equal(t, "rate limited", res["inviteError"])
	})

	t.Run("Deny", func(t *testing.T) {
		f := newFixture()
		f.admin.On("Deny", mock.Anything, "A1", "r1", "").Return(&service.ActionResult{Status: domain.MembershipStatusDenied, Message: "Request denied"}, nil)

		rec := f.do(http.MethodPost, "/api/v1/admin/membership-requests/r1/actions", "admin", `{"action":"deny"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "inviteError")
	})

	t.Run("InvalidTransition", func(t *testing.T) {
		f := newFixture()
		f.admin.On("Approve", mock.Anything, "A1", "r1", "").Return(nil, &domain.TransitionError{From: domain.MembershipStatusJoined, To: domain.MembershipStatusApproved})

		rec := f.do(http.MethodPost, "/api/v1/admin/membership-requests/r1/actions", "admin", `{"action":"approve"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, CodeInvalidState, errorCode(t, rec))
	})

	t.Run("UnknownAction", func(t *testing.T) {
		f := newFixture()
		rec := f.do(http.MethodPost, "/api/v1/admin/membership-requests/r1/actions", "admin", `{"action":"ban"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("InternalError", func(t *testing.T) {
		f := newFixture()
		f.admin.On("Deny", mock.Anything, "A1", "r1", "").Return(nil, errors.New("disk full"))

		rec := f.do(http.MethodPost, "/api/v1/admin/membership-requests/r1/actions", "admin", `{"action":"deny"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "disk full")
	})
}

func TestAdminListRequests(t *testing.T) {
	f := newFixture()
	f.admin.On("ListRequests", mock.Anything, "pending").Return([]domain.MembershipRequest{{ID: "r1"}}, nil)

	rec := f.do(http.MethodGet, "/api/v1/admin/membership-requests?status=pending", "admin", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp requestListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Requests, 1)
}

func TestRateLimit(t *testing.T) {
	members := new(mockMembershipService)
	members.On("ListMyRequests", mock.Anything, "U1").Return([]domain.MembershipRequest{}, nil)
	h := NewRouter(members, new(mockAdminService), tokenAuth{}, Options{RateLimitPerMinute: 1, RateLimitBurst: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/membership-requests/me", nil)
		req.Header.Set("Authorization", "Bearer user")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
