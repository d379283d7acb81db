package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"clubhub-backend/internal/security"
	"clubhub-backend/internal/service"
)

// Options tunes the router's request limits.
type Options struct {
	RateLimitPerMinute int
	RateLimitBurst     int
}

// NewRouter registers every API route. Route names double as keys into
// config.EndpointSecurityConfig.
func NewRouter(membership service.MembershipService, admin service.AdminService, authn security.Authenticator, opts Options) *mux.Router {
	if opts.RateLimitPerMinute <= 0 {
		opts.RateLimitPerMinute = 60
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 10
	}

	mh := &MembershipHandler{membership: membership}
	ah := &AdminHandler{admin: admin}

	router := mux.NewRouter()
	router.Use(accessLog, recoverer)
	router.Use((&authMiddleware{authn: authn}).Middleware)
	router.Use(newUserLimiter(opts.RateLimitPerMinute, opts.RateLimitBurst).Middleware)

	router.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet).Name("Health")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/membership/check", mh.CheckMembership).Methods(http.MethodGet).Name("CheckMembership")
	api.HandleFunc("/membership-requests", mh.SubmitRequest).Methods(http.MethodPost).Name("SubmitRequest")
	api.HandleFunc("/membership-requests/me", mh.ListMyRequests).Methods(http.MethodGet).Name("ListMyRequests")
	api.HandleFunc("/membership-requests/{id}", mh.GetRequest).Methods(http.MethodGet).Name("GetRequest")
	api.HandleFunc("/membership-requests/{id}/refresh", mh.RefreshStatus).Methods(http.MethodPost).Name("RefreshRequestStatus")

	api.HandleFunc("/admin/membership-requests", ah.ListRequests).Methods(http.MethodGet).Name("AdminListRequests")
	api.HandleFunc("/admin/membership-requests/{id}/actions", ah.ReviewAction).Methods(http.MethodPost).Name("AdminReviewAction")

	return router
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
