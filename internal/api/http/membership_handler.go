package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/service"
)

const maxBodyBytes = 64 << 10

// MembershipHandler serves the requester-facing routes
type MembershipHandler struct {
	membership service.MembershipService
}

type submitRequestBody struct {
	GitHubUsername string `json:"githubUsername"`
	Note           string `json:"note"`
}

type requestResponse struct {
	Request *domain.MembershipRequest `json:"request"`
}

type requestListResponse struct {
	Requests []domain.MembershipRequest `json:"requests"`
}

type checkMembershipResponse struct {
	GitHubUsername string                 `json:"githubUsername"`
	Status         domain.MembershipState `json:"status"`
}

func (h *MembershipHandler) CheckMembership(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("githubUsername")
	state, err := h.membership.CheckMembership(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, checkMembershipResponse{GitHubUsername: username, Status: state})
}

func (h *MembershipHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())

	var body submitRequestBody
	if !decodeBody(w, r, &body) {
		return
	}

	req, err := h.membership.SubmitRequest(r.Context(), service.SubmitInput{
		UserID:         p.UserID,
		UserEmail:      p.Email,
		GitHubUsername: body.GitHubUsername,
		Note:           body.Note,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, requestResponse{Request: req})
}

func (h *MembershipHandler) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())
	reqs, err := h.membership.ListMyRequests(r.Context(), p.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRequestList(reqs))
}

func (h *MembershipHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())
	req, err := h.membership.GetRequest(r.Context(), p.UserID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requestResponse{Request: req})
}

// RefreshStatus runs one GitHub check for the caller's own request.
func (h *MembershipHandler) RefreshStatus(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())
	id := mux.Vars(r)["id"]

	if _, err := h.membership.GetRequest(r.Context(), p.UserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	req, err := h.membership.RefreshStatus(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requestResponse{Request: req})
}

func newRequestList(reqs []domain.MembershipRequest) requestListResponse {
	if reqs == nil {
		reqs = []domain.MembershipRequest{}
	}
	return requestListResponse{Requests: reqs}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeAPIError(w, http.StatusBadRequest, CodeValidation, "request body is not valid JSON")
		return false
	}
	return true
}
