package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/service"
)

// AdminHandler serves the reviewer routes
type AdminHandler struct {
	admin service.AdminService
}

type reviewActionBody struct {
	Action     string `json:"action"`
	AdminNotes string `json:"adminNotes"`
}

func (h *AdminHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.admin.ListRequests(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRequestList(reqs))
}

func (h *AdminHandler) ReviewAction(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())
	id := mux.Vars(r)["id"]

	var body reviewActionBody
	if !decodeBody(w, r, &body) {
		return
	}

	var (
		res *service.ActionResult
		err error
	)
	switch body.Action {
	case "approve":
		res, err = h.admin.Approve(r.Context(), p.UserID, id, body.AdminNotes)
	case "deny":
		res, err = h.admin.Deny(r.Context(), p.UserID, id, body.AdminNotes)
	default:
		err = domain.NewValidationError("action", "must be approve or deny")
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
