package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/rollcall/internal/core/domain"
	"github.com/vncsmyrnk/rollcall/internal/core/ports"
)

type GroupHandler struct {
	service ports.GroupService
}

func NewGroupHandler(service ports.GroupService) *GroupHandler {
	return &GroupHandler{
		service: service,
	}
}

func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListGroups(r.Context(), IdentityFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if groups == nil {
		groups = []*domain.Group{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *GroupHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	people, err := h.service.GroupMembers(r.Context(), IdentityFrom(r), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPeopleResponse(people))
}
