package http

import (
	"net/http"

	"github.com/vncsmyrnk/rollcall/internal/core/domain"
	"github.com/vncsmyrnk/rollcall/internal/core/ports"
)

type UserHandler struct {
	service ports.IdentityService
}

func NewUserHandler(service ports.IdentityService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

type meResponse struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Emails  []string `json:"emails"`
	IsAdmin bool     `json:"is_admin"`
}

func newMeResponse(identity domain.Identity, emails []domain.Email) meResponse {
	resp := meResponse{
		ID:      identity.User.ID,
		Name:    identity.User.Name,
		Emails:  []string{},
		IsAdmin: identity.IsAdmin,
	}
	for _, e := range emails {
		resp.Emails = append(resp.Emails, e.Address)
	}
	return resp
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFrom(r)

	emails, err := h.service.Emails(r.Context(), identity.User.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newMeResponse(identity, emails))
}
