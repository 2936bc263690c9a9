package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/rollcall/internal/core/domain"
	"github.com/vncsmyrnk/rollcall/internal/core/ports"
)

type VoteHandler struct {
	service ports.PollService
}

func NewVoteHandler(service ports.PollService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type voteRequest struct {
	Choice string `json:"choice"`
}

type voteResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// VoteOnPoll answers 201 for a recorded vote and 200 when the caller had
// already voted; the latter is informational, not a failure.
func (h *VoteHandler) VoteOnPoll(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	outcome, err := h.service.CastVote(r.Context(), IdentityFrom(r), chi.URLParam(r, "slug"), req.Choice)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if outcome == domain.VoteAlreadyCast {
		writeJSON(w, http.StatusOK, voteResponse{Status: outcome.String(), Message: "you have already voted on this poll"})
		return
	}
	writeJSON(w, http.StatusCreated, voteResponse{Status: outcome.String(), Message: "vote recorded"})
}

type membershipResponse struct {
	Member bool `json:"member"`
	Voted  bool `json:"voted"`
}

func (h *VoteHandler) GetMembership(w http.ResponseWriter, r *http.Request) {
	member, err := h.service.FindCurrentMember(r.Context(), IdentityFrom(r), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := membershipResponse{}
	if member != nil {
		resp = membershipResponse{Member: true, Voted: member.Voted}
	}
	writeJSON(w, http.StatusOK, resp)
}

type personResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newPeopleResponse(people []*domain.Person) []personResponse {
	resp := make([]personResponse, 0, len(people))
	for _, p := range people {
		resp = append(resp, personResponse{ID: p.ID, Name: p.Name})
	}
	return resp
}

func (h *VoteHandler) ListUnvoted(w http.ResponseWriter, r *http.Request) {
	people, err := h.service.ListUnvoted(r.Context(), IdentityFrom(r), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPeopleResponse(people))
}
