package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/rollcall/internal/core/domain"
	"github.com/vncsmyrnk/rollcall/internal/core/ports"
)

type PollHandler struct {
	service ports.PollService
}

func NewPollHandler(service ports.PollService) *PollHandler {
	return &PollHandler{
		service: service,
	}
}

type pollResponse struct {
	ID         string    `json:"id"`
	Slug       string    `json:"slug"`
	Name       string    `json:"name"`
	IsOpen     bool      `json:"is_open"`
	IsVisible  bool      `json:"is_visible"`
	VotesYee   int       `json:"votes_yee"`
	VotesNay   int       `json:"votes_nay"`
	VotesAbs   int       `json:"votes_abs"`
	VotesTotal int       `json:"votes_total"`
	RosterSize int       `json:"roster_size"`
	CreatedAt  time.Time `json:"created_at"`
}

func newPollResponse(p *domain.Poll) pollResponse {
	return pollResponse{
		ID:         p.ID.String(),
		Slug:       p.Slug,
		Name:       p.Name,
		IsOpen:     p.IsOpen,
		IsVisible:  p.IsVisible,
		VotesYee:   p.VotesYee,
		VotesNay:   p.VotesNay,
		VotesAbs:   p.VotesAbs,
		VotesTotal: p.VotesTotal(),
		RosterSize: p.RosterSize,
		CreatedAt:  p.CreatedAt,
	}
}

type createPollRequest struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Group   string `json:"group"`
	Open    *bool  `json:"is_open"`
	Visible *bool  `json:"is_visible"`
}

func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.CreatePollInput{
		Name:      req.Name,
		Slug:      req.Slug,
		GroupSlug: req.Group,
		Open:      req.Open == nil || *req.Open,
		Visible:   req.Visible == nil || *req.Visible,
	}

	poll, err := h.service.CreatePoll(r.Context(), IdentityFrom(r), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newPollResponse(poll))
}

func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.service.ListPolls(r.Context(), IdentityFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]pollResponse, 0, len(polls))
	for _, p := range polls {
		resp = append(resp, newPollResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.service.GetPoll(r.Context(), IdentityFrom(r), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newPollResponse(poll))
}

func (h *PollHandler) Open(w http.ResponseWriter, r *http.Request)  { h.setOpen(w, r, true) }
func (h *PollHandler) Close(w http.ResponseWriter, r *http.Request) { h.setOpen(w, r, false) }
func (h *PollHandler) Show(w http.ResponseWriter, r *http.Request)  { h.setVisible(w, r, true) }
func (h *PollHandler) Hide(w http.ResponseWriter, r *http.Request)  { h.setVisible(w, r, false) }

func (h *PollHandler) setOpen(w http.ResponseWriter, r *http.Request, open bool) {
	poll, err := h.service.SetOpen(r.Context(), IdentityFrom(r), chi.URLParam(r, "slug"), open)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPollResponse(poll))
}

func (h *PollHandler) setVisible(w http.ResponseWriter, r *http.Request, visible bool) {
	poll, err := h.service.SetVisible(r.Context(), IdentityFrom(r), chi.URLParam(r, "slug"), visible)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPollResponse(poll))
}
