package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Gate  *Gate
	Auth  *AuthHandler
	User  *UserHandler
	Poll  *PollHandler
	Vote  *VoteHandler
	Group *GroupHandler
}

func NewHandler(h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(h.Gate.Middleware)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)
		r.Post("/request-access", h.Auth.RequestAccess)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("welcome"))
		})

		r.With(requireUser).Get("/me", h.User.GetMe)

		r.Route("/polls", func(r chi.Router) {
			r.Get("/", h.Poll.ListPolls)
			r.Post("/", h.Poll.CreatePoll)

			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", h.Poll.GetPoll)
				r.Post("/open", h.Poll.Open)
				r.Post("/close", h.Poll.Close)
				r.Post("/show", h.Poll.Show)
				r.Post("/hide", h.Poll.Hide)

				r.Group(func(r chi.Router) {
					r.Use(requireUser)
					r.Post("/votes", h.Vote.VoteOnPoll)
					r.Get("/membership", h.Vote.GetMembership)
					r.Get("/unvoted", h.Vote.ListUnvoted)
				})
			})
		})

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", h.Group.ListGroups)
			r.Get("/{slug}/members", h.Group.ListMembers)
		})
	})

	return r
}
