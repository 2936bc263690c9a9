package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vncsmyrnk/rollcall/internal/core/domain"
	"github.com/vncsmyrnk/rollcall/internal/core/ports"
)

type AuthHandler struct {
	authService   ports.AuthService
	accessService ports.AccessService
	sessions      *SessionCodec
	cookieSecure  bool
}

func NewAuthHandler(authService ports.AuthService, accessService ports.AccessService, sessions *SessionCodec, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		accessService: accessService,
		sessions:      sessions,
		cookieSecure:  cookieSecure,
	}
}

type loginRequest struct {
	Key string `json:"key"`
}

// Login stores a key that resolves to a person in the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	identity, err := h.authService.Resolve(r.Context(), req.Key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !identity.IsAuthenticated() {
		http.Error(w, "Authentication failed: unknown key", http.StatusUnauthorized)
		return
	}

	token, err := h.sessions.Encode(req.Key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.setSessionCookie(w, token)

	writeJSON(w, http.StatusOK, newMeResponse(identity, nil))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, MaxAge: -1, Path: "/"})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type requestAccessRequest struct {
	Email string `json:"email"`
}

// RequestAccess always answers 202 so the endpoint cannot reveal which
// addresses are registered.
func (h *AuthHandler) RequestAccess(w http.ResponseWriter, r *http.Request) {
	var req requestAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.accessService.RequestAccess(r.Context(), req.Email); err != nil {
		entry := logger.WithError(err).WithField("email", domain.MaskEmail(req.Email))
		switch {
		case errors.Is(err, domain.ErrUnknownEmail):
			entry.Info("access requested for unknown email")
		default:
			entry.Error("access request failed")
		}
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "if the address is registered, a key has been sent to it",
	})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})
}
