package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/rollcall/internal/core/domain"
	"github.com/vncsmyrnk/rollcall/internal/core/ports"
)

var logger = logrus.WithField("component", "http")

type contextKey string

const IdentityKey contextKey = "identity"

// Gate resolves the request's credential once and stores the resulting
// identity in the request context for handlers to pass on explicitly.
type Gate struct {
	auth     ports.AuthService
	sessions *SessionCodec
}

func NewGate(auth ports.AuthService, sessions *SessionCodec) *Gate {
	return &Gate{auth: auth, sessions: sessions}
}

func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := g.auth.Resolve(r.Context(), g.credential(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), IdentityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// credential prefers an Authorization bearer key over the session cookie.
func (g *Gate) credential(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if key, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(key)
		}
	}

	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	key, err := g.sessions.Decode(cookie.Value)
	if err != nil {
		logger.WithError(err).Debug("ignoring session cookie")
		return ""
	}
	return key
}

// IdentityFrom returns the identity stored by Gate, anonymous if there is none.
func IdentityFrom(r *http.Request) domain.Identity {
	identity, _ := r.Context().Value(IdentityKey).(domain.Identity)
	return identity
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IdentityFrom(r).IsAuthenticated() {
			http.Error(w, "Unauthorized: missing or unknown key", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			logger.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
			}).Info("request")
		}()
		next.ServeHTTP(ww, r)
	})
}
