// Package rest exposes the login service over HTTP/JSON:
//
//	POST /api/auth/login   credentials in, session cookie and token out
//	POST /api/auth/logout  clears the session cookie
//	GET  /api/auth/me      identity of the current session
//	GET  /api/health       liveness
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/entrelibros-auth/internal/logging"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/models"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// Authenticator is satisfied by *services.AuthService.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (services.Outcome, error)
	Identify(ctx context.Context, token string) (models.Identity, error)
}

// Options tune the HTTP boundary.
type Options struct {
	CookieSecure   bool
	RequestTimeout time.Duration
	// LoginLimiter, when non-nil, throttles POST /api/auth/login per client IP.
	LoginLimiter *RateLimiter
}

type Handler struct {
	service Authenticator
	opts    Options
	log     logging.Logger
}

func NewHandler(service Authenticator, opts Options, log logging.Logger) *Handler {
	return &Handler{service: service, opts: opts, log: log.With("module", "http")}
}

// NewRouter registers the routes and the middleware stack.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware(h.log))
	r.Use(loggingMiddleware(h.log))
	if h.opts.RequestTimeout > 0 {
		r.Use(timeoutMiddleware(h.opts.RequestTimeout))
	}

	r.Get("/api/health", h.health)

	r.Route("/api/auth", func(r chi.Router) {
		r.With(h.opts.LoginLimiter.Middleware).Post("/login", h.login)
		r.Post("/logout", h.logout)

		r.Group(func(r chi.Router) {
			r.Use(h.sessionMiddleware)
			r.Get("/me", h.me)
		})
	})

	return r
}
