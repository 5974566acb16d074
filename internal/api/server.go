// Package api exposes the daemon's small HTTP surface: health, the
// re-enable confirmation endpoint that confirmation links point at, and
// a couple of operator views over the pending store.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ignite/listflow/internal/pkg/httputil"
	"github.com/ignite/listflow/internal/pkg/logger"
)

// Reenabler consumes a re-enable token, reporting the member it belonged
// to. bounce.Tracker satisfies this.
type Reenabler interface {
	HandleReenable(ctx context.Context, token string) (string, bool, error)
}

// PendingCounter reports the number of live pending tokens.
// pending.Service satisfies this.
type PendingCounter interface {
	Count(ctx context.Context) (int, error)
}

// Server routes HTTP traffic to the tracker and the pending store.
type Server struct {
	tracker Reenabler
	pend    PendingCounter
	log     *logger.Logger
	router  chi.Router
}

// NewServer builds the router.
func NewServer(tracker Reenabler, pend PendingCounter, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	s := &Server{tracker: tracker, pend: pend, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/confirm/{token}", s.handleConfirm)
	r.Post("/confirm/{token}", s.handleConfirm)
	r.Get("/pending/count", s.handlePendingCount)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "ok"})
}

// handleConfirm consumes a re-enable token. An unknown, expired, or
// already-used token gets the same answer as a never-issued one.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	member, ok, err := s.tracker.HandleReenable(r.Context(), token)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if !ok {
		httputil.NotFound(w, "unknown or expired token")
		return
	}
	s.log.Info("delivery re-enabled", "member", member)
	httputil.OK(w, map[string]string{"status": "re-enabled", "member": member})
}

func (s *Server) handlePendingCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.pend.Count(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]int{"count": n})
}
