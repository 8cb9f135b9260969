// Package monitoring serves the operational HTTP endpoints of the server: Prometheus
// metrics, a health check listing online users and, in debug mode, a storage
// inspector.
package monitoring

import (
	"chat-relay/errors"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 2 * time.Second

// OnlineFunc lists the users currently online.
type OnlineFunc func() []string

type Health struct {
	Status string   `json:"status"`
	Online int      `json:"online"`
	Users  []string `json:"users"`
}

func NewRouter(gatherer prometheus.Gatherer, online OnlineFunc, inspector *Inspector) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		users := online()
		if users == nil {
			users = []string{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Health{Status: "ok", Online: len(users), Users: users})
	})
	if inspector != nil {
		r.Method(http.MethodGet, "/debug/inspect", inspector)
	}
	return r
}

// Server runs the monitoring endpoints as a supervised worker.
type Server struct {
	log    *slog.Logger
	server *http.Server
}

func NewServer(log *slog.Logger, address string, handler http.Handler) *Server {
	return &Server{
		log:    log,
		server: &http.Server{Addr: address, Handler: handler, ReadHeaderTimeout: 5 * time.Second},
	}
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Monitoring endpoints listening", "address", s.server.Addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}
