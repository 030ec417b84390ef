package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	apimw "github.com/hamed0406/pingsweep/internal/httpapi/middleware"
	"github.com/hamed0406/pingsweep/internal/report"
	"github.com/hamed0406/pingsweep/internal/scheduler"
)

const shutdownTimeout = 5 * time.Second

type ReportSource interface {
	Snapshot() report.Snapshot
}

type ProgressSource interface {
	Progress() scheduler.Progress
}

// Server exposes the live report of a run.
type Server struct {
	Logger   *zap.Logger
	Report   ReportSource
	Progress ProgressSource
	Keys     []string

	srv *http.Server
}

func NewServer(l *zap.Logger, rep ReportSource, prog ProgressSource, keys []string) *Server {
	return &Server{Logger: l, Report: rep, Progress: prog, Keys: keys}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireKey(s.Keys))
		r.Get("/api/report", s.handleReport)
	})

	return r
}

type reportView struct {
	RunID    string             `json:"run_id"`
	Report   reportCounters     `json:"report"`
	Progress scheduler.Progress `json:"progress"`
}

type reportCounters struct {
	report.Snapshot
	Total int64 `json:"total"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	snap := s.Report.Snapshot()
	prog := s.Progress.Progress()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(reportView{
		RunID:    prog.RunID,
		Report:   reportCounters{Snapshot: snap, Total: snap.Total()},
		Progress: prog,
	})
}

// Start listens on addr and serves in the background. The bound address is
// returned so ":0" can be used.
func (s *Server) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}
	s.srv = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Warn("api_serve_error", zap.Error(err))
		}
	}()
	s.Logger.Info("api_listen", zap.String("addr", ln.Addr().String()))
	return ln.Addr().String(), nil
}

// Shutdown stops the listener, letting in-flight requests finish.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
