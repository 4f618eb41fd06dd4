// Package server exposes the attendance engine to a local UI over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"adeelasgher847/attendance-agent/internal/events"
	"adeelasgher847/attendance-agent/internal/journal"
	"adeelasgher847/attendance-agent/internal/location"
	"adeelasgher847/attendance-agent/internal/models"
	"adeelasgher847/attendance-agent/internal/service"
	"adeelasgher847/attendance-agent/internal/status"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type AttendanceService interface {
	Submit(ctx context.Context, rawType string, pos *location.Position) (models.AttendanceEvent, error)
	CheckIn(ctx context.Context) (models.AttendanceEvent, error)
	CheckOut(ctx context.Context) (models.AttendanceEvent, error)
	TodaySummary(ctx context.Context) (models.TodaySummary, error)
	History(ctx context.Context, from, to time.Time) ([]models.DailyAttendanceSummary, error)
}

type SessionService interface {
	ClockIn(ctx context.Context) (service.SessionSnapshot, error)
	ClockOut(ctx context.Context) (service.SessionSnapshot, error)
	Snapshot() service.SessionSnapshot
}

type ApprovalService interface {
	TeamToday(ctx context.Context) ([]models.TeamCheckInRow, error)
	BulkEnabled() bool
	Approve(ctx context.Context, eventID string) error
	Disapprove(ctx context.Context, eventID string) error
	ApproveAll(ctx context.Context) (int, error)
	DisapproveAll(ctx context.Context) (int, error)
}

type StatusReader interface {
	Get(ctx context.Context, force bool) status.Status
}

type VisibilityTracker interface {
	SetVisible(ctx context.Context, visible bool) bool
}

type JournalReader interface {
	List(ctx context.Context, kind string, limit int) ([]journal.Entry, error)
}

// Deps groups the components the API serves. Journal and Hub may be nil.
type Deps struct {
	Attendance AttendanceService
	Sessions   SessionService
	Approvals  ApprovalService
	Status     StatusReader
	Visibility VisibilityTracker
	Journal    JournalReader
	Hub        *events.Hub
	Location   *time.Location
}

// Server is the localhost API consumed by the desktop or browser UI
type Server struct {
	deps       Deps
	httpServer *http.Server
	logger     *zap.Logger
}

// New creates the server listening on localhost:port
func New(port int, allowedOrigins []string, deps Deps, logger *zap.Logger) *Server {
	if deps.Location == nil {
		deps.Location = time.Local
	}
	s := &Server{deps: deps, logger: logger}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("localhost:%d", port),
		Handler:      s.Router(allowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // the events stream stays open
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Router builds the chi router
func (s *Server) Router(allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Post("/visibility", s.handleVisibility)
		r.Get("/events", s.handleEvents)
		r.Get("/journal", s.handleJournal)

		r.Get("/today", s.handleToday)
		r.Get("/history", s.handleHistory)
		r.Post("/attendance/{type}", s.handleAttendance)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleSession)
			r.Post("/clock-in", s.handleClockIn)
			r.Post("/clock-out", s.handleClockOut)
		})

		r.Route("/team", func(r chi.Router) {
			r.Get("/today", s.handleTeamToday)
			r.Post("/approve-all", s.handleApproveAll)
			r.Post("/disapprove-all", s.handleDisapproveAll)
			r.Post("/{eventID}/approve", s.handleApprove)
			r.Post("/{eventID}/disapprove", s.handleDisapprove)
		})
	})

	return r
}

// Start serves in the background and returns once the listener is bound
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		s.logger.Info("Starting local API server", zap.String("address", s.httpServer.Addr))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Local API server error", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	s.logger.Info("Local API server stopped")
	return nil
}
