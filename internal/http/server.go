// Package http exposes the data layer as a JSON API. The UI that
// consumes it lives elsewhere; only the contract is served here.
package http

import (
	"net/http"
	"time"

	applog "finbit/internal/log"
	"finbit/internal/markets"
	"finbit/internal/services"
)

type Server struct {
	finance *services.FinanceService
	markets *markets.Service
	logger  *applog.Logger
}

// NewServer wires the API routes and middleware into an http.Server.
// The markets service may be nil; the widget endpoint then returns 404.
func NewServer(addr string, finance *services.FinanceService, quotes *markets.Service, logger *applog.Logger) *http.Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		finance: finance,
		markets: quotes,
		logger:  logger.WithComponent(applog.ComponentHTTP),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)

	mux.HandleFunc("GET /api/summary", s.requireAuth(s.handleSummary))
	mux.HandleFunc("GET /api/transactions", s.requireAuth(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.requireAuth(s.handleAddTransaction))

	mux.HandleFunc("GET /api/goals", s.requireAuth(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.requireAuth(s.handleAddGoal))
	mux.HandleFunc("PUT /api/goals/{id}/amount", s.requireAuth(s.handleUpdateGoalAmount))
	mux.HandleFunc("POST /api/goals/{id}/refresh", s.requireAuth(s.handleRefreshGoal))

	if quotes != nil {
		mux.HandleFunc("GET /api/markets", s.handleMarkets)
	}

	handler := applog.Middleware(logger)(s.logRequests(mux))

	return &http.Server{
		Addr:    addr,
		Handler: handler,
	}
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		requestID := generateRequestID()

		next.ServeHTTP(rec, r)

		s.logger.InfoContext(r.Context(), "Request handled",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rec.status,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldSuccess, rec.status < 400,
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMarkets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.markets.Snapshot())
}
