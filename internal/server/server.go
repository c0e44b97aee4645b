package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/llm"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/server/middleware"
	"github.com/jonathan/cv-builder/internal/server/ratelimit"
	"github.com/jonathan/cv-builder/internal/store"
	"golang.org/x/sync/errgroup"
)

// DefaultIntakeTimeout bounds one AI intake request.
const DefaultIntakeTimeout = 2 * time.Minute

// sessionCleanupInterval is how often idle workspaces are looked for.
const sessionCleanupInterval = 10 * time.Minute

// Server represents the HTTP server
type Server struct {
	httpServer    *http.Server
	workspaces    *Workspaces
	tokens        *SessionTokens
	exporter      *export.Exporter
	rateLimiter   *ratelimit.Limiter
	template      string
	intakeTimeout time.Duration
	verbose       bool
}

// Config holds server configuration
type Config struct {
	Port          string
	Template      string // Default template id
	StorageKey    string // Prefix of every session's storage key
	Verbose       bool
	Session       *config.SessionConfig // Nil generates an ephemeral secret
	RateLimit     *ratelimit.Config     // Nil reads RATE_LIMIT_* variables
	IntakeTimeout time.Duration
	SessionIdle   time.Duration // How long an unused session stays in memory; zero means one hour
}

// Deps are the collaborators the server does not own.
type Deps struct {
	KV      store.KV
	LLM     llm.Client // Nil disables AI intake
	Printer export.Printer
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.KV == nil {
		return nil, fmt.Errorf("server requires a storage backend")
	}
	if deps.Printer == nil {
		return nil, fmt.Errorf("server requires a PDF printer")
	}

	session := cfg.Session
	if session == nil {
		var err error
		session, err = config.EphemeralSessionConfig()
		if err != nil {
			return nil, err
		}
	}

	limits := cfg.RateLimit
	if limits == nil {
		limits = ratelimit.LoadConfig()
	}

	workspaces := NewWorkspaces(deps.KV, cfg.StorageKey, deps.LLM, cfg.Verbose,
		WithIdleTTL(cfg.SessionIdle), WithCleanupInterval(sessionCleanupInterval))

	s := &Server{
		workspaces:    workspaces,
		tokens:        NewSessionTokens(session),
		exporter:      export.NewExporter(deps.Printer, export.WithVerbose(cfg.Verbose)),
		rateLimiter:   ratelimit.NewLimiter(limits),
		template:      string(rendering.Lookup(cfg.Template).ID()),
		intakeTimeout: cfg.IntakeTimeout,
		verbose:       cfg.Verbose,
	}
	if s.intakeTimeout <= 0 {
		s.intakeTimeout = DefaultIntakeTimeout
	}

	mux := http.NewServeMux()

	// Pages
	mux.HandleFunc("GET /{$}", s.handleLanding)
	mux.HandleFunc("GET /builder", s.handleBuilder)
	mux.HandleFunc("GET /preview", s.handlePreview)
	mux.HandleFunc("GET /export.pdf", s.handleExport)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Record editing
	mux.HandleFunc("GET /api/record", s.handleGetRecord)
	mux.HandleFunc("PUT /api/personal/{field}", s.handleSetPersonal)
	mux.HandleFunc("PUT /api/summary", s.handleSetSummary)
	mux.HandleFunc("PUT /api/headings/{section}", s.handleSetHeading)
	mux.HandleFunc("POST /api/sections/{section}", s.handleAddEntry)
	mux.HandleFunc("PATCH /api/sections/{section}/{id}", s.handleUpdateEntry)
	mux.HandleFunc("DELETE /api/sections/{section}/{id}", s.handleRemoveEntry)
	mux.HandleFunc("POST /api/skills/{group}", s.handleAddSkill)
	mux.HandleFunc("DELETE /api/skills/{group}", s.handleRemoveSkill)
	mux.HandleFunc("POST /api/inline", s.handleInline)

	// AI intake
	mux.HandleFunc("POST /api/intake/open", s.handleIntakeOpen)
	mux.HandleFunc("POST /api/intake", s.handleIntakeSubmit)
	mux.HandleFunc("GET /api/intake", s.handleIntakeStatus)
	mux.HandleFunc("DELETE /api/intake", s.handleIntakeClose)

	sessions := middleware.Sessions(s.tokens)
	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(sessions(mux)))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.intakeTimeout + 30*time.Second, // Intake and export wait on external calls
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("[SERVER] Listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("[SERVER] Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.Close()
	log.Println("[SERVER] Stopped")
	return err
}

// Close stops background work: both cleanup loops and open intake dialogs.
func (s *Server) Close() {
	s.workspaces.Stop()
	s.workspaces.Close()
	s.rateLimiter.Stop()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		if s.verbose {
			log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		}
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"sessions":   s.workspaces.Len(),
		"ai_enabled": s.workspaces.llm != nil,
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[SERVER] Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// failure writes err with the status HTTPStatus assigns it.
func (s *Server) failure(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[SERVER] Request failed: %v", err)
	}
	s.errorResponse(w, status, err.Error())
}

// extractClientID extracts the client identifier from the request.
// It uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
