package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/khanhnv2901/srvdiag/internal/api/middleware"
	"github.com/khanhnv2901/srvdiag/internal/checker"
	"github.com/khanhnv2901/srvdiag/internal/report"
	sharedErrors "github.com/khanhnv2901/srvdiag/internal/shared/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DiagnosticsService runs one full diagnostic pass.
type DiagnosticsService interface {
	Run(ctx context.Context) checker.Report
}

type Config struct {
	Diagnostics DiagnosticsService
	Metrics     http.Handler  // served at /metrics when set
	CacheTTL    time.Duration // reuse the last report for this long
	Logger      *zap.Logger
	RateLimit   int // Diagnostic runs per second per IP (0 = disabled)
	RateBurst   int // Burst size for rate limiter
}

type Server struct {
	cfg      Config
	router   *mux.Router
	limiters *rateLimiterMap

	mu     sync.Mutex
	last   *checker.Report
	lastAt time.Time
	now    func() time.Time
}

func NewServer(cfg Config) *Server {
	srv := &Server{
		cfg:      cfg,
		router:   mux.NewRouter(),
		limiters: newRateLimiterMap(),
		now:      time.Now,
	}
	srv.routes()
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// RequestID -> Logging -> Router
	handler := middleware.RequestID(s.withLogging(s.router))
	handler.ServeHTTP(w, r)
}

// Close stops the background limiter cleanup. It is safe to call more than once.
func (s *Server) Close() {
	s.limiters.stop()
}

func (s *Server) routes() {
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowed)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusNotFound, errNotFound)
	})

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	v1.Handle("/diagnostics", s.withRateLimit(http.HandlerFunc(s.handleDiagnostics))).Methods(http.MethodGet)

	if s.cfg.Metrics != nil {
		s.router.Handle("/metrics", s.cfg.Metrics).Methods(http.MethodGet)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDiagnostics returns the latest report, running the checks when the
// cached one is older than CacheTTL or ?fresh=true is given. ?format=text
// returns the console transcript instead of JSON.
func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Diagnostics == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, errNoDiagnostics)
		return
	}

	// The report is cached for other clients, so a disconnect must not cut it short.
	rep := s.report(context.WithoutCancel(r.Context()), r.URL.Query().Get("fresh") == "true")

	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "", "json":
		writeJSON(w, http.StatusOK, struct {
			checker.Report
			Summary report.Summary `json:"summary"`
		}{rep, report.Summarize(rep)})
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := report.WritePlainText(w, rep); err != nil {
			s.requestLogger(r).Error("failed to write response", zap.Error(err))
		}
	default:
		s.writeError(w, r, http.StatusBadRequest, sharedErrors.ErrInvalidOutputFormat)
	}
}

// report serialises runs: concurrent requests wait for one pass instead of
// shelling out in parallel.
func (s *Server) report(ctx context.Context, fresh bool) checker.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !fresh && s.last != nil && s.now().Sub(s.lastAt) < s.cfg.CacheTTL {
		return *s.last
	}

	rep := s.cfg.Diagnostics.Run(ctx)
	s.last = &rep
	s.lastAt = s.now()
	return rep
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip rate limiting if disabled
		if s.cfg.RateLimit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		clientIP := clientIPFromRequest(r)
		limiter := s.limiters.getLimiter(clientIP, s.cfg.RateLimit, s.cfg.RateBurst)

		if !limiter.Allow() {
			s.requestLogger(r).Warn("rate_limit_exceeded", zap.String("client_ip", clientIP))
			s.writeError(w, r, http.StatusTooManyRequests, sharedErrors.ErrRateLimited)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIPFromRequest(r *http.Request) string {
	clientIP := r.RemoteAddr
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// Use first IP in X-Forwarded-For chain
		if idx := strings.Index(forwarded, ","); idx > 0 {
			clientIP = strings.TrimSpace(forwarded[:idx])
		} else {
			clientIP = strings.TrimSpace(forwarded)
		}
	}
	// Remove port if present
	if idx := strings.LastIndex(clientIP, ":"); idx > 0 && !strings.HasSuffix(clientIP, "]") {
		clientIP = clientIP[:idx]
	}
	return clientIP
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(lrw, r)

		if s.cfg.Logger != nil {
			s.cfg.Logger.Info("http_request",
				zap.String("request_id", middleware.GetRequestID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Int("status", lrw.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.Int64("bytes", lrw.bytesWritten),
			)
		}
	})
}

// loggingResponseWriter wraps http.ResponseWriter to capture status code and bytes written
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.bytesWritten += int64(n)
	return n, err
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := err.Error()

	// For 5xx errors, return generic message and log details server-side
	if status >= 500 {
		s.requestLogger(r).Error("internal_server_error",
			zap.Error(err),
			zap.Int("status", status),
		)
		msg = "internal server error"
	}

	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLogger creates a logger with request context (request ID, method, path)
func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	if s.cfg.Logger == nil {
		return zap.NewNop()
	}

	return s.cfg.Logger.With(
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, http.StatusMethodNotAllowed, errMethodNotAllowed)
}

// rateLimiterMap manages per-IP rate limiters with automatic cleanup
type rateLimiterMap struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter

	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiterMap() *rateLimiterMap {
	m := &rateLimiterMap{
		limiters: make(map[string]*ipLimiter),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go m.cleanupLoop()
	return m
}

func (m *rateLimiterMap) stop() {
	m.stopOnce.Do(func() { close(m.done) })
	<-m.stopped
}

func (m *rateLimiterMap) getLimiter(ip string, rps, burst int) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if burst <= 0 {
		burst = 1
	}

	limiter, exists := m.limiters[ip]
	if !exists {
		limiter = &ipLimiter{
			limiter:  rate.NewLimiter(rate.Limit(rps), burst),
			lastSeen: time.Now(),
		}
		m.limiters[ip] = limiter
	} else {
		limiter.lastSeen = time.Now()
	}

	return limiter.limiter
}

// cleanupLoop removes limiters that haven't been used in 5 minutes
func (m *rateLimiterMap) cleanupLoop() {
	defer close(m.stopped)
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.mu.Lock()
			for ip, limiter := range m.limiters {
				if time.Since(limiter.lastSeen) > 5*time.Minute {
					delete(m.limiters, ip)
				}
			}
			m.mu.Unlock()
		}
	}
}
