// Package http serves the GraphQL API and the operational endpoints.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/backend"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
)

// Config holds the transport settings.
type Config struct {
	Addr               string
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	TrustedProxies     []string
}

type Server struct {
	http.Server
	logger  *applog.Logger
	health  backend.HealthChecker
	started time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer routes /graphql through the full middleware chain. The
// operational endpoints skip rate limiting.
func NewServer(cfg Config, graphql http.Handler, health backend.HealthChecker, logger *applog.Logger) (*Server, error) {
	logger = logger.WithComponent(applog.ComponentHTTP)
	detector := security.NewDetector()
	for _, cidr := range cfg.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	s := &Server{
		logger:  logger,
		health:  health,
		started: time.Now(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
		}),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(logger, detector.ExtractClientIP),
	}

	api := chain(graphql,
		s.securityDetector.Middleware(logger),
		s.rateLimiter.Middleware(detector.ExtractClientIP, s.handleRateLimited),
	)

	mux := http.NewServeMux()
	mux.Handle("/graphql", api)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	s.Server = http.Server{
		Addr: cfg.Addr,
		Handler: chain(mux,
			s.traceMiddleware.Middleware,
			security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
			security.CORSMiddleware(security.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins, MaxAge: 600}),
		),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s, nil
}

// chain wraps h so the first middleware is the outermost.
func chain(h http.Handler, middleware ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
