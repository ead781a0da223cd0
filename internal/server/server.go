// Package server exposes the parser and an inventory session per
// client over a WebSocket transcript stream.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	mdwerror "github.com/vozinv/vozinv/foundation/core/error"
	"github.com/vozinv/vozinv/internal/currency"
	"github.com/vozinv/vozinv/internal/listener"
	"github.com/vozinv/vozinv/pkg/core/config"
	"github.com/vozinv/vozinv/pkg/core/health"
	"github.com/vozinv/vozinv/pkg/core/logging"
	"github.com/vozinv/vozinv/pkg/core/version"
	"github.com/vozinv/vozinv/pkg/vozparse"
)

// CanaryPhrase is parsed by the parser health check
const CanaryPhrase = "ocho cuarenta y dos mil"

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	AllowedOrigins []string

	// Listener holds the debounce settings of each connection; the
	// logger and result cache are set per connection
	Listener listener.Options

	Currency *currency.Formatter
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         8090,
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 10 * time.Second,
		PingInterval: 30 * time.Second,
		Listener:     listener.Options{Debounce: listener.DefaultDebounce},
	}
}

// ConfigFrom builds a server config from the application config
func ConfigFrom(c *config.Config) (Config, error) {
	formatter, err := currency.New(c.Currency.Locale, c.Currency.Symbol)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Host:           c.Server.Host,
		Port:           c.Server.Port,
		ReadTimeout:    c.Server.ReadTimeout.Duration,
		WriteTimeout:   c.Server.WriteTimeout.Duration,
		PingInterval:   c.Server.PingInterval.Duration,
		AllowedOrigins: c.Server.AllowedOrigins,
		Listener:       listener.OptionsFrom(c.Listener, nil),
		Currency:       formatter,
	}, nil
}

// Server is the transcript server
type Server struct {
	httpServer *http.Server
	cacheCtx   context.Context
	stopCache  context.CancelFunc
	ws         *WebSocketHandler
	health     *health.Registry
	logger     *logging.Logger
	config     Config
}

// New creates a new transcript server
func New(cfg Config, logger *logging.Logger) *Server {
	cfg = withDefaults(cfg)
	if logger == nil {
		logger = logging.New("vozinv-server")
	}

	ws := NewWebSocketHandler(cfg, logger.Named("ws"))

	registry := health.NewRegistry("vozinv", version.Server)
	registry.Register(ParserCheck())
	registry.RegisterFunc("websocket", func(ctx context.Context) health.CheckResult {
		hits, misses, hitRate := ws.Results().Stats()
		return health.CheckResult{
			Name:    "websocket",
			Status:  health.StatusHealthy,
			Message: fmt.Sprintf("%d active connections", ws.Active()),
			Details: map[string]interface{}{
				"connections":    ws.Active(),
				"cache_hits":     hits,
				"cache_misses":   misses,
				"cache_hit_rate": hitRate,
			},
		}
	})

	s := &Server{
		ws:     ws,
		health: registry,
		logger: logger,
		config: cfg,
	}
	s.cacheCtx, s.stopCache = context.WithCancel(context.Background())

	mux := http.NewServeMux()
	mux.Handle("/ws", ws)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           loggingMiddleware(logger, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// withDefaults fills unset timeouts and the currency formatter
func withDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaults.ReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaults.PingInterval
	}
	if cfg.Currency == nil {
		cfg.Currency, _ = currency.New(currency.DefaultLocale, currency.DefaultSymbol)
	}
	return cfg
}

// Reconfigure applies cfg to connections opened from now on. The
// listen address cannot change while running.
func (s *Server) Reconfigure(cfg Config) {
	cfg = withDefaults(cfg)
	if cfg.Host != s.config.Host || cfg.Port != s.config.Port {
		s.logger.Warn("listen address change ignored until restart",
			"current", s.Address(),
			"requested", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		)
	}
	s.ws.Reconfigure(cfg)
	s.logger.Info("transcript server reconfigured",
		"debounce", cfg.Listener.Debounce,
		"min_length", cfg.Listener.MinLength,
	)
}

// ParserCheck parses CanaryPhrase and reports unhealthy on any mismatch
func ParserCheck() health.Checker {
	return health.ProbeCheck("parser", func(ctx context.Context) error {
		record, ok := vozparse.Parse(CanaryPhrase).(vozparse.Record)
		if !ok {
			return mdwerror.Newf("canary %q not understood", CanaryPhrase).WithCode(mdwerror.CodeInternal)
		}
		if record.Quantity != 8 || record.UnitPrice != 42000 {
			return mdwerror.Newf("canary parsed as %d x %d", record.Quantity, record.UnitPrice).WithCode(mdwerror.CodeInternal)
		}
		return nil
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report := s.health.Check(r.Context())
	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(report)
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
		)
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the underlying writer to http.ResponseController
func (w *responseWrapper) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack lets the WebSocket upgrader take over the connection
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.statusCode = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens on the configured address and serves until Stop
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return mdwerror.Wrap(err, "failed to listen").
			WithCode(mdwerror.CodeServiceInitialization).
			WithDetail("address", s.httpServer.Addr)
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener. It returns nil after Stop.
func (s *Server) Serve(listener net.Listener) error {
	go s.ws.Results().Run(s.cacheCtx, time.Minute)

	s.logger.Info("transcript server listening", "address", listener.Addr().String())
	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops the server and closes open streams
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping transcript server")
	s.stopCache()
	s.ws.CloseAll()
	return s.httpServer.Shutdown(ctx)
}

// Address returns the server address
func (s *Server) Address() string {
	return s.httpServer.Addr
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}
