package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/msto63/nic/pkg/core/config"
	"github.com/msto63/nic/pkg/core/health"
	"github.com/msto63/nic/pkg/core/logging"
	"github.com/msto63/nic/pkg/core/version"
	"github.com/msto63/nic/pkg/nic/command"
)

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	PingInterval   time.Duration
	MaxFrameSize   int64
	AllowedOrigins []string
	Prefix         string // Shown in command usage of /commands
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         8420,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		PingInterval: 30 * time.Second,
		MaxFrameSize: 64 * 1024,
		Prefix:       "!",
	}
}

// FromConfig maps the [gateway] section of the configuration
func FromConfig(cfg *config.Config) Config {
	prefix := ""
	if len(cfg.Parsing.Prefixes) > 0 {
		prefix = cfg.Parsing.Prefixes[0]
	}
	return Config{
		Host:           cfg.Gateway.Host,
		Port:           cfg.Gateway.Port,
		ReadTimeout:    cfg.Gateway.ReadTimeout.Duration,
		WriteTimeout:   cfg.Gateway.WriteTimeout.Duration,
		IdleTimeout:    cfg.Gateway.IdleTimeout.Duration,
		PingInterval:   cfg.Gateway.PingInterval.Duration,
		MaxFrameSize:   cfg.Gateway.MaxFrameSize,
		AllowedOrigins: cfg.Gateway.AllowedOrigins,
		Prefix:         prefix,
	}
}

// Server is the chat gateway: WebSocket endpoint, health report and command
// listing
type Server struct {
	httpServer *http.Server
	ws         *Handler
	dispatcher *command.Dispatcher
	health     *health.Registry
	logger     *zap.Logger
	config     Config
}

// New creates a gateway server. A nil health registry is replaced by one
// that checks the command registry.
func New(cfg Config, dispatcher *command.Dispatcher, healthRegistry *health.Registry, logger *zap.Logger) *Server {
	logger = logging.Component(logger, "gateway")

	if healthRegistry == nil {
		healthRegistry = health.NewRegistry("nic-gateway", version.Gateway)
		healthRegistry.Register(health.CountCheck("commands", 1, dispatcher.Registry().Len))
	}

	ws := NewHandler(dispatcher, HandlerOptions{
		Logger:         logger,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		PingInterval:   cfg.PingInterval,
		MaxFrameSize:   cfg.MaxFrameSize,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	s := &Server{
		ws:         ws,
		dispatcher: dispatcher,
		health:     healthRegistry,
		logger:     logger,
		config:     cfg,
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       cfg.IdleTimeout,
	}

	return s
}

// Routes returns the HTTP routes of the gateway
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", s.ws)
	mux.Handle("/health", s.health.Handler(5*time.Second))
	mux.HandleFunc("/commands", s.handleCommands)
	return loggingMiddleware(s.logger, mux)
}

// CommandInfo describes a registered command for /commands
type CommandInfo struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases,omitempty"`
	Usage       string   `json:"usage"`
	Description string   `json:"description,omitempty"`
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	commands := s.dispatcher.Registry().Commands()
	infos := make([]CommandInfo, len(commands))
	for i, cmd := range commands {
		infos[i] = CommandInfo{
			Name:        cmd.Name,
			Aliases:     cmd.Aliases,
			Usage:       cmd.Usage(s.config.Prefix),
			Description: cmd.Description,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(infos)
}

// Run listens on the configured address and serves until ctx is done
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully:
// HTTP requests are drained and WebSocket connections receive a close frame.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("Starting gateway", zap.String("address", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.ws.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down gateway")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.ws.Close()
	<-errCh

	if err != nil {
		return fmt.Errorf("gateway shutdown: %w", err)
	}
	return nil
}

// Connections returns the number of open WebSocket connections
func (s *Server) Connections() int {
	return s.ws.Connections()
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapper.statusCode),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// responseWrapper wraps http.ResponseWriter to capture the status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
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
