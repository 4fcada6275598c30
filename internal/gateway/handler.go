// ============================================================================
// nic - Chat-Kommando-Framework
// ============================================================================
//
// Package:     gateway
// Description: WebSocket handler feeding chat messages into the dispatcher
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/msto63/nic/pkg/core/logging"
	"github.com/msto63/nic/pkg/nic/command"
)

// Dispatcher executes chat messages
type Dispatcher interface {
	Dispatch(ctx context.Context, msg command.Message) ([]*command.Result, error)
}

// HandlerOptions configures a Handler
type HandlerOptions struct {
	Logger         *zap.Logger
	ReadTimeout    time.Duration // Read deadline, extended by every pong (default: 60s)
	WriteTimeout   time.Duration // Deadline per outbound frame (default: 10s)
	PingInterval   time.Duration // Keepalive pings (default: 30s)
	MaxFrameSize   int64         // Inbound frame limit in bytes (default: 64KiB)
	AllowedOrigins []string      // Empty allows every origin
}

func (o *HandlerOptions) applyDefaults() {
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 60 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 30 * time.Second
	}
	// Pings must arrive before the read deadline expires
	if o.PingInterval >= o.ReadTimeout {
		o.PingInterval = o.ReadTimeout * 9 / 10
	}
	if o.MaxFrameSize <= 0 {
		o.MaxFrameSize = 64 * 1024
	}
}

// Handler serves WebSocket connections. Messages of one connection are
// dispatched sequentially, connections run independently.
type Handler struct {
	dispatcher Dispatcher
	logger     *zap.Logger
	options    HandlerOptions
	upgrader   websocket.Upgrader

	// ctx is canceled by Close and ends in-flight dispatches
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	conns  map[*connection]struct{}
	closed bool
	wg     sync.WaitGroup
}

// NewHandler creates a WebSocket handler for the dispatcher
func NewHandler(dispatcher Dispatcher, opts HandlerOptions) *Handler {
	opts.applyDefaults()

	h := &Handler{
		dispatcher: dispatcher,
		logger:     logging.Component(opts.Logger, "websocket"),
		options:    opts,
		conns:      make(map[*connection]struct{}),
	}
	h.ctx, h.cancel = context.WithCancel(context.Background())
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.options.AllowedOrigins) == 0 {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}

	for _, allowed := range h.options.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) || strings.EqualFold(allowed, u.Host) {
			return true
		}
	}
	return false
}

// ServeHTTP upgrades the request and serves the connection until it closes
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		http.Error(w, "gateway is shutting down", http.StatusServiceUnavailable)
		return
	}
	h.wg.Add(1)
	h.mu.Unlock()
	defer h.wg.Done()

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	c := &connection{
		ws:      ws,
		timeout: h.options.WriteTimeout,
		logger:  h.logger.With(zap.String("remote", ws.RemoteAddr().String())),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		c.close(websocket.CloseGoingAway, "server shutdown")
		return
	}
	h.conns[c] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.conns, c)
		h.mu.Unlock()
	}()

	h.serve(c)
}

// Close ends all open connections and waits for their handlers to return.
// Later upgrade requests are rejected.
func (h *Handler) Close() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*connection, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	h.cancel()
	for _, c := range conns {
		c.close(websocket.CloseGoingAway, "server shutdown")
	}
	h.wg.Wait()
}

// Connections returns the number of open connections
func (h *Handler) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Handler) serve(c *connection) {
	defer c.ws.Close()

	c.logger.Info("WebSocket connection established")

	ctx, cancel := context.WithCancel(h.ctx)
	defer cancel()

	c.ws.SetReadLimit(h.options.MaxFrameSize)
	c.ws.SetReadDeadline(time.Now().Add(h.options.ReadTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(h.options.ReadTimeout))
	})

	pingDone := make(chan struct{})
	go func() {
		defer close(pingDone)
		c.keepalive(ctx, h.options.PingInterval)
	}()
	defer func() {
		cancel()
		<-pingDone
	}()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("WebSocket read error", zap.Error(err))
			} else {
				c.logger.Info("WebSocket connection closed")
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.sendError("", CodeInvalidFrame, "frame is not valid JSON")
			continue
		}

		switch frame.Type {
		case TypePing:
			c.send(Response{Type: TypePong})

		case TypeMessage:
			var payload MessagePayload
			if err := json.Unmarshal(frame.Payload, &payload); err != nil {
				c.sendError("", CodeInvalidPayload, "invalid message payload")
				continue
			}
			h.handleMessage(ctx, c, payload)

		default:
			c.sendError("", CodeUnknownType, "unknown frame type: "+frame.Type)
		}
	}
}

// handleMessage dispatches one chat message and answers with reply, ignored
// or error
func (h *Handler) handleMessage(ctx context.Context, c *connection, payload MessagePayload) {
	results, err := h.dispatcher.Dispatch(ctx, command.Message{
		Content: payload.Content,
		Author:  payload.Author,
		Channel: payload.Channel,
	})

	switch {
	case err == nil:
		outputs := make([]Output, len(results))
		for i, r := range results {
			outputs[i] = Output{
				InvocationID: r.Invocation.ID,
				Command:      r.Invocation.Command.Name,
				Output:       r.Output,
				DurationMS:   r.Duration.Milliseconds(),
			}
		}
		c.send(Response{Type: TypeReply, Payload: ReplyPayload{ID: payload.ID, Outputs: outputs}})

	case command.IsIgnorable(err):
		c.send(Response{Type: TypeIgnored, Payload: IgnoredPayload{ID: payload.ID, Code: command.Code(err)}})

	default:
		c.sendError(payload.ID, command.Code(err), err.Error())
	}
}

// connection serializes writes to one WebSocket
type connection struct {
	ws      *websocket.Conn
	timeout time.Duration
	logger  *zap.Logger
	mu      sync.Mutex
}

func (c *connection) send(resp Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(c.timeout))
	if err := c.ws.WriteJSON(resp); err != nil {
		c.logger.Warn("WebSocket send error", zap.Error(err))
	}
}

func (c *connection) sendError(id, code, message string) {
	c.send(Response{
		Type: TypeError,
		Payload: ErrorPayload{
			ID:      id,
			Code:    code,
			Message: message,
		},
	})
}

func (c *connection) keepalive(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.timeout))
			c.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// close sends a close frame and closes the socket, which ends the read loop
func (c *connection) close(code int, reason string) {
	c.mu.Lock()
	c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(c.timeout))
	c.mu.Unlock()
	c.ws.Close()
}
