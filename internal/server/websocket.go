package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	mdwerror "github.com/vozinv/vozinv/foundation/core/error"
	"github.com/vozinv/vozinv/internal/inventory"
	"github.com/vozinv/vozinv/internal/listener"
	"github.com/vozinv/vozinv/pkg/core/cache"
	"github.com/vozinv/vozinv/pkg/core/logging"
	"github.com/vozinv/vozinv/pkg/vozparse"
)

// Message types sent by clients
const (
	TypePing       = "ping"
	TypeTranscript = "transcript"
	TypeEdit       = "edit"
	TypeDelete     = "delete"
	TypeSnapshot   = "snapshot"
	TypeReset      = "reset"
)

// Message types sent by the server
const (
	TypePong         = "pong"
	TypeRecord       = "record"
	TypeDeleted      = "deleted"
	TypeUnrecognized = "unrecognized"
	TypeSession      = "session"
	TypeError        = "error"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WSResponse represents a WebSocket response
type WSResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// TranscriptPayload carries a live or final transcript
type TranscriptPayload struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// EditPayload replaces quantity and unit price of the item at Index
type EditPayload struct {
	Index     int        `json:"index"`
	Quantity  NumberText `json:"quantity"`
	UnitPrice NumberText `json:"unit_price"`
}

// DeletePayload removes the item at Index
type DeletePayload struct {
	Index int `json:"index"`
}

// RecordPayload reports an added or edited item
type RecordPayload struct {
	Action         string         `json:"action"`
	Index          int            `json:"index"`
	Item           inventory.Item `json:"item"`
	Count          int            `json:"count"`
	Total          int64          `json:"total"`
	TotalFormatted string         `json:"total_formatted"`
}

// DeletedPayload reports the session after a removal
type DeletedPayload struct {
	Item           *inventory.Item `json:"item,omitempty"`
	Count          int             `json:"count"`
	Total          int64           `json:"total"`
	TotalFormatted string          `json:"total_formatted"`
}

// UnrecognizedPayload echoes text the parser could not interpret
type UnrecognizedPayload struct {
	Text string `json:"text"`
}

// SessionPayload wraps a session snapshot
type SessionPayload struct {
	Snapshot inventory.Snapshot `json:"snapshot"`
}

// WSErrorPayload represents an error payload
type WSErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NumberText accepts a JSON number or string and keeps its text, so
// validation happens in one place
type NumberText string

// UnmarshalJSON implements json.Unmarshaler
func (n *NumberText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = NumberText(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = NumberText(num.String())
	return nil
}

// WebSocketHandler serves /ws. Each connection owns one inventory session.
type WebSocketHandler struct {
	cfgMu    sync.RWMutex
	config   Config
	logger   *logging.Logger
	upgrader websocket.Upgrader
	results  *cache.Cache[string, vozparse.Result]

	active atomic.Int64
	mu     sync.Mutex
	conns  map[*connection]struct{}
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cfg Config, logger *logging.Logger) *WebSocketHandler {
	h := &WebSocketHandler{
		config:  cfg,
		logger:  logger,
		results: cache.New[string, vozparse.Result](cache.DefaultConfig()),
		conns:   make(map[*connection]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin accepts clients without an Origin header and, when an
// allow list is configured, only the listed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origins := h.Config().AllowedOrigins
	origin := r.Header.Get("Origin")
	if origin == "" || len(origins) == 0 {
		return true
	}
	for _, allowed := range origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// Config returns the configuration used for new connections
func (h *WebSocketHandler) Config() Config {
	h.cfgMu.RLock()
	defer h.cfgMu.RUnlock()
	return h.config
}

// Reconfigure replaces the configuration for new connections. Open
// connections keep the settings they started with.
func (h *WebSocketHandler) Reconfigure(cfg Config) {
	h.cfgMu.Lock()
	h.config = cfg
	h.cfgMu.Unlock()
}

// Results returns the parse cache shared by all connections
func (h *WebSocketHandler) Results() *cache.Cache[string, vozparse.Result] {
	return h.results
}

// Active returns the number of open connections
func (h *WebSocketHandler) Active() int64 {
	return h.active.Load()
}

// CloseAll closes every open connection
func (h *WebSocketHandler) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		c.ws.Close()
	}
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cfg := h.Config()
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	id := uuid.New().String()
	logger := h.logger.With("conn_id", id)
	c := &connection{
		id:      id,
		ws:      ws,
		cfg:     cfg,
		logger:  logger,
		session: inventory.NewSession(logger),
		results: h.results,
	}

	h.track(c, true)
	defer h.track(c, false)

	c.serve(r.Context())
}

func (h *WebSocketHandler) track(c *connection, open bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if open {
		h.conns[c] = struct{}{}
		h.active.Add(1)
		return
	}
	delete(h.conns, c)
	h.active.Add(-1)
}

// connection is one client stream
type connection struct {
	id      string
	ws      *websocket.Conn
	cfg     Config
	logger  *logging.Logger
	session *inventory.Session
	results *cache.Cache[string, vozparse.Result]
	writeMu sync.Mutex
}

func (c *connection) serve(parent context.Context) {
	defer c.ws.Close()

	c.logger.Info("WebSocket connection established", "remote", c.ws.RemoteAddr().String())

	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	opts := c.cfg.Listener
	opts.Logger = c.logger
	opts.Results = c.results
	l := listener.New(c.onEvent, opts)
	wg.Add(2)
	go func() {
		defer wg.Done()
		l.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		c.pingLoop(ctx)
	}()

	c.ws.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	})

	for {
		var msg WSMessage
		if err := c.ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket read error", "error", err)
			} else {
				c.logger.Info("WebSocket connection closed", "records", c.session.Len())
			}
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
		c.dispatch(l, msg)
	}
}

func (c *connection) dispatch(l *listener.Listener, msg WSMessage) {
	switch msg.Type {
	case TypePing:
		c.send(WSResponse{Type: TypePong})

	case TypeTranscript:
		var p TranscriptPayload
		if !c.decode(msg, &p) {
			return
		}
		l.Submit(p.Text)
		if p.Final {
			l.Flush()
		}

	case TypeEdit:
		var p EditPayload
		if !c.decode(msg, &p) {
			return
		}
		item, err := c.session.Edit(p.Index, string(p.Quantity), string(p.UnitPrice))
		if err != nil {
			c.sendErr(err)
			return
		}
		count, total := c.session.Totals()
		c.sendRecord("edited", p.Index, item, count, total)

	case TypeDelete:
		var p DeletePayload
		if !c.decode(msg, &p) {
			return
		}
		item, err := c.session.DeleteAt(p.Index)
		if err != nil {
			c.sendErr(err)
			return
		}
		count, total := c.session.Totals()
		c.sendDeleted(&item, count, total)

	case TypeSnapshot:
		c.send(WSResponse{Type: TypeSession, Payload: SessionPayload{Snapshot: c.session.Snapshot()}})

	case TypeReset:
		c.session.Reset()
		c.send(WSResponse{Type: TypeSession, Payload: SessionPayload{Snapshot: c.session.Snapshot()}})

	default:
		c.sendError("unknown_type", "Unknown message type: "+msg.Type)
	}
}

// onEvent runs on the listener goroutine
func (c *connection) onEvent(e listener.Event) {
	if e.Result == nil {
		c.send(WSResponse{Type: TypeUnrecognized, Payload: UnrecognizedPayload{Text: e.Text}})
		return
	}

	out, err := c.session.Apply(e.Result)
	if err != nil {
		c.sendErr(err)
		return
	}

	switch out.Kind {
	case inventory.Added:
		c.sendRecord("added", out.Index, out.Item, out.Count, out.Total)
	case inventory.Deleted:
		c.sendDeleted(&out.Item, out.Count, out.Total)
	default:
		c.sendDeleted(nil, out.Count, out.Total)
	}
}

func (c *connection) sendRecord(action string, index int, item inventory.Item, count int, total int64) {
	c.send(WSResponse{Type: TypeRecord, Payload: RecordPayload{
		Action:         action,
		Index:          index,
		Item:           item,
		Count:          count,
		Total:          total,
		TotalFormatted: c.cfg.Currency.Format(total),
	}})
}

func (c *connection) sendDeleted(item *inventory.Item, count int, total int64) {
	c.send(WSResponse{Type: TypeDeleted, Payload: DeletedPayload{
		Item:           item,
		Count:          count,
		Total:          total,
		TotalFormatted: c.cfg.Currency.Format(total),
	}})
}

func (c *connection) decode(msg WSMessage, v interface{}) bool {
	if len(msg.Payload) == 0 {
		c.sendError("invalid_payload", "Missing "+msg.Type+" payload")
		return false
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		c.sendError("invalid_payload", "Invalid "+msg.Type+" payload")
		return false
	}
	return true
}

func (c *connection) sendErr(err error) {
	code := mdwerror.GetCode(err)
	message := err.Error()
	var e *mdwerror.Error
	if errors.As(err, &e) {
		message = e.Message()
	}
	c.logger.Debug("request rejected", "code", string(code), "error", err)
	c.sendError(string(code), message)
}

func (c *connection) sendError(code, message string) {
	c.send(WSResponse{Type: TypeError, Payload: WSErrorPayload{Code: code, Message: message}})
}

// send writes one JSON message. Writes are serialized per connection.
func (c *connection) send(resp WSResponse) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	if err := c.ws.WriteJSON(resp); err != nil {
		c.logger.Warn("WebSocket send error", "error", err)
	}
}

func (c *connection) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteTimeout))
			c.writeMu.Unlock()
			if err != nil {
				c.logger.Debug("ping failed", "error", err)
				return
			}
		}
	}
}
