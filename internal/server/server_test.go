package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vozinv/vozinv/pkg/core/config"
	"github.com/vozinv/vozinv/pkg/core/health"
	"github.com/vozinv/vozinv/pkg/core/logging"
)

type response struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type client struct {
	t    *testing.T
	conn *websocket.Conn
}

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	s := New(cfg, logging.Discard())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *client {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &client{t: t, conn: conn}
}

func (c *client) send(msgType string, payload interface{}) {
	c.t.Helper()
	msg := map[string]interface{}{"type": msgType}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		c.t.Fatalf("WriteJSON() error = %v", err)
	}
}

func (c *client) read(v interface{}) string {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var resp response
	if err := c.conn.ReadJSON(&resp); err != nil {
		c.t.Fatalf("ReadJSON() error = %v", err)
	}
	if v != nil && len(resp.Payload) > 0 {
		if err := json.Unmarshal(resp.Payload, v); err != nil {
			c.t.Fatalf("payload %s: %v", resp.Payload, err)
		}
	}
	return resp.Type
}

func (c *client) expect(want string, v interface{}) {
	c.t.Helper()
	if got := c.read(v); got != want {
		c.t.Fatalf("message type = %q, want %q", got, want)
	}
}

func TestPing(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())
	c := dial(t, ts)

	c.send(TypePing, nil)
	c.expect(TypePong, nil)
}

func TestTranscriptLifecycle(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())
	c := dial(t, ts)

	c.send(TypeTranscript, TranscriptPayload{Text: "ocho cuarenta y dos mil", Final: true})
	var rec RecordPayload
	c.expect(TypeRecord, &rec)
	if rec.Action != "added" || rec.Index != 0 || rec.Item.Subtotal != 336000 {
		t.Errorf("record = %+v", rec)
	}
	if rec.TotalFormatted != "$ 336.000" {
		t.Errorf("TotalFormatted = %q", rec.TotalFormatted)
	}

	c.send(TypeTranscript, TranscriptPayload{Text: "5 20000", Final: true})
	c.expect(TypeRecord, &rec)
	if rec.Index != 1 || rec.Count != 2 || rec.Total != 436000 {
		t.Errorf("record = %+v", rec)
	}

	c.send(TypeTranscript, TranscriptPayload{Text: "hola mundo", Final: true})
	var unrec UnrecognizedPayload
	c.expect(TypeUnrecognized, &unrec)
	if unrec.Text != "hola mundo" {
		t.Errorf("unrecognized text = %q", unrec.Text)
	}

	c.send(TypeTranscript, TranscriptPayload{Text: "borrar el ultimo", Final: true})
	var del DeletedPayload
	c.expect(TypeDeleted, &del)
	if del.Count != 1 || del.Total != 336000 || del.Item == nil || del.Item.Quantity != 5 {
		t.Errorf("deleted = %+v", del)
	}
}

func TestTranscriptDebounce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Listener.Debounce = 100 * time.Millisecond
	_, ts := newTestServer(t, cfg)
	c := dial(t, ts)

	c.send(TypeTranscript, TranscriptPayload{Text: "tres"})
	c.send(TypeTranscript, TranscriptPayload{Text: "tres dos mil quinientos"})
	c.send(TypeTranscript, TranscriptPayload{Text: "tres dos mil quinientos cincuenta"})

	var rec RecordPayload
	c.expect(TypeRecord, &rec)
	if rec.Item.Quantity != 3 || rec.Item.UnitPrice != 2550 {
		t.Errorf("record = %+v", rec.Item)
	}

	c.send(TypeSnapshot, nil)
	var sess SessionPayload
	c.expect(TypeSession, &sess)
	if sess.Snapshot.Count != 1 {
		t.Errorf("snapshot count = %d, want 1", sess.Snapshot.Count)
	}
}

func TestDeleteOnEmptySession(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())
	c := dial(t, ts)

	c.send(TypeTranscript, TranscriptPayload{Text: "eliminar", Final: true})
	var del DeletedPayload
	c.expect(TypeDeleted, &del)
	if del.Item != nil || del.Count != 0 {
		t.Errorf("deleted = %+v", del)
	}
}

func TestEditAndDelete(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())
	c := dial(t, ts)

	c.send(TypeTranscript, TranscriptPayload{Text: "5 20000", Final: true})
	c.expect(TypeRecord, nil)

	tests := []struct {
		name     string
		payload  string
		wantType string
		wantCode string
		wantSub  int64
	}{
		{"numbers", `{"index":0,"quantity":4,"unit_price":2500}`, TypeRecord, "", 10000},
		{"strings", `{"index":0,"quantity":"6","unit_price":" 1000 "}`, TypeRecord, "", 6000},
		{"bad quantity", `{"index":0,"quantity":"seis","unit_price":"1000"}`, TypeError, "INVALID_FORMAT", 0},
		{"negative price", `{"index":0,"quantity":"1","unit_price":"-5"}`, TypeError, "VALUE_OUT_OF_RANGE", 0},
		{"missing item", `{"index":3,"quantity":"1","unit_price":"1"}`, TypeError, "NOT_FOUND", 0},
		{"malformed", `{"index":"x"}`, TypeError, "invalid_payload", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.t = t
			c.send(TypeEdit, json.RawMessage(tt.payload))

			var raw json.RawMessage
			got := c.read(&raw)
			if got != tt.wantType {
				t.Fatalf("type = %q, want %q (%s)", got, tt.wantType, raw)
			}
			if tt.wantType == TypeError {
				var e WSErrorPayload
				json.Unmarshal(raw, &e)
				if e.Code != tt.wantCode {
					t.Errorf("code = %q, want %q", e.Code, tt.wantCode)
				}
				return
			}
			var rec RecordPayload
			json.Unmarshal(raw, &rec)
			if rec.Action != "edited" || rec.Item.Subtotal != tt.wantSub || rec.Total != tt.wantSub {
				t.Errorf("record = %+v", rec)
			}
		})
	}

	c.t = t
	c.send(TypeDelete, DeletePayload{Index: 5})
	var e WSErrorPayload
	c.expect(TypeError, &e)
	if e.Code != "NOT_FOUND" {
		t.Errorf("code = %q", e.Code)
	}

	c.send(TypeDelete, DeletePayload{Index: 0})
	var del DeletedPayload
	c.expect(TypeDeleted, &del)
	if del.Count != 0 || del.Total != 0 {
		t.Errorf("deleted = %+v", del)
	}
}

func TestReset(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())
	c := dial(t, ts)

	c.send(TypeTranscript, TranscriptPayload{Text: "5 20000", Final: true})
	c.expect(TypeRecord, nil)

	c.send(TypeReset, nil)
	var sess SessionPayload
	c.expect(TypeSession, &sess)
	if sess.Snapshot.Count != 0 || sess.Snapshot.SessionID == "" {
		t.Errorf("snapshot = %+v", sess.Snapshot)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())
	a := dial(t, ts)
	b := dial(t, ts)

	a.send(TypeTranscript, TranscriptPayload{Text: "5 20000", Final: true})
	a.expect(TypeRecord, nil)

	b.send(TypeSnapshot, nil)
	var sess SessionPayload
	b.expect(TypeSession, &sess)
	if sess.Snapshot.Count != 0 {
		t.Errorf("second connection sees %d records", sess.Snapshot.Count)
	}
}

func TestProtocolErrors(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())
	c := dial(t, ts)

	c.send("shout", nil)
	var e WSErrorPayload
	c.expect(TypeError, &e)
	if e.Code != "unknown_type" {
		t.Errorf("code = %q", e.Code)
	}

	c.send(TypeTranscript, nil)
	c.expect(TypeError, &e)
	if e.Code != "invalid_payload" {
		t.Errorf("code = %q", e.Code)
	}
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	var report health.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Status != health.StatusHealthy || len(report.Checks) != 2 {
		t.Errorf("report = %+v", report)
	}

	resp2, err := http.Post(ts.URL+"/healthz", "text/plain", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d", resp2.StatusCode)
	}
}

func TestParserCheck(t *testing.T) {
	result := ParserCheck().Check(t.Context())
	if result.Status != health.StatusHealthy {
		t.Errorf("parser check = %+v", result)
	}
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no allow list", nil, "http://evil.example", true},
		{"no origin header", []string{"http://app.example"}, "", true},
		{"listed", []string{"http://app.example"}, "http://APP.example", true},
		{"wildcard", []string{"*"}, "http://other.example", true},
		{"not listed", []string{"http://app.example"}, "http://evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewWebSocketHandler(Config{AllowedOrigins: tt.allowed}, logging.Discard())
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := h.checkOrigin(r); got != tt.want {
				t.Errorf("checkOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := config.Default()
	cfg.Currency.Symbol = "COP"

	sc, err := ConfigFrom(cfg)
	if err != nil {
		t.Fatalf("ConfigFrom() error = %v", err)
	}
	if sc.Port != cfg.Server.Port || sc.Listener.Debounce != cfg.Listener.Debounce.Duration || sc.Listener.MinLength != cfg.Listener.MinLength {
		t.Errorf("ConfigFrom() = %+v", sc)
	}
	if got := sc.Currency.Format(20000); got != "COP 20.000" {
		t.Errorf("currency = %q", got)
	}

	cfg.Currency.Locale = "??"
	if _, err := ConfigFrom(cfg); err == nil {
		t.Error("ConfigFrom() should reject a bad locale")
	}
}

func TestReconfigure_AppliesToNewConnections(t *testing.T) {
	s, ts := newTestServer(t, DefaultConfig())
	before := dial(t, ts)

	cfg := DefaultConfig()
	cfg.Listener.MinLength = 50
	s.Reconfigure(cfg)

	if got := s.ws.Config().Listener.MinLength; got != 50 {
		t.Fatalf("MinLength = %d, want 50", got)
	}

	after := dial(t, ts)
	after.send(TypeTranscript, TranscriptPayload{Text: "5 20000", Final: true})
	after.send(TypePing, nil)
	after.expect(TypePong, nil)

	before.send(TypeTranscript, TranscriptPayload{Text: "5 20000", Final: true})
	before.expect(TypeRecord, nil)
}

func TestParseCacheSharedAcrossConnections(t *testing.T) {
	s, ts := newTestServer(t, DefaultConfig())

	for _, c := range []*client{dial(t, ts), dial(t, ts)} {
		c.send(TypeTranscript, TranscriptPayload{Text: "ocho cuarenta y dos mil", Final: true})
		c.expect(TypeRecord, nil)
	}

	hits, misses, _ := s.ws.Results().Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("cache stats = %d hits, %d misses", hits, misses)
	}
}
