package hub

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"ventilation_dashboard/internal/logger"
	"ventilation_dashboard/internal/state"
)

func newTestHub(t *testing.T) (*Hub, *state.Store, context.CancelFunc) {
	t.Helper()
	st := state.NewStore()
	h := New(st, logger.Get(logger.ErrorLevel))
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	return h, st, cancel
}

// receive reads the next queued message for a client, decoded.
func receive(t *testing.T, c *Client) map[string]any {
	t.Helper()
	select {
	case raw, ok := <-c.send:
		if !ok {
			t.Fatalf("send channel closed")
		}
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			t.Fatalf("bad envelope %s: %v", raw, err)
		}
		return m
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for message")
	}
	return nil
}

func expectNoMessage(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw, ok := <-c.send:
		if ok {
			t.Fatalf("unexpected message: %s", raw)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_SnapshotOrderOnConnect(t *testing.T) {
	h, st, cancel := newTestHub(t)
	defer cancel()

	st.ApplyFanStatus(true)
	st.ApplyFanMode("manual")

	c := h.NewClient(nil)
	h.Register(c)

	wantOrder := []string{MsgMode, MsgThresholds, MsgFanStatus, MsgButtonStatus}
	for i, want := range wantOrder {
		m := receive(t, c)
		if m["type"] != want {
			t.Fatalf("snapshot message %d: expected type %q, got %q", i, want, m["type"])
		}
		switch want {
		case MsgMode:
			if m["mode"] != "manual" {
				t.Fatalf("expected mode manual, got %v", m["mode"])
			}
		case MsgThresholds:
			if m["co2"].(float64) != 800 || m["temperatura"].(float64) != 25 {
				t.Fatalf("unexpected thresholds: %v", m)
			}
		case MsgFanStatus:
			if m["status"] != true {
				t.Fatalf("expected status true, got %v", m["status"])
			}
		case MsgButtonStatus:
			if m["onStatus"] != false || m["offStatus"] != true {
				t.Fatalf("unexpected button status: %v", m)
			}
		}
	}
}

func TestHub_SnapshotPrecedesBroadcasts(t *testing.T) {
	h, _, cancel := newTestHub(t)
	defer cancel()

	c := h.NewClient(nil)
	h.Register(c)
	h.Broadcast(MsgCO2, map[string]any{"value": 450.0, "time": "2026-01-01T00:00:00Z"})

	// Exactly one mode, thresholds, fanStatus, buttonStatus before any
	// broadcast message.
	types := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		types = append(types, receive(t, c)["type"].(string))
	}
	want := []string{MsgMode, MsgThresholds, MsgFanStatus, MsgButtonStatus, MsgCO2}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("message %d: expected %s, got %s (all: %v)", i, want[i], types[i], types)
		}
	}
}

func TestHub_BroadcastReachesOpenConnectionsOnly(t *testing.T) {
	h, _, cancel := newTestHub(t)
	defer cancel()

	open := []*Client{h.NewClient(nil), h.NewClient(nil), h.NewClient(nil)}
	closed := h.NewClient(nil)
	for _, c := range open {
		h.Register(c)
	}
	h.Register(closed)

	// Drain snapshots.
	for _, c := range append(append([]*Client{}, open...), closed) {
		for i := 0; i < 4; i++ {
			receive(t, c)
		}
	}

	h.Unregister(closed)
	h.Broadcast(MsgFanStatus, map[string]any{"status": true})

	for i, c := range open {
		m := receive(t, c)
		if m["type"] != MsgFanStatus || m["status"] != true {
			t.Fatalf("open client %d: unexpected message %v", i, m)
		}
	}
	expectNoMessage(t, closed)
}

func TestHub_ButtonStatusLastWriterWinsAcrossClients(t *testing.T) {
	h, st, cancel := newTestHub(t)
	defer cancel()

	a := h.NewClient(nil)
	b := h.NewClient(nil)
	h.Register(a)
	h.Register(b)
	for i := 0; i < 4; i++ {
		receive(t, a)
		receive(t, b)
	}

	h.HandleClientMessage([]byte(`{"type":"buttonStatus","onStatus":true,"offStatus":false}`))
	h.HandleClientMessage([]byte(`{"type":"buttonStatus","onStatus":false,"offStatus":true}`))

	// Both clients, including the senders, observe both updates in order.
	for _, c := range []*Client{a, b} {
		first := receive(t, c)
		if first["onStatus"] != true || first["offStatus"] != false {
			t.Fatalf("unexpected first update: %v", first)
		}
		second := receive(t, c)
		if second["onStatus"] != false || second["offStatus"] != true {
			t.Fatalf("unexpected second update: %v", second)
		}
	}

	got := st.Snapshot().ButtonStatus
	if got.OnStatus || !got.OffStatus {
		t.Fatalf("store must hold the last write, got %+v", got)
	}
}

func TestHub_MalformedClientMessageDropped(t *testing.T) {
	h, st, cancel := newTestHub(t)
	defer cancel()

	c := h.NewClient(nil)
	h.Register(c)
	for i := 0; i < 4; i++ {
		receive(t, c)
	}

	before := st.Snapshot()
	h.HandleClientMessage([]byte(`{not json`))
	h.HandleClientMessage([]byte(`{"type":"unknown","x":1}`))
	expectNoMessage(t, c)
	if st.Snapshot() != before {
		t.Fatalf("malformed messages must not mutate state")
	}
}

func TestHub_BroadcastFIFOPerConnection(t *testing.T) {
	h, _, cancel := newTestHub(t)
	defer cancel()

	c := h.NewClient(nil)
	h.Register(c)
	for i := 0; i < 4; i++ {
		receive(t, c)
	}

	for i := 0; i < 10; i++ {
		h.Broadcast(MsgCO2, map[string]any{"value": float64(i), "time": "t"})
	}
	for i := 0; i < 10; i++ {
		m := receive(t, c)
		if m["value"].(float64) != float64(i) {
			t.Fatalf("out of order: expected %d, got %v", i, m["value"])
		}
	}
}

// fakeConn records written frames so WritePump can run without a socket.
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	wrote  chan struct{}
}

func newFakeConn() *fakeConn { return &fakeConn{wrote: make(chan struct{}, 64)} }

func (f *fakeConn) ReadMessage() (int, []byte, error)       { select {} }
func (f *fakeConn) SetReadLimit(int64)                      {}
func (f *fakeConn) SetReadDeadline(time.Time) error         { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error        { return nil }
func (f *fakeConn) SetPongHandler(func(appData string) error) {}
func (f *fakeConn) Close() error                            { return nil }

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	f.frames = append(f.frames, append([]byte(nil), data...))
	f.mu.Unlock()
	f.wrote <- struct{}{}
	return nil
}

func TestClient_WritePumpDeliversInOrder(t *testing.T) {
	h, _, cancel := newTestHub(t)
	defer cancel()

	conn := newFakeConn()
	c := h.NewClient(conn)
	go c.WritePump()

	h.Register(c)
	for i := 0; i < 4; i++ {
		select {
		case <-conn.wrote:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for snapshot frame %d", i)
		}
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()
	var first map[string]any
	if err := json.Unmarshal(conn.frames[0], &first); err != nil {
		t.Fatalf("bad frame: %v", err)
	}
	if first["type"] != MsgMode {
		t.Fatalf("expected first frame type mode, got %v", first["type"])
	}
}
