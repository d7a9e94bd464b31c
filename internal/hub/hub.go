// Package hub tracks the set of live dashboard WebSocket connections and
// fans device-state changes out to them. A single goroutine (Run) owns
// the client registry, so connect, disconnect and broadcast never race.
package hub

import (
	"context"
	"encoding/json"

	"ventilation_dashboard/internal/logger"
	"ventilation_dashboard/internal/models"
	"ventilation_dashboard/internal/state"
)

// WebSocket envelope types. Every message is {"type": t, ...fields}.
const (
	MsgMode         = "mode"
	MsgThresholds   = "thresholds"
	MsgFanStatus    = "fanStatus"
	MsgButtonStatus = "buttonStatus"
	MsgCO2          = "co2"
	MsgHumidity     = "humidity"
	MsgPressure     = "pressure"
	MsgTemperature  = "temperature"
)

type Hub struct {
	state *state.Store
	log   *logger.Logger

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
}

func New(st *state.Store, log *logger.Logger) *Hub {
	return &Hub{
		state:      st,
		log:        log,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is canceled.
// Because a new client's snapshot is queued inside the same loop that
// queues broadcasts, a client always sees its four snapshot messages
// before any broadcast issued after it connected.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			for _, msg := range h.snapshotMessages() {
				c.send <- msg
			}
			h.log.Infow("ws_client_connected", "clients", len(h.clients))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.log.Infow("ws_client_disconnected", "clients", len(h.clients))
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer: drop the connection rather than
					// block the broadcast loop for everyone else.
					delete(h.clients, c)
					close(c.send)
					h.log.Warnw("ws_client_dropped_slow", "clients", len(h.clients))
				}
			}
		}
	}
}

// Register adds a connection to the live set. The client immediately
// receives the snapshot messages, in order: mode, thresholds, fanStatus,
// buttonStatus.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a connection from the live set. No further action:
// a reconnecting client is a brand-new entity.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast delivers {"type": msgType, ...fields} to every live
// connection, best effort, at most once.
func (h *Hub) Broadcast(msgType string, fields map[string]any) {
	msg, err := envelope(msgType, fields)
	if err != nil {
		h.log.Errorw("ws_broadcast_encode_failed", "type", msgType, "err", err)
		return
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// HandleClientMessage processes one client-originated message. The only
// understood type is a buttonStatus report, which overwrites the shared
// button state and is re-broadcast to all clients, including the sender.
// Everything else is logged and dropped.
func (h *Hub) HandleClientMessage(raw []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		h.log.Warnw("ws_message_decode_failed", "err", err)
		return
	}
	switch env.Type {
	case MsgButtonStatus:
		var b models.ButtonStatus
		if err := json.Unmarshal(raw, &b); err != nil {
			h.log.Warnw("ws_button_status_decode_failed", "err", err)
			return
		}
		h.state.ApplyButtonStatus(b)
		h.Broadcast(MsgButtonStatus, map[string]any{
			"onStatus":  b.OnStatus,
			"offStatus": b.OffStatus,
		})
	default:
		h.log.Debugw("ws_message_ignored", "type", env.Type)
	}
}

// snapshotMessages builds the four initial messages for a new client.
// Each field is read fresh from the store at build time; the snapshot is
// not transactional across the four sends, but every field later receives
// its own delta, so brief skew resolves itself.
func (h *Hub) snapshotMessages() [][]byte {
	ordered := []struct {
		msgType string
		fields  func(models.DeviceState) map[string]any
	}{
		{MsgMode, func(s models.DeviceState) map[string]any {
			return map[string]any{"mode": s.FanMode}
		}},
		{MsgThresholds, func(s models.DeviceState) map[string]any {
			return map[string]any{"co2": s.Thresholds.CO2, "temperatura": s.Thresholds.Temperature}
		}},
		{MsgFanStatus, func(s models.DeviceState) map[string]any {
			return map[string]any{"status": s.FanStatus}
		}},
		{MsgButtonStatus, func(s models.DeviceState) map[string]any {
			return map[string]any{"onStatus": s.ButtonStatus.OnStatus, "offStatus": s.ButtonStatus.OffStatus}
		}},
	}

	msgs := make([][]byte, 0, len(ordered))
	for _, m := range ordered {
		msg, err := envelope(m.msgType, m.fields(h.state.Snapshot()))
		if err != nil {
			h.log.Errorw("ws_snapshot_encode_failed", "type", m.msgType, "err", err)
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

// envelope flattens fields into {"type": msgType, ...fields}.
func envelope(msgType string, fields map[string]any) ([]byte, error) {
	msg := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		msg[k] = v
	}
	msg["type"] = msgType
	return json.Marshal(msg)
}
