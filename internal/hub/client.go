package hub

import (
	"time"

	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB

	// sendBuffer bounds the per-client outbound queue; overflow drops
	// the client (no backpressure on the broadcast loop).
	sendBuffer = 64
)

// wsConn is the subset of *websocket.Conn the client needs. Narrowed to
// an interface so hub tests run without a network socket.
type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is one live dashboard connection. Its write pump drains the
// send channel on a dedicated goroutine, which gives FIFO delivery per
// connection.
type Client struct {
	hub  *Hub
	conn wsConn
	send chan []byte
}

func (h *Hub) NewClient(conn wsConn) *Client {
	return &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

// ReadPump consumes inbound frames until the connection errors or
// closes, then unregisters the client. Pongs extend the read deadline.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.hub.log.Infow("ws_read_closed", "err", err)
			return
		}
		c.hub.HandleClientMessage(raw)
	}
}

// WritePump writes queued messages and periodic pings. A closed send
// channel (hub dropped or unregistered the client) ends the pump with a
// close frame.
func (c *Client) WritePump() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.log.Infow("ws_write_failed", "err", err)
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.log.Infow("ws_ping_failed", "err", err)
				return
			}
		}
	}
}
