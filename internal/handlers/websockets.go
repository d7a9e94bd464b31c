package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Upgrader for HTTP -> WebSocket. The dashboard is served from another
// origin in development, so origins are open here.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConnect upgrades the connection and hands it to the hub. The hub
// queues the state snapshot before any live broadcast reaches the new
// client; the read pump blocks until the peer goes away.
func (h *Handler) wsConnect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}

	client := h.hub.NewClient(conn)
	h.hub.Register(client)

	go client.WritePump()
	client.ReadPump()
}
