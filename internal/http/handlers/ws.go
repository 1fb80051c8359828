package handlers

import (
	"github.com/gin-gonic/gin"
	"nhooyr.io/websocket"

	"chanchat/internal/http/middleware"
	"chanchat/internal/ws"
)

type WSHandler struct {
	Hub                  *ws.Hub
	JWTSecret            string
	WSInsecureSkipVerify bool
}

// Handle upgrades GET /ws/channels/:id into a push-only subscription.
// Browser WebSocket clients cannot set an Authorization header before the
// handshake, so the token travels as a query parameter. A missing or bad
// token closes the socket with StatusAuthFailure (4001) so clients can
// tell it apart from a normal closure.
func (h *WSHandler) Handle(c *gin.Context) {
	channelID := uintParam(c, "id")

	opts := &websocket.AcceptOptions{}
	// Default Accept rejects cross-origin handshakes. Dev frontends run on
	// another port, so allow bypassing origin checks via config (dev only).
	if h.WSInsecureSkipVerify {
		opts.InsecureSkipVerify = true
	}

	conn, err := websocket.Accept(c.Writer, c.Request, opts)
	if err != nil {
		return // Accept already wrote the error response
	}

	tokenStr := c.Query("token")
	if tokenStr == "" {
		_ = conn.Close(ws.StatusAuthFailure, "missing token")
		return
	}
	claims, err := middleware.ParseToken(tokenStr, h.JWTSecret)
	if err != nil {
		_ = conn.Close(ws.StatusAuthFailure, "invalid token")
		return
	}

	// Push-only protocol: discard anything the client sends, but keep
	// reading so close/ping/pong control frames are processed.
	conn.CloseRead(c.Request.Context())

	client := h.Hub.Subscribe(channelID, claims.UserID, ws.NewConn(conn))
	defer h.Hub.Unsubscribe(client)

	// Block until the client disconnects or the hub drops the
	// subscription (failed delivery, slow consumer, shutdown).
	select {
	case <-c.Request.Context().Done():
	case <-client.Done():
	}
}
