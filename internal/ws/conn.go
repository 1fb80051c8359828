package ws

import (
	"context"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// StatusAuthFailure is sent when the handshake token is missing or invalid,
// so clients can tell an auth rejection from a normal closure.
const StatusAuthFailure websocket.StatusCode = 4001

// Conn is the transport half of a subscription.
type Conn interface {
	Write(ctx context.Context, ev Event) error
	Ping(ctx context.Context) error
	Close(code websocket.StatusCode, reason string) error
}

// NewConn wraps a websocket connection as a Conn.
func NewConn(c *websocket.Conn) Conn {
	return wsConn{c}
}

type wsConn struct {
	conn *websocket.Conn
}

func (w wsConn) Write(ctx context.Context, ev Event) error {
	return wsjson.Write(ctx, w.conn, ev)
}

func (w wsConn) Ping(ctx context.Context) error {
	return w.conn.Ping(ctx)
}

func (w wsConn) Close(code websocket.StatusCode, reason string) error {
	return w.conn.Close(code, reason)
}
