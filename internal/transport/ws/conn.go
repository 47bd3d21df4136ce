package ws

import (
	"time"

	"github.com/collab-edit/collab-service/internal/event"

	"github.com/gorilla/websocket"
)

type wsConn struct {
	conn   *websocket.Conn
	id     string
	sendMu chan struct{} // семафор: один писатель в сокет за раз
	closed chan struct{}

	// комната из пути апгрейда, если была
	roomHint     string
	writeTimeout time.Duration
}

func newWsConn(c *websocket.Conn, id string, writeTimeout time.Duration) *wsConn {
	return &wsConn{
		conn:         c,
		id:           id,
		sendMu:       make(chan struct{}, 1),
		closed:       make(chan struct{}),
		writeTimeout: writeTimeout,
	}
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Send(msg event.Message) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))

	return c.conn.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}
