// connection/conn.go
package connection

import (
	"net"
	"sync"

	"github.com/gorilla/websocket"
)

// Conn is one live websocket to the game server. The protocol is JSON
// text frames; there is no client-side framing beyond that.
type Conn interface {
	WriteMessage(data []byte) error
	ReadMessage() ([]byte, error)
	Close() error
	CloseWithCode(code int, reason string) error
	RemoteAddr() net.Addr
}

type wsConn struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{conn: conn}
}

func (c *wsConn) WriteMessage(data []byte) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// CloseWithCode sends a close frame carrying the given status before
// tearing the socket down, so the server sees an explicit code rather
// than an abrupt failure.
func (c *wsConn) CloseWithCode(code int, reason string) error {
	c.sendMutex.Lock()
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.conn.WriteMessage(websocket.CloseMessage, msg)
	c.sendMutex.Unlock()
	return c.conn.Close()
}

func (c *wsConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Dialer opens a Conn to the given websocket URL. Swappable in tests.
type Dialer func(url string) (Conn, error)

// DefaultDialer uses gorilla's dialer.
func DefaultDialer(url string) (Conn, error) {
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return newWSConn(c), nil
}
