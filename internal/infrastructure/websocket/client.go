package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client wraps one subscriber connection. Gorilla connections allow a
// single concurrent writer, so sends serialize on a mutex.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn}
}

func (c *Client) Send(message interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(message)
}

func (c *Client) Close() error {
	return c.conn.Close()
}
