package feed

import (
	"fmt"
	"io"
	"net"
	"time"
)

// Client streams frames to a feed server and reads back per-frame results.
// Methods must not be called concurrently; the protocol is strictly
// request/response per frame.
type Client struct {
	conn net.Conn
	buf  []byte
}

// Dial connects to a feed server. key must match the server's pre-shared key
// ("" for a plaintext feed).
func Dial(addr, key string) (*Client, error) {
	return DialTimeout(addr, key, 10*time.Second)
}

// DialTimeout is Dial with an explicit connect timeout.
func DialTimeout(addr, key string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("dial feed server: %w", err)
	}
	if key != "" {
		wrapped, err := wrapConn(conn, key)
		if err != nil {
			conn.Close()
			return nil, err
		}
		conn = wrapped
	}
	return &Client{conn: conn, buf: make([]byte, ResultSize)}, nil
}

// Apply sends one frame and waits for its result.
func (c *Client) Apply(frame Frame) (Result, error) {
	var result Result

	data, err := frame.MarshalBinary()
	if err != nil {
		return result, err
	}
	if _, err := c.conn.Write(data); err != nil {
		return result, fmt.Errorf("send frame: %w", err)
	}

	if _, err := io.ReadFull(c.conn, c.buf); err != nil {
		return result, fmt.Errorf("read result: %w", err)
	}
	if err := result.UnmarshalBinary(c.buf); err != nil {
		return result, err
	}
	return result, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }
