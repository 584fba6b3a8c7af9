package stream

import (
	"fmt"

	"github.com/google/uuid"
	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/push"

	// Register all transports
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/dd0wney/cluso-communities/pkg/graph"
)

// Client pushes mutation batches to a server
type Client struct {
	sock mangos.Socket
}

// Dial connects a client to the server's pull address
func Dial(addr string) (*Client, error) {
	sock, err := push.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create push socket: %w", err)
	}
	if err := sock.Dial(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &Client{sock: sock}, nil
}

// Send normalizes and transmits a batch, returning its assigned id. The
// batch must hold each undirected edge once, in either orientation;
// mirroring into per-direction entries happens here.
func (c *Client) Send(b *graph.Batch) (uuid.UUID, error) {
	b.Normalize()
	id := uuid.New()
	msg := EncodeBatch(id, b)
	if err := c.sock.Send(msg); err != nil {
		return uuid.Nil, fmt.Errorf("failed to send batch: %w", err)
	}
	return id, nil
}

// Close shuts the socket down
func (c *Client) Close() error {
	return c.sock.Close()
}
