/*
Package chat contains the realtime side of direct messaging.

This file defines the Client struct, the connection handle of one websocket. Outbound events go
through a bounded queue drained by WritePump; ReadPump keeps the heartbeat and detects the close.
*/
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"dmchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client. Clients only
	// send control frames and the occasional keepalive.
	maxMessageSize = 1024

	// capacity of the outbound queue.
	sendQueueSize = 256

	// WsCloseCodeSessionKicked is a custom WebSocket Close Code (4000-4999 range)
	// used to signal the client that the session was replaced by a new connection.
	WsCloseCodeSessionKicked = 4001
)

// ErrConnectionClosed is returned by Push once the connection has closed.
var ErrConnectionClosed = errors.New("connection closed")

// ConnState is the lifecycle state of a Client.
type ConnState int32

const (
	StateConnecting ConnState = iota
	StateAuthenticated
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Client represents one websocket connection of an authenticated user.
type Client struct {
	// underlying WebSocket connection object.
	conn *websocket.Conn

	// id of the user owning the connection.
	userID string

	// a buffered channel of encoded frames waiting to be written.
	send chan []byte

	// closed once the connection is done; send is never closed.
	done      chan struct{}
	closeOnce sync.Once

	state atomic.Int32

	// structured logger with client context.
	logger zerolog.Logger
}

// NewClient constructs a Client in the Connecting state.
func NewClient(conn *websocket.Conn, userID string) *Client {
	return &Client{
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
		logger: logx.Logger().With().
			Str("component", "Client").
			Str("client_id", userID).
			Logger(),
	}
}

// UserID returns the id of the user owning the connection.
func (c *Client) UserID() string {
	return c.userID
}

// State returns the current lifecycle state.
func (c *Client) State() ConnState {
	return ConnState(c.state.Load())
}

// markAuthenticated moves a Connecting client to Authenticated.
func (c *Client) markAuthenticated() bool {
	return c.state.CompareAndSwap(int32(StateConnecting), int32(StateAuthenticated))
}

// Done is closed once the connection is closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Push encodes ev and queues it for WritePump. It waits for queue space until ctx ends.
func (c *Client) Push(ctx context.Context, ev Event) error {
	frame, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- frame:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	case <-ctx.Done():
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full until deadline, dropping event")
		return ctx.Err()
	}
}

// Close marks the client closed and stops WritePump, which closes the socket.
// It is safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateClosed))
		close(c.done)
	})
}

// Kick closes the connection with close code 4001, telling the remote party its session
// was replaced by a newer connection.
func (c *Client) Kick(reason string) {
	c.logger.Warn().
		Int("close_code", WsCloseCodeSessionKicked).
		Str("reason", reason).
		Msg("Sending WS Kick message and closing connection.")

	closeMessage := websocket.FormatCloseMessage(WsCloseCodeSessionKicked, reason)
	if err := c.conn.WriteControl(websocket.CloseMessage, closeMessage, time.Now().Add(writeWait)); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to send WS 4001 Close Message.")
	}

	c.Close()
}

// ReadPump reads until the connection fails or closes, keeping the read deadline fresh
// on every pong. Inbound data frames are discarded; messages are sent over REST.
// It returns after marking the client closed.
func (c *Client) ReadPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, WsCloseCodeSessionKicked) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			return
		}
	}
}

// WritePump writes queued frames and periodic pings until the client closes or a write fails.
// It owns closing the socket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Close()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame := <-c.send:
			if !c.write(websocket.TextMessage, frame) {
				return
			}

		case <-ticker.C:
			if !c.write(websocket.PingMessage, nil) {
				return
			}

		case <-c.done:
			closeMessage := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = c.conn.WriteControl(websocket.CloseMessage, closeMessage, time.Now().Add(writeWait))
			return
		}
	}
}

// write sends one frame. It returns false if the WritePump loop should terminate.
func (c *Client) write(messageType int, data []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if err := c.conn.WriteMessage(messageType, data); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing message")
		return false
	}

	return true
}
