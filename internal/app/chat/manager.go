/*
Package chat contains the realtime side of direct messaging.

This file defines the Manager, which owns every connection from handshake to close: it verifies
the credential, registers the connection in the presence registry, replaces older sessions,
announces presence changes, and answers presence queries for the REST API.
*/
package chat

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"dmchat/internal/app/auth"
	"dmchat/internal/app/user"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/metrics"
)

// Manager coordinates realtime connections.
type Manager struct {
	verifier *auth.Verifier
	registry *Registry
	fanout   *Fanout
	metrics  *metrics.Metrics

	// mu protects clients, the set of connections currently being served.
	mu      sync.Mutex
	clients map[*Client]struct{}

	// wg is used to wait for Serve calls to return during shutdown.
	wg sync.WaitGroup

	// structured logger with Manager context.
	logger zerolog.Logger
}

// NewManager constructs and returns a new Manager instance.
func NewManager(verifier *auth.Verifier, registry *Registry, fanout *Fanout, m *metrics.Metrics) *Manager {
	return &Manager{
		verifier: verifier,
		registry: registry,
		fanout:   fanout,
		metrics:  m,
		clients:  make(map[*Client]struct{}),
		logger:   logx.Component("Manager"),
	}
}

// Authenticate verifies a handshake credential. A failure means the channel must be refused
// before upgrading.
func (m *Manager) Authenticate(ctx context.Context, credential string) (user.User, error) {
	identity, err := m.verifier.Verify(ctx, credential)
	if err != nil {
		m.metrics.Handshakes.WithLabelValues(metrics.HandshakeRefused).Inc()
		return user.User{}, err
	}

	m.metrics.Handshakes.WithLabelValues(metrics.HandshakeAccepted).Inc()
	return identity, nil
}

// Serve runs an upgraded connection of identity until it closes. The read pump runs on the
// calling goroutine and the write pump on its own.
func (m *Manager) Serve(conn *websocket.Conn, identity user.User) {
	client := NewClient(conn, identity.ID)

	if !m.track(client) {
		_ = conn.Close()
		return
	}
	defer m.wg.Done()

	go client.WritePump()

	attached := m.attach(client)
	client.ReadPump()
	m.detach(client, attached)
}

// track records client for shutdown. It fails once shutdown has started.
func (m *Manager) track(client *Client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.clients == nil {
		return false
	}

	m.clients[client] = struct{}{}
	m.wg.Add(1)

	return true
}

// attach registers client, kicks the connection it supersedes, and announces the user online.
// It reports false when the client closed before it could be registered.
func (m *Manager) attach(client *Client) bool {
	if !client.markAuthenticated() {
		return false
	}

	previous := m.registry.Register(client.UserID(), client)
	m.metrics.ConnectionsActive.Inc()

	logger := m.logger.With().Str("user_id", client.UserID()).Logger()

	if previous != nil {
		if old, ok := previous.(*Client); ok {
			old.Kick("Session replaced by a new connection")
		}
		logger.Info().Msg("Client reconnected, previous session replaced.")
		return true
	}

	logger.Info().Msg("Client came online.")
	m.fanout.Broadcast(context.Background(), NewEvent(TypePresence, PresencePayload{
		UserID:   client.UserID(),
		IsOnline: true,
	}), client.UserID())

	return true
}

// detach unregisters client and announces the user offline, unless a newer connection
// has already taken its place.
func (m *Manager) detach(client *Client, attached bool) {
	client.Close()

	m.mu.Lock()
	if m.clients != nil {
		delete(m.clients, client)
	}
	m.mu.Unlock()

	if !attached {
		return
	}

	m.metrics.ConnectionsActive.Dec()

	if !m.registry.Unregister(client.UserID(), client) {
		return
	}

	m.logger.Info().Str("user_id", client.UserID()).Msg("Client went offline.")
	m.fanout.Broadcast(context.Background(), NewEvent(TypePresence, PresencePayload{
		UserID:   client.UserID(),
		IsOnline: false,
	}), client.UserID())
}

// OnlineStatusFor reports whether id has a live connection.
func (m *Manager) OnlineStatusFor(id string) bool {
	return m.registry.IsOnline(id)
}

// OnlineStatusForMany reports the online status of each id from one registry snapshot.
func (m *Manager) OnlineStatusForMany(ids []string) map[string]bool {
	online := m.registry.SnapshotOnlineSet()

	return lo.SliceToMap(ids, func(id string) (string, bool) {
		_, ok := online[id]
		return id, ok
	})
}

// Shutdown closes every connection and waits for their Serve calls to return.
// Connections arriving afterwards are closed immediately.
func (m *Manager) Shutdown() {
	m.logger.Info().Msg("Shutting down realtime connections...")

	m.mu.Lock()
	clients := m.clients
	m.clients = nil
	m.mu.Unlock()

	for client := range clients {
		client.Close()
	}

	m.wg.Wait()

	m.logger.Info().Msg("Manager shutdown complete.")
}
