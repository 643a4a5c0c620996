package http

import (
	"encoding/json"
	"sync"

	"github.com/slidekit/slidekit/internal/domain/ports"
)

// ConnectionManager tracks connected websocket clients and fans update
// events out to them. Slow clients are dropped rather than allowed to
// stall the broadcast.
type ConnectionManager struct {
	mu      sync.RWMutex
	clients map[string]*wsClient
	closed  bool
}

// NewConnectionManager creates an empty connection manager.
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		clients: make(map[string]*wsClient),
	}
}

// Register adds a client. Returns false when the manager has already
// been shut down.
func (m *ConnectionManager) Register(c *wsClient) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.clients[c.id] = c
	return true
}

// Unregister removes a client and closes its send queue.
func (m *ConnectionManager) Unregister(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.clients[id]; ok {
		delete(m.clients, id)
		c.closeSend()
	}
}

// Broadcast serializes the event once and queues it on every client.
// Clients whose queue is full are disconnected.
func (m *ConnectionManager) Broadcast(event ports.UpdateEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.clients {
		select {
		case c.send <- payload:
		default:
			delete(m.clients, id)
			c.closeSend()
		}
	}
}

// ClientCount returns the number of connected clients.
func (m *ConnectionManager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// CloseAll disconnects every client and rejects further registrations.
func (m *ConnectionManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for id, c := range m.clients {
		delete(m.clients, id)
		c.closeSend()
	}
}
