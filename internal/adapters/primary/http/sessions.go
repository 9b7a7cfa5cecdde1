package http

import (
	"sort"
	"sync"
)

// SessionManager tracks the connected pages
type SessionManager struct {
	mu      sync.RWMutex
	clients map[string]*PageClient
}

// NewSessionManager creates a new session manager
func NewSessionManager() *SessionManager {
	return &SessionManager{
		clients: make(map[string]*PageClient),
	}
}

// Register adds a page client
func (m *SessionManager) Register(client *PageClient) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[client.id] = client
}

// Unregister removes and closes a page client
func (m *SessionManager) Unregister(id string) {
	m.mu.Lock()
	client, ok := m.clients[id]
	delete(m.clients, id)
	m.mu.Unlock()

	if ok {
		client.close()
	}
}

// Get returns the client with the given id
func (m *SessionManager) Get(id string) (*PageClient, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	client, ok := m.clients[id]
	return client, ok
}

// List returns the clients ordered by connection time
func (m *SessionManager) List() []*PageClient {
	m.mu.RLock()
	clients := make([]*PageClient, 0, len(m.clients))
	for _, client := range m.clients {
		clients = append(clients, client)
	}
	m.mu.RUnlock()

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].connectedAt.Before(clients[j].connectedAt)
	})
	return clients
}

// Count returns the number of connected pages
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// CloseAll closes every client
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	clients := m.clients
	m.clients = make(map[string]*PageClient)
	m.mu.Unlock()

	for _, client := range clients {
		client.close()
	}
}
