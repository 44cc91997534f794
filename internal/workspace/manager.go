package workspace

import (
	"context"
	"log"
	"sync"
	"time"
)

// Manager keeps one Workspace per logged-in user.
type Manager struct {
	svc           NoteService
	autosaveDelay time.Duration

	mu     sync.Mutex
	spaces map[string]*Workspace
}

func NewManager(svc NoteService, autosaveDelay time.Duration) *Manager {
	return &Manager{
		svc:           svc,
		autosaveDelay: autosaveDelay,
		spaces:        make(map[string]*Workspace),
	}
}

// Get returns owner's workspace, loading the notes on first use.
func (m *Manager) Get(ctx context.Context, owner string) (*Workspace, error) {
	m.mu.Lock()
	if w, ok := m.spaces[owner]; ok {
		m.mu.Unlock()
		return w, nil
	}
	m.mu.Unlock()

	w := New(owner, m.svc, m.autosaveDelay)
	if err := w.Load(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.spaces[owner]; ok {
		return existing, nil
	}
	m.spaces[owner] = w
	return w, nil
}

// Drop forgets owner's view state after writing pending autosaves.
func (m *Manager) Drop(ctx context.Context, owner string) {
	m.mu.Lock()
	w, ok := m.spaces[owner]
	delete(m.spaces, owner)
	m.mu.Unlock()

	if !ok {
		return
	}
	if err := w.Close(ctx); err != nil {
		log.Printf("Error flushing autosave for %s: %v", owner, err)
	}
}

// Close drops every workspace. Used on shutdown.
func (m *Manager) Close(ctx context.Context) {
	m.mu.Lock()
	owners := make([]string, 0, len(m.spaces))
	for owner := range m.spaces {
		owners = append(owners, owner)
	}
	m.mu.Unlock()

	for _, owner := range owners {
		m.Drop(ctx, owner)
	}
}
