package store

import (
	"context"
	"sort"
	"sync"

	"github.com/liuwen/deepchat/internal/model/chat"
)

// MemoryStore keeps conversations in process memory, suitable for tests and
// local development.
type MemoryStore struct {
	mu    sync.RWMutex
	byOwn map[string]map[string]chat.Conversation
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byOwn: make(map[string]map[string]chat.Conversation)}
}

// Create registers a new conversation under its owner.
func (s *MemoryStore) Create(_ context.Context, conv chat.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned, ok := s.byOwn[conv.Owner]
	if !ok {
		owned = make(map[string]chat.Conversation)
		s.byOwn[conv.Owner] = owned
	}
	owned[conv.ID] = conv.Clone()
	return nil
}

// FindOne retrieves a conversation by (owner, id).
func (s *MemoryStore) FindOne(_ context.Context, owner, id string) (chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.byOwn[owner][id]
	if !ok {
		return chat.Conversation{}, ErrNotFound
	}
	return conv.Clone(), nil
}

// ListByOwner returns the owner's conversations, most recently updated first.
func (s *MemoryStore) ListByOwner(_ context.Context, owner string) ([]chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := s.byOwn[owner]
	out := make([]chat.Conversation, 0, len(owned))
	for _, conv := range owned {
		out = append(out, conv.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// Save overwrites the stored conversation with the supplied snapshot.
func (s *MemoryStore) Save(_ context.Context, conv chat.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned, ok := s.byOwn[conv.Owner]
	if !ok {
		return ErrNotFound
	}
	if _, exists := owned[conv.ID]; !exists {
		return ErrNotFound
	}
	owned[conv.ID] = conv.Clone()
	return nil
}

// Delete removes a conversation. Deleting a missing record reports ErrNotFound.
func (s *MemoryStore) Delete(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned := s.byOwn[owner]
	if _, ok := owned[id]; !ok {
		return ErrNotFound
	}
	delete(owned, id)
	return nil
}
