package client

import (
	"errors"
	"sync"

	"github.com/liuwen/deepchat/internal/model/chat"
)

var ErrUnknownConversation = errors.New("conversation not in client state")

// ConversationSet is the client's transient replica of the user's
// conversations plus the currently selected conversation id.
//
// Every mutation is clone-and-replace over value snapshots: the stored
// slice is rebuilt with a cloned entry, never mutated in place, and the
// selected view is derived from the collection on read. The list entry and
// the selected conversation therefore can never diverge.
type ConversationSet struct {
	mu            sync.RWMutex
	conversations []chat.Conversation
	selectedID    string
}

// NewConversationSet returns an empty replica.
func NewConversationSet() *ConversationSet {
	return &ConversationSet{}
}

// Replace swaps in a fresh snapshot, usually from the server. The current
// selection is kept when it still exists, otherwise the first conversation
// is selected.
func (s *ConversationSet) Replace(convs []chat.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations = make([]chat.Conversation, len(convs))
	for i, conv := range convs {
		s.conversations[i] = conv.Clone()
	}

	if _, ok := s.indexOf(s.selectedID); !ok {
		s.selectedID = ""
		if len(s.conversations) > 0 {
			s.selectedID = s.conversations[0].ID
		}
	}
}

// Add inserts a conversation at the front and selects it.
func (s *ConversationSet) Add(conv chat.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]chat.Conversation, 0, len(s.conversations)+1)
	next = append(next, conv.Clone())
	next = append(next, s.conversations...)
	s.conversations = next
	s.selectedID = conv.ID
}

// Select points the set at an existing conversation.
func (s *ConversationSet) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.indexOf(id); !ok {
		return ErrUnknownConversation
	}
	s.selectedID = id
	return nil
}

// SelectedID returns the selected conversation id, empty when none.
func (s *ConversationSet) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedID
}

// Selected returns a snapshot of the selected conversation.
func (s *ConversationSet) Selected() (chat.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.indexOf(s.selectedID)
	if !ok {
		return chat.Conversation{}, false
	}
	return s.conversations[idx].Clone(), true
}

// Get returns a snapshot of the conversation with the given id.
func (s *ConversationSet) Get(id string) (chat.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.indexOf(id)
	if !ok {
		return chat.Conversation{}, false
	}
	return s.conversations[idx].Clone(), true
}

// List returns a snapshot of all conversations in display order.
func (s *ConversationSet) List() []chat.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]chat.Conversation, len(s.conversations))
	for i, conv := range s.conversations {
		out[i] = conv.Clone()
	}
	return out
}

// Len reports the number of conversations held.
func (s *ConversationSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

// AppendTurn appends a turn to the identified conversation.
func (s *ConversationSet) AppendTurn(id string, t chat.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.indexOf(id)
	if !ok {
		return ErrUnknownConversation
	}

	updated := s.conversations[idx].Clone()
	updated.Append(t)
	s.replaceAt(idx, updated)
	return nil
}

// SetLastTurnContent replaces the content of the conversation's last turn.
// Only the reveal animation uses this; once the full text is applied the
// turn is never touched again.
func (s *ConversationSet) SetLastTurnContent(id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.indexOf(id)
	if !ok {
		return ErrUnknownConversation
	}
	if len(s.conversations[idx].Messages) == 0 {
		return ErrUnknownConversation
	}

	updated := s.conversations[idx].Clone()
	updated.Messages[len(updated.Messages)-1].Content = content
	s.replaceAt(idx, updated)
	return nil
}

// indexOf expects the lock to be held.
func (s *ConversationSet) indexOf(id string) (int, bool) {
	if id == "" {
		return 0, false
	}
	for i, conv := range s.conversations {
		if conv.ID == id {
			return i, true
		}
	}
	return 0, false
}

// replaceAt swaps in the updated entry on a rebuilt slice; the lock must be
// held.
func (s *ConversationSet) replaceAt(idx int, updated chat.Conversation) {
	next := make([]chat.Conversation, len(s.conversations))
	copy(next, s.conversations)
	next[idx] = updated
	s.conversations = next
}
