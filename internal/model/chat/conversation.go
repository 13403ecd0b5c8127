package chat

import (
	"time"

	"github.com/google/uuid"
)

// titlePreviewLen caps the auto-generated title length in runes.
const titlePreviewLen = 50

// Conversation is an owned, ordered, append-only list of turns.
type Conversation struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Title     string    `json:"title,omitempty"`
	Messages  []Turn    `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewConversation provisions an empty conversation for the given owner.
func NewConversation(owner string) Conversation {
	now := time.Now().UTC()
	return Conversation{
		ID:        uuid.NewString(),
		Owner:     owner,
		Messages:  make([]Turn, 0, 16),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds a turn to the end of the conversation. Turns are never
// removed or reordered. The first user turn seeds the title.
func (c *Conversation) Append(t Turn) {
	c.Messages = append(c.Messages, t)
	c.UpdatedAt = time.Now().UTC()
	if c.Title == "" && t.Role == RoleUser {
		c.Title = preview(t.Content, titlePreviewLen)
	}
}

// LastTurn returns the most recent turn, if any.
func (c Conversation) LastTurn() (Turn, bool) {
	if len(c.Messages) == 0 {
		return Turn{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// Clone returns a deep copy whose message slice shares nothing with the
// original.
func (c Conversation) Clone() Conversation {
	copied := c
	copied.Messages = make([]Turn, len(c.Messages))
	copy(copied.Messages, c.Messages)
	return copied
}

// preview truncates s to maxLen runes, appending an ellipsis when cut.
func preview(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
