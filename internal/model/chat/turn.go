package chat

import "time"

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message within a conversation. Turns are append-only: once a
// turn is part of a persisted conversation its content never changes.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserTurn builds a user turn stamped with the current time.
func NewUserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content, Timestamp: time.Now().UTC()}
}

// NewAssistantTurn builds an assistant turn stamped with the current time.
func NewAssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content, Timestamp: time.Now().UTC()}
}
