package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/liuwen/deepchat/internal/model/chat"
)

var (
	ErrNotAuthenticated = errors.New("login to send message")
	ErrSendInFlight     = errors.New("wait for the current response to finish")
	ErrEmptyPrompt      = errors.New("message is empty")
)

// Controller orchestrates one user turn from draft to revealed reply:
// guard checks, the optimistic local append, the single network call, and
// handing the reply text to a Revealer.
//
// Sends are guarded per conversation, so a send on one conversation never
// serializes sends on another.
type Controller struct {
	mu             sync.Mutex
	set            *ConversationSet
	sender         Sender
	authenticated  bool
	revealInterval time.Duration
	inFlight       map[string]bool
}

// NewController wires the send lifecycle to the local replica and the
// network sender. authenticated reflects whether a session credential is
// present; without one every send is refused up front.
func NewController(set *ConversationSet, sender Sender, authenticated bool, revealInterval time.Duration) *Controller {
	return &Controller{
		set:            set,
		sender:         sender,
		authenticated:  authenticated,
		revealInterval: revealInterval,
		inFlight:       make(map[string]bool),
	}
}

// Begin runs the guard checks and applies the optimistic user turn to the
// local replica. After a successful Begin the caller clears the draft and
// must follow up with exactly one Send for the same conversation.
func (c *Controller) Begin(chatID, promptText string) error {
	if !c.authenticated {
		return ErrNotAuthenticated
	}
	if strings.TrimSpace(promptText) == "" {
		return ErrEmptyPrompt
	}

	c.mu.Lock()
	if c.inFlight[chatID] {
		c.mu.Unlock()
		return ErrSendInFlight
	}
	c.inFlight[chatID] = true
	c.mu.Unlock()

	if err := c.set.AppendTurn(chatID, chat.NewUserTurn(promptText)); err != nil {
		c.release(chatID)
		return err
	}
	return nil
}

// Send performs the network round trip for a turn begun with Begin. Exactly
// one call is made; there is no retry and no cancellation once issued.
//
// On failure the error is returned for the caller to surface and the
// optimistic user turn stays in place; the caller restores the draft so the
// text is not lost. On success the assistant turn is appended with empty
// content and a Revealer over the reply text is returned; applying its
// prefixes completes the turn.
func (c *Controller) Send(ctx context.Context, chatID, promptText string) (*Revealer, error) {
	defer c.release(chatID)

	conv, err := c.sender.Send(ctx, chatID, promptText)
	if err != nil {
		return nil, err
	}

	reply, ok := conv.LastTurn()
	if !ok || reply.Role != chat.RoleAssistant {
		return nil, fmt.Errorf("malformed server response: no assistant turn")
	}

	if err := c.set.AppendTurn(chatID, chat.Turn{
		Role:      chat.RoleAssistant,
		Timestamp: reply.Timestamp,
	}); err != nil {
		return nil, err
	}

	return NewRevealer(reply.Content, c.revealInterval), nil
}

// Advance applies the next reveal step to the conversation and reports
// whether further steps remain.
func (c *Controller) Advance(chatID string, rev *Revealer) bool {
	prefix, ok := rev.Next()
	if !ok {
		return false
	}
	if err := c.set.SetLastTurnContent(chatID, prefix); err != nil {
		rev.Stop()
		return false
	}
	return !rev.Done()
}

// InFlight reports whether a send is outstanding for the conversation.
func (c *Controller) InFlight(chatID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight[chatID]
}

func (c *Controller) release(chatID string) {
	c.mu.Lock()
	delete(c.inFlight, chatID)
	c.mu.Unlock()
}
