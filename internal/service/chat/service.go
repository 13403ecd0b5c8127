// Package chat implements the server side of the chat-send lifecycle.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	chatmodel "github.com/liuwen/deepchat/internal/model/chat"
	"github.com/liuwen/deepchat/internal/service/ai"
	"github.com/liuwen/deepchat/internal/store"
)

var (
	ErrNotFound           = errors.New("conversation not found")
	ErrProviderFailure    = errors.New("completion provider failed")
	ErrTimeout            = errors.New("completion provider timed out")
	ErrPersistenceFailure = errors.New("failed to persist conversation")
)

// Service drives one send end to end: load the conversation, append the
// user turn, request a completion, append the reply, persist once.
type Service struct {
	store     store.Store
	completer ai.Completer
	now       func() time.Time
}

// NewService wires the send pipeline to its collaborators.
func NewService(st store.Store, completer ai.Completer) *Service {
	return &Service{store: st, completer: completer, now: func() time.Time { return time.Now().UTC() }}
}

// SendTurn appends the user's prompt and the provider's reply to the
// conversation owned by owner and returns the persisted result.
//
// The store is written exactly once, after the provider call, so a failure
// before that point leaves no partial record. A save failure after a
// successful completion loses the generated reply; that loss is surfaced as
// ErrPersistenceFailure rather than masked.
//
// The pipeline does read-modify-write with a last-write-wins save. Two
// concurrent sends against the same conversation can each read the same
// prior state and one pair of turns is then lost on save; fixing that needs
// a version check or an atomic append at the store boundary.
func (s *Service) SendTurn(ctx context.Context, owner, chatID, promptText string) (chatmodel.Conversation, error) {
	conv, err := s.store.FindOne(ctx, owner, chatID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("[chat] lookup failed for owner=%s chat=%s: %v", owner, chatID, err)
		}
		return chatmodel.Conversation{}, fmt.Errorf("%w: %s", ErrNotFound, chatID)
	}

	conv.Append(chatmodel.Turn{
		Role:      chatmodel.RoleUser,
		Content:   promptText,
		Timestamp: s.now(),
	})

	// Prior turns are deliberately not forwarded: each prompt is answered
	// statelessly by the provider.
	reply, err := s.completer.Complete(ctx, promptText)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return chatmodel.Conversation{}, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return chatmodel.Conversation{}, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	conv.Append(chatmodel.Turn{
		Role:      chatmodel.RoleAssistant,
		Content:   reply,
		Timestamp: s.now(),
	})

	if err := s.store.Save(ctx, conv); err != nil {
		return chatmodel.Conversation{}, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	return conv, nil
}

// CreateConversation provisions an empty conversation for the owner.
func (s *Service) CreateConversation(ctx context.Context, owner string) (chatmodel.Conversation, error) {
	conv := chatmodel.NewConversation(owner)
	if err := s.store.Create(ctx, conv); err != nil {
		return chatmodel.Conversation{}, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return conv, nil
}

// ListConversations returns the owner's conversations, newest first.
func (s *Service) ListConversations(ctx context.Context, owner string) ([]chatmodel.Conversation, error) {
	convs, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return convs, nil
}

// RenameConversation sets a new title on an existing conversation.
func (s *Service) RenameConversation(ctx context.Context, owner, chatID, title string) (chatmodel.Conversation, error) {
	conv, err := s.store.FindOne(ctx, owner, chatID)
	if err != nil {
		return chatmodel.Conversation{}, fmt.Errorf("%w: %s", ErrNotFound, chatID)
	}

	conv.Title = title
	conv.UpdatedAt = s.now()

	if err := s.store.Save(ctx, conv); err != nil {
		return chatmodel.Conversation{}, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return conv, nil
}

// DeleteConversation removes a conversation. The send path itself never
// truncates history; deletion is only reachable through this explicit call.
func (s *Service) DeleteConversation(ctx context.Context, owner, chatID string) error {
	if err := s.store.Delete(ctx, owner, chatID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, chatID)
		}
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return nil
}
