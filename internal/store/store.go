// Package store holds durable per-user conversation collections.
package store

import (
	"context"
	"errors"

	"github.com/liuwen/deepchat/internal/model/chat"
)

var ErrNotFound = errors.New("conversation not found")

// Store is the conversation persistence boundary. Every lookup is scoped by
// owner so one user can never read or overwrite another user's history.
//
// Save is an unconditional overwrite of the whole record (last write wins).
// There is no version token, so two concurrent read-modify-write cycles on
// the same conversation can silently drop one of them; supporting that
// correctly needs an atomic append or a version check here.
type Store interface {
	Create(ctx context.Context, conv chat.Conversation) error
	FindOne(ctx context.Context, owner, id string) (chat.Conversation, error)
	ListByOwner(ctx context.Context, owner string) ([]chat.Conversation, error)
	Save(ctx context.Context, conv chat.Conversation) error
	Delete(ctx context.Context, owner, id string) error
}
