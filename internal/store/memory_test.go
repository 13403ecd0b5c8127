package store

import (
	"context"
	"errors"
	"testing"

	"github.com/liuwen/deepchat/internal/model/chat"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	conv := chat.NewConversation("alice")
	conv.Append(chat.NewUserTurn("hello"))
	if err := s.Create(ctx, conv); err != nil {
		t.Fatalf("Create err: %v", err)
	}

	got, err := s.FindOne(ctx, "alice", conv.ID)
	if err != nil {
		t.Fatalf("FindOne err: %v", err)
	}
	if got.ID != conv.ID || len(got.Messages) != 1 {
		t.Fatalf("unexpected conversation: %+v", got)
	}
}

func TestMemoryStoreOwnerScoping(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	conv := chat.NewConversation("alice")
	if err := s.Create(ctx, conv); err != nil {
		t.Fatalf("Create err: %v", err)
	}

	if _, err := s.FindOne(ctx, "bob", conv.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong owner, got %v", err)
	}
}

func TestMemoryStoreSaveMissing(t *testing.T) {
	s := NewMemoryStore()

	conv := chat.NewConversation("alice")
	if err := s.Save(context.Background(), conv); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound saving unknown conversation, got %v", err)
	}
}

func TestMemoryStoreSaveOverwrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	conv := chat.NewConversation("alice")
	if err := s.Create(ctx, conv); err != nil {
		t.Fatalf("Create err: %v", err)
	}

	conv.Append(chat.NewUserTurn("hi"))
	conv.Append(chat.NewAssistantTurn("hello"))
	if err := s.Save(ctx, conv); err != nil {
		t.Fatalf("Save err: %v", err)
	}

	got, err := s.FindOne(ctx, "alice", conv.ID)
	if err != nil {
		t.Fatalf("FindOne err: %v", err)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("expected 2 turns after save, got %d", len(got.Messages))
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	conv := chat.NewConversation("alice")
	conv.Append(chat.NewUserTurn("original"))
	if err := s.Create(ctx, conv); err != nil {
		t.Fatalf("Create err: %v", err)
	}

	got, err := s.FindOne(ctx, "alice", conv.ID)
	if err != nil {
		t.Fatalf("FindOne err: %v", err)
	}
	got.Messages[0].Content = "mutated"

	again, err := s.FindOne(ctx, "alice", conv.ID)
	if err != nil {
		t.Fatalf("FindOne err: %v", err)
	}
	if again.Messages[0].Content != "original" {
		t.Fatal("caller mutation leaked into the store")
	}
}

func TestMemoryStoreListAndDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first := chat.NewConversation("alice")
	second := chat.NewConversation("alice")
	for _, conv := range []chat.Conversation{first, second} {
		if err := s.Create(ctx, conv); err != nil {
			t.Fatalf("Create err: %v", err)
		}
	}

	convs, err := s.ListByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByOwner err: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(convs))
	}

	if err := s.Delete(ctx, "alice", first.ID); err != nil {
		t.Fatalf("Delete err: %v", err)
	}
	if err := s.Delete(ctx, "alice", first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	convs, err = s.ListByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByOwner err: %v", err)
	}
	if len(convs) != 1 || convs[0].ID != second.ID {
		t.Fatalf("unexpected conversations after delete: %+v", convs)
	}
}
