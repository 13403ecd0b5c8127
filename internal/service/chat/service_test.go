package chat_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	chatmodel "github.com/liuwen/deepchat/internal/model/chat"
	chatservice "github.com/liuwen/deepchat/internal/service/chat"
	"github.com/liuwen/deepchat/internal/store"
)

// fakeCompleter returns a canned reply or a canned error.
type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// failingSaveStore wraps a store and fails every Save.
type failingSaveStore struct {
	store.Store
}

func (f *failingSaveStore) Save(context.Context, chatmodel.Conversation) error {
	return errors.New("disk full")
}

func seedConversation(t *testing.T, st store.Store, owner string) chatmodel.Conversation {
	t.Helper()
	conv := chatmodel.NewConversation(owner)
	if err := st.Create(context.Background(), conv); err != nil {
		t.Fatalf("seed conversation: %v", err)
	}
	return conv
}

func TestSendTurnAppendsPairInOrder(t *testing.T) {
	st := store.NewMemoryStore()
	svc := chatservice.NewService(st, &fakeCompleter{reply: "hi there"})
	ctx := context.Background()
	conv := seedConversation(t, st, "alice")

	got, err := svc.SendTurn(ctx, "alice", conv.ID, "hello")
	if err != nil {
		t.Fatalf("SendTurn err: %v", err)
	}

	if len(got.Messages) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(got.Messages))
	}
	if got.Messages[0].Role != chatmodel.RoleUser || got.Messages[0].Content != "hello" {
		t.Fatalf("unexpected user turn: %+v", got.Messages[0])
	}
	if got.Messages[1].Role != chatmodel.RoleAssistant || got.Messages[1].Content != "hi there" {
		t.Fatalf("unexpected assistant turn: %+v", got.Messages[1])
	}

	persisted, err := st.FindOne(ctx, "alice", conv.ID)
	if err != nil {
		t.Fatalf("FindOne err: %v", err)
	}
	if len(persisted.Messages) != 2 {
		t.Fatalf("persisted turns = %d, want 2", len(persisted.Messages))
	}
}

func TestSendTurnSequenceIsConcatenationOfPairs(t *testing.T) {
	st := store.NewMemoryStore()
	completer := &fakeCompleter{}
	svc := chatservice.NewService(st, completer)
	ctx := context.Background()
	conv := seedConversation(t, st, "alice")

	for i := 0; i < 3; i++ {
		completer.reply = fmt.Sprintf("reply-%d", i)
		if _, err := svc.SendTurn(ctx, "alice", conv.ID, fmt.Sprintf("prompt-%d", i)); err != nil {
			t.Fatalf("SendTurn %d err: %v", i, err)
		}
	}

	persisted, err := st.FindOne(ctx, "alice", conv.ID)
	if err != nil {
		t.Fatalf("FindOne err: %v", err)
	}
	if len(persisted.Messages) != 6 {
		t.Fatalf("expected 6 turns, got %d", len(persisted.Messages))
	}
	for i := 0; i < 3; i++ {
		user := persisted.Messages[2*i]
		reply := persisted.Messages[2*i+1]
		if user.Content != fmt.Sprintf("prompt-%d", i) || reply.Content != fmt.Sprintf("reply-%d", i) {
			t.Fatalf("pair %d out of order: %q / %q", i, user.Content, reply.Content)
		}
	}
}

func TestSendTurnUnknownConversation(t *testing.T) {
	st := store.NewMemoryStore()
	completer := &fakeCompleter{reply: "unused"}
	svc := chatservice.NewService(st, completer)

	_, err := svc.SendTurn(context.Background(), "alice", "missing", "hello")
	if !errors.Is(err, chatservice.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if completer.calls != 0 {
		t.Fatalf("provider must not be called for a missing conversation, calls=%d", completer.calls)
	}
}

func TestSendTurnWrongOwner(t *testing.T) {
	st := store.NewMemoryStore()
	svc := chatservice.NewService(st, &fakeCompleter{reply: "unused"})
	conv := seedConversation(t, st, "alice")

	if _, err := svc.SendTurn(context.Background(), "bob", conv.ID, "hello"); !errors.Is(err, chatservice.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong owner, got %v", err)
	}
}

func TestSendTurnProviderFailureLeavesStoreUntouched(t *testing.T) {
	st := store.NewMemoryStore()
	svc := chatservice.NewService(st, &fakeCompleter{err: errors.New("model unavailable")})
	ctx := context.Background()
	conv := seedConversation(t, st, "alice")

	_, err := svc.SendTurn(ctx, "alice", conv.ID, "hello")
	if !errors.Is(err, chatservice.ErrProviderFailure) {
		t.Fatalf("expected ErrProviderFailure, got %v", err)
	}

	persisted, err := st.FindOne(ctx, "alice", conv.ID)
	if err != nil {
		t.Fatalf("FindOne err: %v", err)
	}
	if len(persisted.Messages) != 0 {
		t.Fatalf("failed send must not write turns, got %d", len(persisted.Messages))
	}
}

func TestSendTurnTimeout(t *testing.T) {
	st := store.NewMemoryStore()
	timeoutErr := fmt.Errorf("completion provider: %w", context.DeadlineExceeded)
	svc := chatservice.NewService(st, &fakeCompleter{err: timeoutErr})
	conv := seedConversation(t, st, "alice")

	_, err := svc.SendTurn(context.Background(), "alice", conv.ID, "hello")
	if !errors.Is(err, chatservice.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestSendTurnPersistenceFailure(t *testing.T) {
	st := store.NewMemoryStore()
	svc := chatservice.NewService(&failingSaveStore{Store: st}, &fakeCompleter{reply: "hi"})
	ctx := context.Background()
	conv := seedConversation(t, st, "alice")

	_, err := svc.SendTurn(ctx, "alice", conv.ID, "hello")
	if !errors.Is(err, chatservice.ErrPersistenceFailure) {
		t.Fatalf("expected ErrPersistenceFailure, got %v", err)
	}

	// The reply is lost, but no partial record may be written either.
	persisted, err := st.FindOne(ctx, "alice", conv.ID)
	if err != nil {
		t.Fatalf("FindOne err: %v", err)
	}
	if len(persisted.Messages) != 0 {
		t.Fatalf("failed save must leave the record unchanged, got %d turns", len(persisted.Messages))
	}
}

func TestCreateListRenameDelete(t *testing.T) {
	st := store.NewMemoryStore()
	svc := chatservice.NewService(st, &fakeCompleter{reply: "hi"})
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateConversation err: %v", err)
	}
	if conv.Owner != "alice" || conv.ID == "" {
		t.Fatalf("unexpected conversation: %+v", conv)
	}

	renamed, err := svc.RenameConversation(ctx, "alice", conv.ID, "plans")
	if err != nil {
		t.Fatalf("RenameConversation err: %v", err)
	}
	if renamed.Title != "plans" {
		t.Fatalf("unexpected title %q", renamed.Title)
	}

	convs, err := svc.ListConversations(ctx, "alice")
	if err != nil {
		t.Fatalf("ListConversations err: %v", err)
	}
	if len(convs) != 1 || convs[0].Title != "plans" {
		t.Fatalf("unexpected list: %+v", convs)
	}

	if err := svc.DeleteConversation(ctx, "alice", conv.ID); err != nil {
		t.Fatalf("DeleteConversation err: %v", err)
	}
	if err := svc.DeleteConversation(ctx, "alice", conv.ID); !errors.Is(err, chatservice.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
