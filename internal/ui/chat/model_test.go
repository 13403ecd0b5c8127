package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/liuwen/deepchat/internal/client"
	chatmodel "github.com/liuwen/deepchat/internal/model/chat"
)

type stubSender struct {
	reply string
	err   error
	calls int
}

func (s *stubSender) Send(_ context.Context, chatID, promptText string) (chatmodel.Conversation, error) {
	s.calls++
	if s.err != nil {
		return chatmodel.Conversation{}, s.err
	}
	conv := chatmodel.NewConversation("alice")
	conv.ID = chatID
	conv.Append(chatmodel.NewUserTurn(promptText))
	conv.Append(chatmodel.NewAssistantTurn(s.reply))
	return conv, nil
}

type stubAPI struct{}

func (stubAPI) CreateConversation(context.Context) (chatmodel.Conversation, error) {
	return chatmodel.NewConversation("alice"), nil
}

func (stubAPI) ListConversations(context.Context) ([]chatmodel.Conversation, error) {
	return nil, nil
}

func newTestModel(t *testing.T, sender client.Sender) (Model, *client.ConversationSet, string) {
	t.Helper()
	conv := chatmodel.NewConversation("alice")
	set := client.NewConversationSet()
	set.Replace([]chatmodel.Conversation{conv})

	ctrl := client.NewController(set, sender, true, time.Millisecond)
	m := New(set, ctrl, stubAPI{})

	// Size the view so the transcript renders.
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model), set, conv.ID
}

func pressEnter(t *testing.T, m Model) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestSubmitEmptyPromptRefused(t *testing.T) {
	sender := &stubSender{reply: "unused"}
	m, set, _ := newTestModel(t, sender)

	m, _ = pressEnter(t, m)

	require.NotEmpty(t, m.toast, "empty prompt should surface a warning")
	require.Zero(t, sender.calls, "guard rejection must not reach the network")
	selected, _ := set.Selected()
	require.Empty(t, selected.Messages, "guard rejection must not change the transcript")
}

func TestSubmitClearsDraftAndSends(t *testing.T) {
	sender := &stubSender{reply: "hi"}
	m, set, _ := newTestModel(t, sender)
	m.input.SetValue("hello")

	m, cmd := pressEnter(t, m)

	require.Empty(t, m.input.Value(), "draft clears once the guards pass")
	require.NotNil(t, cmd)
	selected, _ := set.Selected()
	require.Len(t, selected.Messages, 1, "user turn appears before the response arrives")
	require.Equal(t, "hello", selected.Messages[0].Content)
}

// A failed round trip puts the draft back in the prompt box so the text is
// not lost, and leaves the optimistic user turn in place.
func TestSendFailureRestoresDraft(t *testing.T) {
	sender := &stubSender{err: errors.New("network down")}
	m, set, _ := newTestModel(t, sender)
	m.input.SetValue("hello")

	m, cmd := pressEnter(t, m)
	require.Empty(t, m.input.Value())

	next, _ := m.Update(cmd())
	m = next.(Model)

	require.Equal(t, "hello", m.input.Value(), "failure must restore the draft")
	require.NotEmpty(t, m.toast)
	selected, _ := set.Selected()
	require.Len(t, selected.Messages, 1)
	require.Equal(t, chatmodel.RoleUser, selected.Messages[0].Role)
}

func TestSendSuccessRevealsReply(t *testing.T) {
	sender := &stubSender{reply: "hey"}
	m, set, _ := newTestModel(t, sender)
	m.input.SetValue("hello")

	m, cmd := pressEnter(t, m)
	next, tick := m.Update(cmd())
	m = next.(Model)

	require.NotNil(t, m.reveal, "success starts the reveal")
	require.NotNil(t, tick)

	// The assistant turn starts empty and fills one rune per tick.
	selected, _ := set.Selected()
	require.Len(t, selected.Messages, 2)
	require.Empty(t, selected.Messages[1].Content)

	for i := 0; i < 10; i++ {
		if m.reveal == nil {
			break
		}
		next, _ = m.Update(revealTickMsg{})
		m = next.(Model)
	}

	require.Nil(t, m.reveal, "reveal finishes within len(reply) ticks")
	selected, _ = set.Selected()
	require.Equal(t, "hey", selected.Messages[1].Content)
}

func TestSecondSendWhileInFlightWarns(t *testing.T) {
	sender := &stubSender{reply: "hi"}
	m, _, _ := newTestModel(t, sender)
	m.input.SetValue("first")

	// First submit passes the guards; the network command is not run yet, so
	// the send stays in flight.
	m, _ = pressEnter(t, m)

	m.input.SetValue("second")
	m, _ = pressEnter(t, m)

	require.Equal(t, client.ErrSendInFlight.Error(), m.toast)
	require.Equal(t, "second", m.input.Value(), "rejected draft stays in the prompt box")
	require.Zero(t, sender.calls)
}
