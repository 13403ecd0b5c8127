package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/liuwen/deepchat/internal/client"
	chatmodel "github.com/liuwen/deepchat/internal/model/chat"
)

// conversationAPI covers the conversation management calls the view needs
// beyond sending.
type conversationAPI interface {
	CreateConversation(ctx context.Context) (chatmodel.Conversation, error)
	ListConversations(ctx context.Context) ([]chatmodel.Conversation, error)
}

// sendResultMsg reports the outcome of one send round trip. prompt carries
// the original draft so a failure can restore it.
type sendResultMsg struct {
	chatID string
	prompt string
	rev    *client.Revealer
	err    error
}

// revealTickMsg drives one reveal step.
type revealTickMsg struct{}

// toastClearMsg dismisses the warning line.
type toastClearMsg struct{}

type conversationsLoadedMsg struct {
	convs []chatmodel.Conversation
	err   error
}

type conversationCreatedMsg struct {
	conv chatmodel.Conversation
	err  error
}

func sendCmd(ctrl *client.Controller, chatID, prompt string) tea.Cmd {
	return func() tea.Msg {
		rev, err := ctrl.Send(context.Background(), chatID, prompt)
		return sendResultMsg{chatID: chatID, prompt: prompt, rev: rev, err: err}
	}
}

func revealTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return revealTickMsg{}
	})
}

func toastClearCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return toastClearMsg{}
	})
}

func loadConversationsCmd(api conversationAPI) tea.Cmd {
	return func() tea.Msg {
		convs, err := api.ListConversations(context.Background())
		return conversationsLoadedMsg{convs: convs, err: err}
	}
}

func createConversationCmd(api conversationAPI) tea.Cmd {
	return func() tea.Msg {
		conv, err := api.CreateConversation(context.Background())
		return conversationCreatedMsg{conv: conv, err: err}
	}
}
