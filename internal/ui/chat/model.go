// Package chat renders the terminal chat view: a transcript viewport, a
// prompt box, and the reveal animation over incoming replies.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/liuwen/deepchat/internal/client"
	chatmodel "github.com/liuwen/deepchat/internal/model/chat"
	"github.com/liuwen/deepchat/internal/ui/styles"
)

const inputHeight = 3

// Model is the Bubble Tea model for the chat view.
type Model struct {
	set  *client.ConversationSet
	ctrl *client.Controller
	api  conversationAPI

	input    textarea.Model
	viewport viewport.Model

	reveal     *client.Revealer
	revealChat string

	toast  string
	width  int
	height int
	ready  bool
}

// New builds the chat view over the client core.
func New(set *client.ConversationSet, ctrl *client.Controller, api conversationAPI) Model {
	input := textarea.New()
	input.Placeholder = "Message DeepSeek"
	input.CharLimit = 0
	input.SetHeight(inputHeight)
	input.ShowLineNumbers = false
	input.Focus()

	return Model{
		set:   set,
		ctrl:  ctrl,
		api:   api,
		input: input,
	}
}

// Init loads the conversation list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, loadConversationsCmd(m.api))
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case conversationsLoadedMsg:
		return m.handleConversationsLoaded(msg)

	case conversationCreatedMsg:
		return m.handleConversationCreated(msg)

	case sendResultMsg:
		return m.handleSendResult(msg)

	case revealTickMsg:
		return m.handleRevealTick()

	case toastClearMsg:
		m.toast = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	viewportHeight := msg.Height - inputHeight - 4
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(msg.Width, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = viewportHeight
	}
	m.input.SetWidth(msg.Width - 2)

	m.refreshTranscript()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "enter":
		return m.submit()

	case "ctrl+n":
		return m, createConversationCmd(m.api)

	case "ctrl+o":
		m.cycleConversation()
		m.refreshTranscript()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit runs the guard checks and, when they pass, clears the draft and
// fires the network call. A guard rejection surfaces as a warning and
// leaves the draft untouched.
func (m Model) submit() (tea.Model, tea.Cmd) {
	prompt := m.input.Value()
	chatID := m.set.SelectedID()
	if chatID == "" {
		return m.warn("no conversation selected")
	}

	if err := m.ctrl.Begin(chatID, prompt); err != nil {
		return m.warn(err.Error())
	}

	m.input.Reset()
	m.refreshTranscript()
	return m, sendCmd(m.ctrl, chatID, prompt)
}

func (m Model) handleConversationsLoaded(msg conversationsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m.warn(msg.err.Error())
	}

	m.set.Replace(msg.convs)
	m.refreshTranscript()

	if m.set.Len() == 0 {
		return m, createConversationCmd(m.api)
	}
	return m, nil
}

func (m Model) handleConversationCreated(msg conversationCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m.warn(msg.err.Error())
	}

	m.set.Add(msg.conv)
	m.refreshTranscript()
	return m, nil
}

// handleSendResult reconciles the round trip: a failure restores the draft
// so the user keeps their text; a success starts the reveal ticks.
func (m Model) handleSendResult(msg sendResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.input.SetValue(msg.prompt)
		return m.warn(msg.err.Error())
	}

	m.reveal = msg.rev
	m.revealChat = msg.chatID
	m.refreshTranscript()
	return m, revealTickCmd(msg.rev.Interval())
}

func (m Model) handleRevealTick() (tea.Model, tea.Cmd) {
	if m.reveal == nil {
		return m, nil
	}

	more := m.ctrl.Advance(m.revealChat, m.reveal)
	m.refreshTranscript()

	if !more {
		m.reveal = nil
		m.revealChat = ""
		return m, nil
	}
	return m, revealTickCmd(m.reveal.Interval())
}

func (m Model) warn(text string) (tea.Model, tea.Cmd) {
	m.toast = text
	return m, toastClearCmd()
}

// cycleConversation selects the next conversation in display order.
func (m *Model) cycleConversation() {
	convs := m.set.List()
	if len(convs) < 2 {
		return
	}

	current := m.set.SelectedID()
	for i, conv := range convs {
		if conv.ID == current {
			_ = m.set.Select(convs[(i+1)%len(convs)].ID)
			return
		}
	}
}

// refreshTranscript re-renders the selected conversation into the viewport.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}

	conv, ok := m.set.Selected()
	if !ok {
		m.viewport.SetContent(styles.Help.Render("No conversation. Press ctrl+n to start one."))
		return
	}

	var b strings.Builder
	for i, turn := range conv.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(renderTurn(turn))
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func renderTurn(turn chatmodel.Turn) string {
	label := styles.AssistantLabel.Render("DeepSeek")
	if turn.Role == chatmodel.RoleUser {
		label = styles.UserLabel.Render("You")
	}
	return label + "\n" + turn.Content
}

// View renders the chat screen.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	title := "deepchat"
	if conv, ok := m.set.Selected(); ok && conv.Title != "" {
		title = fmt.Sprintf("deepchat · %s", conv.Title)
	}
	header := styles.Header.Width(m.width).Render(title)

	help := styles.Help.Render("enter send · ctrl+n new chat · ctrl+o switch · esc quit")
	status := help
	if m.toast != "" {
		status = styles.Toast.Render(m.toast)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		m.viewport.View(),
		styles.InputBorder.Width(m.width-2).Render(m.input.View()),
		status,
	)
}
