package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/alexanderramin/ideaforge/internal/cli/formatter"
	"github.com/alexanderramin/ideaforge/internal/conversation"
	"github.com/alexanderramin/ideaforge/internal/domain"
	"github.com/alexanderramin/ideaforge/internal/intelligence"
	"github.com/alexanderramin/ideaforge/internal/service"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// turnDoneMsg carries a finished turn back to the view. It is tagged with
// the session it was submitted for.
type turnDoneMsg struct {
	sessionID string
	res       *service.TurnResult
	err       error
}

type chatKeyMap struct {
	Send key.Binding
	Quit key.Binding
}

var chatKeys = chatKeyMap{
	Send: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
	Quit: key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
}

const chatHelpText = "/general  /refine  /more  /remember <fact>  /new  /quit"

// chatModel is the interactive chat. It always shows the active session;
// a reply for a session that is no longer shown only updates the store.
type chatModel struct {
	ctx       context.Context
	app       *App
	sessionID string

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	pending   string
	notice    string
	celebrate bool
	width     int
	ready     bool
}

func newChatModel(ctx context.Context, app *App) *chatModel {
	ti := textinput.New()
	ti.Placeholder = "Describe your idea... (Enter to send, Esc to quit)"
	ti.Prompt = "│ "
	ti.CharLimit = 4096
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = formatter.StylePurple

	m := &chatModel{
		ctx:       ctx,
		app:       app,
		sessionID: app.Sessions.Active().ID,
		input:     ti,
		viewport:  viewport.New(80, 20),
		spinner:   sp,
		width:     80,
	}
	m.refresh()
	return m
}

func (m *chatModel) Init() tea.Cmd {
	return nil
}

func (m *chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-6, 3)
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, chatKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, chatKeys.Send):
			text := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			return m.handleInput(text)
		case msg.Type == tea.KeyPgUp || msg.Type == tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case turnDoneMsg:
		return m.handleTurnDone(msg), nil

	case spinner.TickMsg:
		if !m.waiting() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *chatModel) View() string {
	s := m.session()
	var b strings.Builder
	b.WriteString(formatter.FormatSessionHeader(&s))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	switch {
	case m.waiting():
		b.WriteString(m.spinner.View() + formatter.Dim(" thinking..."))
	case m.notice != "":
		b.WriteString(formatter.StyleYellow.Render(m.notice))
	default:
		b.WriteString(formatter.Dim(chatHelpText))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	return b.String()
}

func (m *chatModel) handleInput(text string) (tea.Model, tea.Cmd) {
	m.notice = ""
	if text == "" {
		m.notice = "Type a message first."
		return m, nil
	}
	if strings.HasPrefix(text, "/") {
		return m.handleSlash(text)
	}
	if m.waiting() {
		m.notice = "Still waiting for the last reply."
		return m, nil
	}
	if s := m.session(); s.SummaryFinalized {
		m.notice = "Your profile is final. Type /more to keep refining."
		return m, nil
	}

	m.pending = text
	m.celebrate = false
	m.refresh()
	return m, tea.Batch(m.submitCmd(m.sessionID, text), m.spinner.Tick)
}

func (m *chatModel) handleSlash(text string) (tea.Model, tea.Cmd) {
	cmd, arg, _ := strings.Cut(text, " ")
	var err error
	switch strings.ToLower(cmd) {
	case "/quit", "/exit", "/q":
		return m, tea.Quit
	case "/general":
		_, err = m.app.Chat.SwitchMode(m.ctx, m.sessionID, domain.ModeGeneral)
	case "/refine", "/refinement":
		_, err = m.app.Chat.SwitchMode(m.ctx, m.sessionID, domain.ModeRefinement)
	case "/more":
		_, err = m.app.Chat.TalkMore(m.ctx, m.sessionID)
		if errors.Is(err, conversation.ErrNotFinalized) {
			m.notice = "Nothing to reopen yet. Keep chatting until your profile is ready."
			return m, nil
		}
	case "/remember":
		var added bool
		added, err = m.app.Chat.Remember(m.ctx, m.sessionID, arg)
		if err == nil && !added {
			m.notice = "Already remembered."
		}
	case "/new":
		m.sessionID = m.app.Sessions.Create(m.ctx).ID
		m.pending = ""
	case "/bootstrap":
		if strings.TrimSpace(arg) == "" {
			m.notice = "Usage: /bootstrap <venture name>"
			return m, nil
		}
		s := m.app.Sessions.CreateBootstrapped(m.ctx, arg)
		m.sessionID = s.ID
		m.pending = ""
		m.refresh()
		return m, tea.Batch(m.submitCmd(s.ID, intelligence.BootstrapDirective(arg)), m.spinner.Tick)
	default:
		m.notice = "Unknown command. " + chatHelpText
		return m, nil
	}
	if err != nil {
		m.notice = err.Error()
	}
	m.refresh()
	return m, nil
}

func (m *chatModel) handleTurnDone(msg turnDoneMsg) *chatModel {
	if msg.sessionID != m.sessionID {
		return m
	}
	m.pending = ""
	switch {
	case errors.Is(msg.err, conversation.ErrSummaryLocked):
		m.notice = "Your profile is final. Type /more to keep refining."
	case msg.err != nil:
		m.notice = msg.err.Error()
	case msg.res.ResponderErr != nil:
		m.notice = msg.res.ResponderErr.Error()
	default:
		m.celebrate = msg.res.Outcome.Celebrate
	}
	m.refresh()
	return m
}

func (m *chatModel) submitCmd(sessionID, text string) tea.Cmd {
	ctx, chat := m.ctx, m.app.Chat
	return func() tea.Msg {
		res, err := chat.Submit(ctx, sessionID, text)
		return turnDoneMsg{sessionID: sessionID, res: res, err: err}
	}
}

func (m *chatModel) waiting() bool {
	return m.app.Chat.InFlight(m.sessionID) || m.pending != ""
}

func (m *chatModel) session() domain.SessionState {
	s, err := m.app.Sessions.Get(m.sessionID)
	if err != nil {
		s = m.app.Sessions.Active()
		m.sessionID = s.ID
	}
	return s
}

// refresh rebuilds the viewport content from the store.
func (m *chatModel) refresh() {
	s := m.session()
	var b strings.Builder
	b.WriteString(formatter.FormatTranscript(&s, m.app.markdown()))
	if m.pending != "" && !lastIsUser(&s) {
		b.WriteString("\n" + formatter.FormatMessage(domain.Message{Sender: domain.SenderUser, Text: m.pending}, nil) + "\n")
	}
	if m.celebrate {
		b.WriteString("\n" + formatter.FormatCelebration() + "\n")
	}
	if s.ShowSummary && s.Profile != nil {
		b.WriteString("\n" + formatter.FormatProfile(intelligence.FinalizeProfile(s.Profile, m.app.UserName), s.FounderBackground) + "\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func lastIsUser(s *domain.SessionState) bool {
	msgs := s.VisibleMessages()
	return len(msgs) > 0 && msgs[len(msgs)-1].Sender == domain.SenderUser
}
