package cli

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/ideaforge/internal/conversation"
	"github.com/alexanderramin/ideaforge/internal/domain"
	"github.com/alexanderramin/ideaforge/internal/intelligence"
	"github.com/alexanderramin/ideaforge/internal/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatDriver(t *testing.T, app *App) (*teatest.Driver, *chatModel) {
	t.Helper()
	m := newChatModel(context.Background(), app)
	d := teatest.New(t, m, teatest.WithSize(120, 60), teatest.WithCmdTimeout(2*time.Second))
	d.DrainInit()
	return d, m
}

func TestChatView_ShowsGreeting(t *testing.T) {
	app := testApp(t, replies("x"))
	d, _ := newChatDriver(t, app)

	d.RequireViewContains(conversation.Greeting(cliUser))
	d.RequireViewContains("REFINEMENT")
	d.RequireViewContains("/remember")
}

func TestChatView_SubmitShowsReply(t *testing.T) {
	app := testApp(t, replies("Who would buy it first?"))
	d, m := newChatDriver(t, app)

	d.Submit("A marketplace for used climbing gear")

	d.RequireViewContains("You: A marketplace for used climbing gear")
	d.RequireViewContains("Who would buy it first?")
	assert.False(t, m.waiting())
	assert.Equal(t, 1, app.Sessions.Active().TurnCount)
}

func TestChatView_EmptyInputShowsNotice(t *testing.T) {
	app := testApp(t, replies("x"))
	d, _ := newChatDriver(t, app)

	d.PressEnter()
	d.RequireViewContains("Type a message first.")
	assert.Zero(t, app.Sessions.Active().TurnCount)
}

func TestChatView_SlashCommands(t *testing.T) {
	app := testApp(t, replies("x"))
	d, m := newChatDriver(t, app)
	first := m.sessionID

	d.Submit("/general")
	d.RequireViewContains("GENERAL")
	assert.Equal(t, domain.ModeGeneral, app.Sessions.Active().Mode)

	d.Submit("/refine")
	d.RequireViewContains("REFINEMENT")

	d.Submit("/remember I have two dogs")
	assert.Equal(t, []string{"I have two dogs"}, app.Sessions.Active().Facts)
	d.Submit("/remember I have two dogs")
	d.RequireViewContains("Already remembered.")

	d.Submit("/bogus")
	d.RequireViewContains("Unknown command.")

	d.Submit("/new")
	assert.NotEqual(t, first, m.sessionID)
	assert.Equal(t, m.sessionID, app.Sessions.Active().ID)

	d.Submit("/quit")
	assert.True(t, d.Quitting)
}

func TestChatView_SummaryLocksUntilMore(t *testing.T) {
	app := testApp(t, replies(cruxSummary, "What else should we sharpen?"))
	d, _ := newChatDriver(t, app)

	d.Submit("Used climbing gear marketplace")
	d.RequireViewContains("VENTURE PROFILE")
	d.RequireViewContains("Crux Exchange")

	d.Submit("one more thing")
	d.RequireViewContains("Your profile is final.")
	assert.Equal(t, 1, app.Sessions.Active().TurnCount)

	d.Submit("/more")
	assert.False(t, app.Sessions.Active().SummaryFinalized)

	d.Submit("one more thing")
	d.RequireViewContains("What else should we sharpen?")
}

func TestChatView_MoreWithoutSummary(t *testing.T) {
	app := testApp(t, replies("x"))
	d, _ := newChatDriver(t, app)
	clarity := app.Sessions.Active().ClarityScore

	d.Submit("/more")

	d.RequireViewContains("Nothing to reopen yet.")
	assert.Equal(t, clarity, app.Sessions.Active().ClarityScore)
}

func TestChatView_BootstrapCelebrates(t *testing.T) {
	responder := &scriptedResponder{replies: []*intelligence.ResponderReply{
		{ReplyText: cruxSummary, CommandGuess: domain.StrPtr("bootstrap")},
	}}
	app := testApp(t, responder)
	d, m := newChatDriver(t, app)

	d.Submit("/bootstrap")
	d.RequireViewContains("Usage: /bootstrap")

	d.Submit("/bootstrap Crux Exchange")
	d.RequireViewContains("Your venture profile is ready")
	assert.Equal(t, domain.OriginBootstrapped, app.Sessions.Active().Origin)
	assert.NotContains(t, d.View(), intelligence.BootstrapDirective("Crux Exchange"))
	assert.True(t, m.celebrate)
}

func TestChatView_ReplyForOtherSessionIgnored(t *testing.T) {
	app := testApp(t, replies("x"))
	d, m := newChatDriver(t, app)
	m.pending = "still typing"

	d.Send(turnDoneMsg{sessionID: "some-other-session"})
	assert.Equal(t, "still typing", m.pending)
}

func TestChatView_ResponderFailureShowsNotice(t *testing.T) {
	app := testApp(t, &scriptedResponder{err: assert.AnError})
	d, _ := newChatDriver(t, app)

	d.Submit("hello there friend")
	d.RequireViewContains(conversation.ResponderFailureMessage)
	require.Zero(t, app.Sessions.Active().TurnCount)
}
