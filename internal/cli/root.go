package cli

import (
	"errors"
	"time"

	"github.com/alexanderramin/ideaforge/internal/cli/formatter"
	"github.com/alexanderramin/ideaforge/internal/service"
	"github.com/spf13/cobra"
)

var errLLMDisabled = errors.New("the responder is disabled; set IDEAFORGE_LLM_ENABLED=true and make sure Ollama is running")

// App holds the services CLI commands run against.
type App struct {
	Sessions *service.SessionStore
	Chat     service.ChatService

	UserName   string
	LLMEnabled bool

	// IsInteractive reports whether stdin is a terminal. Nil means never.
	IsInteractive func() bool

	// Markdown renders assistant replies. Nil renders plain text.
	Markdown *formatter.MarkdownRenderer

	// Now is swapped in tests. Nil means time.Now.
	Now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) markdown() *formatter.MarkdownRenderer {
	if a.Markdown == nil {
		return formatter.PlainRenderer()
	}
	return a.Markdown
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *App) requireResponder() error {
	if !a.LLMEnabled {
		return errLLMDisabled
	}
	return nil
}

// NewRootCmd creates the top-level "ideaforge" command. Run without
// arguments on a terminal it opens the interactive chat.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "ideaforge",
		Short:         "Turn a rough venture idea into a structured profile through conversation",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.interactive() && app.LLMEnabled {
				return runChat(cmd.Context(), app)
			}
			return cmd.Help()
		},
	}

	root.AddCommand(
		newSessionCmd(app),
		newSayCmd(app),
		newBootstrapCmd(app),
		newModeCmd(app),
		newRememberCmd(app),
		newTalkMoreCmd(app),
		newProfileCmd(app),
		newChatCmd(app),
	)

	return root
}
