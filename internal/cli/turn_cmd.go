package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/ideaforge/internal/cli/formatter"
	"github.com/alexanderramin/ideaforge/internal/conversation"
	"github.com/alexanderramin/ideaforge/internal/domain"
	"github.com/alexanderramin/ideaforge/internal/intelligence"
	"github.com/alexanderramin/ideaforge/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newSayCmd(app *App) *cobra.Command {
	var sessionFlag string

	cmd := &cobra.Command{
		Use:   "say MESSAGE...",
		Short: "Send a message to the active session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireResponder(); err != nil {
				return err
			}
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return conversation.ErrEmptyInput
			}
			id, err := resolveSessionID(app, sessionFlag)
			if err != nil {
				return err
			}
			res, err := withSpinner(cmd, app, func(ctx context.Context) (*service.TurnResult, error) {
				return app.Chat.Submit(ctx, id, text)
			})
			if err != nil {
				return err
			}
			printTurn(cmd.OutOrStdout(), app, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionFlag, "session", "", "Session ID or prefix (default: active session)")

	return cmd
}

func newBootstrapCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap NAME...",
		Short: "Generate a full venture profile from a name alone",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireResponder(); err != nil {
				return err
			}
			name := strings.TrimSpace(strings.Join(args, " "))
			if name == "" {
				return conversation.ErrEmptyInput
			}
			res, err := withSpinner(cmd, app, func(ctx context.Context) (*service.TurnResult, error) {
				return app.Chat.Bootstrap(ctx, name)
			})
			if err != nil {
				return err
			}
			printTurn(cmd.OutOrStdout(), app, res)
			return nil
		},
	}
}

func newModeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "mode refinement|general",
		Short:     "Switch the active session between refinement and open conversation",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(domain.ModeRefinement), string(domain.ModeGeneral)},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := parseMode(args[0])
			if err != nil {
				return err
			}
			s, err := app.Chat.SwitchMode(cmd.Context(), app.Sessions.Active().ID, mode)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.ModeBadge(s.Mode)+"  "+formatter.RenderClarity(&s, 20))
			return nil
		},
	}
}

func newRememberCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remember FACT...",
		Short: "Remember a fact about you for the rest of the session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			added, err := app.Chat.Remember(cmd.Context(), app.Sessions.Active().ID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if added {
				fmt.Fprintln(cmd.OutOrStdout(), conversation.MemoryAckMessage)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Already remembered."))
			}
			return nil
		},
	}
}

func newTalkMoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "talk-more",
		Short: "Reopen a finalized profile for further refinement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Chat.TalkMore(cmd.Context(), app.Sessions.Active().ID)
			if err != nil {
				return err
			}
			printLastAssistant(cmd.OutOrStdout(), app, &s)
			return nil
		},
	}
}

func parseMode(s string) (domain.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "refinement", "refine":
		return domain.ModeRefinement, nil
	case "general":
		return domain.ModeGeneral, nil
	}
	return "", fmt.Errorf("unknown mode %q (use refinement or general)", s)
}

// modeFlag is a flag value accepting the same spellings as the mode command.
type modeFlag struct {
	mode domain.Mode
}

var _ pflag.Value = (*modeFlag)(nil)

func (f *modeFlag) String() string { return string(f.mode) }

func (f *modeFlag) Set(s string) error {
	m, err := parseMode(s)
	if err != nil {
		return err
	}
	f.mode = m
	return nil
}

func (f *modeFlag) Type() string { return "mode" }

// withSpinner runs fn with a spinner on interactive terminals.
func withSpinner(cmd *cobra.Command, app *App, fn func(ctx context.Context) (*service.TurnResult, error)) (*service.TurnResult, error) {
	if app.interactive() {
		stop := formatter.StartSpinner(cmd.ErrOrStderr(), "Thinking...")
		defer stop()
	}
	return fn(cmd.Context())
}

func printTurn(w io.Writer, app *App, res *service.TurnResult) {
	s := &res.Session
	printLastAssistant(w, app, s)
	if res.ResponderErr != nil {
		fmt.Fprintln(w, formatter.Dim("("+res.ResponderErr.Error()+")"))
	}
	if res.Outcome.Celebrate {
		fmt.Fprintln(w)
		fmt.Fprintln(w, formatter.FormatCelebration())
	}
	if res.Outcome.SummaryAssembled && s.Profile != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, formatter.FormatProfile(intelligence.FinalizeProfile(s.Profile, app.UserName), s.FounderBackground))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, formatter.ModeBadge(s.Mode)+"  "+formatter.RenderClarity(s, 20))
}

func printLastAssistant(w io.Writer, app *App, s *domain.SessionState) {
	msgs := s.VisibleMessages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Sender == domain.SenderAssistant {
			fmt.Fprintln(w, formatter.FormatMessage(msgs[i], app.markdown()))
			return
		}
	}
}
