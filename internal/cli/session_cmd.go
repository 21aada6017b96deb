package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/ideaforge/internal/cli/formatter"
	"github.com/alexanderramin/ideaforge/internal/domain"
	"github.com/alexanderramin/ideaforge/internal/intelligence"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newSessionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"sessions"},
		Short:   "Manage intake sessions",
	}

	cmd.AddCommand(
		newSessionNewCmd(app),
		newSessionListCmd(app),
		newSessionUseCmd(app),
		newSessionShowCmd(app),
		newSessionRenameCmd(app),
		newSessionFavoriteCmd(app),
		newSessionArchiveCmd(app),
		newSessionDeleteCmd(app),
		newSessionContinueCmd(app),
	)

	return cmd
}

func newSessionNewCmd(app *App) *cobra.Command {
	mode := modeFlag{mode: domain.ModeRefinement}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new session and make it active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.Sessions.Create(cmd.Context())
			if mode.mode != s.Mode {
				var err error
				if s, err = app.Chat.SwitchMode(cmd.Context(), s.ID, mode.mode); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Started session %s\n", formatter.ShortID(s.ID))
			fmt.Fprintln(out, formatter.ModeBadge(s.Mode))
			fmt.Fprintln(out)
			fmt.Fprint(out, formatter.FormatTranscript(&s, app.markdown()))
			return nil
		},
	}

	cmd.Flags().Var(&mode, "mode", "Conversation mode: refinement or general")

	return cmd
}

func newSessionListCmd(app *App) *cobra.Command {
	var archived bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, favorites first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			title, sessions := "Sessions", app.Sessions.ListActive()
			if archived {
				title, sessions = "Archived Sessions", app.Sessions.ListArchived()
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSessionList(title, sessions, app.Sessions.Active().ID, app.now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&archived, "archived", false, "List archived sessions instead")

	return cmd
}

func newSessionUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use ID",
		Short: "Switch the active session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveSessionID(app, args[0])
			if err != nil {
				return err
			}
			s, err := app.Sessions.Load(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSessionHeader(&s))
			return nil
		},
	}
}

func newSessionShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [ID]",
		Short: "Show a session transcript (default: active session)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveSessionID(app, optionalArg(args))
			if err != nil {
				return err
			}
			s, err := app.Sessions.Get(id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.FormatSessionHeader(&s))
			fmt.Fprintln(out)
			fmt.Fprint(out, formatter.FormatTranscript(&s, app.markdown()))
			if len(s.Facts) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, formatter.Header("Remembered"))
				for _, f := range s.Facts {
					fmt.Fprintf(out, "  • %s\n", f)
				}
			}
			if s.ShowSummary && s.Profile != nil {
				fmt.Fprintln(out)
				fmt.Fprintln(out, formatter.FormatProfile(intelligence.FinalizeProfile(s.Profile, app.UserName), s.FounderBackground))
			}
			return nil
		},
	}
}

func newSessionRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename ID [NAME...]",
		Short: "Rename a session; no name restores automatic naming",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveSessionID(app, args[0])
			if err != nil {
				return err
			}
			s, err := app.Sessions.Rename(cmd.Context(), id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s is now %q\n", formatter.ShortID(s.ID), s.Name)
			return nil
		},
	}
}

func newSessionFavoriteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "favorite ID",
		Short: "Star or unstar a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveSessionID(app, args[0])
			if err != nil {
				return err
			}
			on, err := app.Sessions.ToggleFavorite(cmd.Context(), id)
			if err != nil {
				return err
			}
			verb := "Unstarred"
			if on {
				verb = "Starred"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s session %s\n", verb, formatter.ShortID(id))
			return nil
		},
	}
}

func newSessionArchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archive ID",
		Short: "Archive a session, or restore an archived one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveSessionID(app, args[0])
			if err != nil {
				return err
			}
			archived, err := app.Sessions.ToggleArchive(cmd.Context(), id)
			if err != nil {
				return err
			}
			verb := "Restored"
			if archived {
				verb = "Archived"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s session %s\n", verb, formatter.ShortID(id))
			return nil
		},
	}
}

func newSessionDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a session permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveSessionID(app, args[0])
			if err != nil {
				return err
			}
			s, err := app.Sessions.Get(id)
			if err != nil {
				return err
			}
			if !yes && app.interactive() {
				confirmed := false
				form := huh.NewForm(huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Delete %q?", s.Name)).
						Description("The transcript and profile are removed for good.").
						Value(&confirmed),
				)).WithTheme(forgeHuhTheme()).WithShowHelp(false)
				if err := form.Run(); err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Kept.")
					return nil
				}
			}
			if err := app.Sessions.Delete(cmd.Context(), id); err != nil {
				return err
			}
			active := app.Sessions.Active()
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q. Active session: %s (%s)\n", s.Name, active.Name, formatter.ShortID(active.ID))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}

func newSessionContinueCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "continue [ID]",
		Short: "Start a new session that keeps refining another session's profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveSessionID(app, optionalArg(args))
			if err != nil {
				return err
			}
			src, err := app.Sessions.Get(id)
			if err != nil {
				return err
			}
			if src.Profile == nil {
				return errors.New("that session has no venture profile yet")
			}
			s := app.Sessions.CreateContinued(cmd.Context(), src.Profile, src.FounderBackground)
			printContinued(cmd.OutOrStdout(), app, s.ID)
			return nil
		},
	}
}
