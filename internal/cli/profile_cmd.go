package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alexanderramin/ideaforge/internal/cli/formatter"
	"github.com/alexanderramin/ideaforge/internal/domain"
	"github.com/alexanderramin/ideaforge/internal/importer"
	"github.com/alexanderramin/ideaforge/internal/intelligence"
	"github.com/spf13/cobra"
)

func newProfileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the venture profile of the active session",
	}

	cmd.AddCommand(
		newProfileShowCmd(app),
		newProfileEditCmd(app),
		newProfileExportCmd(app),
		newProfileImportCmd(app),
	)

	return cmd
}

func newProfileShowCmd(app *App) *cobra.Command {
	var final bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the venture profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.Sessions.Active()
			p := s.Profile
			if final && p != nil {
				p = intelligence.FinalizeProfile(p, app.UserName)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProfile(p, s.FounderBackground))
			return nil
		},
	}

	cmd.Flags().BoolVar(&final, "final", false, "Fill missing fields with their placeholders")

	return cmd
}

func newProfileEditCmd(app *App) *cobra.Command {
	var fieldFlag, valueFlag string

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit profile fields (interactive form, or --field/--value)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := app.Sessions.Active().ID

			if fieldFlag != "" {
				field, err := domain.ParseProfileField(fieldFlag)
				if err != nil {
					return err
				}
				s, err := app.Chat.EditProfile(ctx, id, field, valueFlag)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProfile(s.Profile, s.FounderBackground))
				return nil
			}

			if !app.interactive() {
				return errors.New("--field is required when not running in a terminal")
			}
			s := app.Sessions.Active()
			draft := newProfileDraft(s.Profile, s.FounderBackground)
			if err := profileForm(draft).Run(); err != nil {
				return err
			}
			changed := draft.changed()
			var err error
			for _, f := range changed {
				if s, err = app.Chat.EditProfile(ctx, id, f, *draft.values[f]); err != nil {
					return err
				}
			}
			if len(changed) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No changes."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProfile(s.Profile, s.FounderBackground))
			return nil
		},
	}

	cmd.Flags().StringVar(&fieldFlag, "field", "", `Field label, e.g. "Revenue Model" or revenue-model`)
	cmd.Flags().StringVar(&valueFlag, "value", "", "New value (empty clears an optional field)")

	return cmd
}

func newProfileExportCmd(app *App) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the venture profile and remembered facts as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pf, err := importer.FromSession(app.Sessions.Active())
			if err != nil {
				return err
			}
			if outPath == "" {
				return importer.WriteProfileFile(cmd.OutOrStdout(), pf)
			}
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", outPath, err)
			}
			if err := importer.WriteProfileFile(f, pf); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %q to %s\n", pf.Profile.Title, outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default: stdout)")

	return cmd
}

func newProfileImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Continue refining a profile exported from elsewhere (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				pf  *importer.ProfileFile
				err error
			)
			if args[0] == "-" {
				pf, err = importer.ParseProfileFile(cmd.InOrStdin())
			} else {
				pf, err = importer.LoadProfileFile(args[0])
			}
			if err != nil {
				return err
			}
			if errs := importer.ValidateProfileFile(pf); len(errs) > 0 {
				return fmt.Errorf("invalid profile file:\n%w", errors.Join(errs...))
			}

			imp := importer.Convert(pf)
			ctx := cmd.Context()
			s := app.Sessions.CreateContinued(ctx, imp.Profile, imp.FounderBackground)
			for _, fact := range imp.Facts {
				if _, err := app.Chat.Remember(ctx, s.ID, fact); err != nil {
					return err
				}
			}
			printContinued(cmd.OutOrStdout(), app, s.ID)
			return nil
		},
	}
}

func printContinued(w io.Writer, app *App, id string) {
	s, err := app.Sessions.Get(id)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "Continuing %q in session %s\n\n", s.Name, formatter.ShortID(s.ID))
	printLastAssistant(w, app, &s)
}
