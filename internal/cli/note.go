package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/notereel/internal/export"
	"github.com/mesh-intelligence/notereel/internal/notes"
	"github.com/mesh-intelligence/notereel/pkg/types"
)

func newNoteCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Create, edit and search notes",
	}
	cmd.AddCommand(
		newNoteCreateCmd(r),
		newNoteGetCmd(r),
		newNoteShowCmd(r),
		newNoteListCmd(r),
		newNoteUpdateCmd(r),
		newNoteArchiveCmd(r),
		newNoteDeleteCmd(r),
		newNoteSearchCmd(r),
		newNoteImportCmd(r),
	)
	return cmd
}

// readContent returns the --content value or, with --file, the file
// contents. "-" reads stdin.
func readContent(cmd *cobra.Command, content, file string) (string, error) {
	if file == "" {
		return content, nil
	}
	if content != "" {
		return "", userError(errors.New("--content and --file are mutually exclusive"))
	}
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", userError(fmt.Errorf("read content: %w", err))
	}
	return string(data), nil
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func newNoteCreateCmd(r *runner) *cobra.Command {
	var title, content, file, folder string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readContent(cmd, content, file)
			if err != nil {
				return err
			}
			return r.withApp(cmd, func(a *App) error {
				n, err := a.Notes.CreateNote(cmd.Context(), title, body, optionalID(folder))
				if err != nil {
					return err
				}
				return r.emit(cmd, n, func(w io.Writer) {
					fmt.Fprintf(w, "Created note: %s\n", n.ID)
				})
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "note title (at most 50 characters are kept)")
	cmd.Flags().StringVar(&content, "content", "", "note content")
	cmd.Flags().StringVar(&file, "file", "", "read content from a file, - for stdin")
	cmd.Flags().StringVar(&folder, "folder", "", "folder id")
	return cmd
}

func newNoteGetCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a note with its metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(a *App) error {
				n, err := a.Notes.GetNote(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return r.emit(cmd, n, func(w io.Writer) { printNote(w, n) })
			})
		},
	}
}

func newNoteShowCmd(r *runner) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the content of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(a *App) error {
				n, err := a.Notes.GetNote(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				content := n.Content
				if plain {
					content = export.PlainText(content)
				}
				fmt.Fprintln(cmd.OutOrStdout(), content)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "strip markdown syntax")
	return cmd
}

func newNoteListCmd(r *runner) *cobra.Command {
	var folder string
	var unfiled, archived bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, most recently modified first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if folder != "" && unfiled {
				return userError(errors.New("--folder and --unfiled are mutually exclusive"))
			}
			return r.withApp(cmd, func(a *App) error {
				var (
					list []*types.Note
					err  error
				)
				switch {
				case folder != "":
					list, err = a.Notes.GetNotesByFolder(cmd.Context(), &folder)
				case unfiled:
					list, err = a.Notes.GetNotesByFolder(cmd.Context(), nil)
				default:
					list, err = a.Notes.GetAllNotes(cmd.Context(), archived)
				}
				if err != nil {
					return err
				}
				return r.emit(cmd, list, func(w io.Writer) { printNotes(w, list) })
			})
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "only notes in this folder")
	cmd.Flags().BoolVar(&unfiled, "unfiled", false, "only notes without a folder")
	cmd.Flags().BoolVar(&archived, "archived", false, "include archived notes")
	return cmd
}

func newNoteUpdateCmd(r *runner) *cobra.Command {
	var title, content, file, folder string
	var noFolder bool
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the title, content or folder of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var changes []types.NoteChange
			flags := cmd.Flags()
			if flags.Changed("title") {
				changes = append(changes, types.SetTitle(title))
			}
			if flags.Changed("content") || flags.Changed("file") {
				body, err := readContent(cmd, content, file)
				if err != nil {
					return err
				}
				changes = append(changes, types.SetContent(body))
			}
			switch {
			case flags.Changed("folder") && noFolder:
				return userError(errors.New("--folder and --no-folder are mutually exclusive"))
			case flags.Changed("folder"):
				changes = append(changes, types.MoveToFolder(folder))
			case noFolder:
				changes = append(changes, types.ClearFolder())
			}
			if len(changes) == 0 {
				return userError(errors.New("nothing to update"))
			}

			return r.withApp(cmd, func(a *App) error {
				ctx := cmd.Context()
				if err := a.Notes.UpdateNote(ctx, args[0], changes...); err != nil {
					return err
				}
				n, err := a.Notes.GetNote(ctx, args[0])
				if err != nil {
					return err
				}
				return r.emit(cmd, n, func(w io.Writer) {
					fmt.Fprintf(w, "Updated note: %s\n", n.ID)
				})
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&content, "content", "", "new content")
	cmd.Flags().StringVar(&file, "file", "", "read new content from a file, - for stdin")
	cmd.Flags().StringVar(&folder, "folder", "", "move to this folder")
	cmd.Flags().BoolVar(&noFolder, "no-folder", false, "remove the note from its folder")
	return cmd
}

func newNoteArchiveCmd(r *runner) *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive or unarchive a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(a *App) error {
				if err := a.Notes.ArchiveNote(cmd.Context(), args[0], !undo); err != nil {
					return err
				}
				state := "Archived"
				if undo {
					state = "Unarchived"
				}
				return r.emit(cmd, map[string]any{"id": args[0], "archived": !undo}, func(w io.Writer) {
					fmt.Fprintf(w, "%s note: %s\n", state, args[0])
				})
			})
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "unarchive instead")
	return cmd
}

func newNoteDeleteCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete notes and their recordings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(a *App) error {
				if err := a.Notes.DeleteNotes(cmd.Context(), args); err != nil {
					return err
				}
				return r.emit(cmd, map[string]any{"deleted": args}, func(w io.Writer) {
					fmt.Fprintf(w, "Deleted %d note(s)\n", len(args))
				})
			})
		},
	}
}

func newNoteSearchCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search note titles and content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(a *App) error {
				items, err := a.Notes.SearchNotes(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				return r.emit(cmd, items, func(w io.Writer) {
					for _, it := range items {
						preview := strings.ReplaceAll(it.Preview, "\n", " ")
						fmt.Fprintf(w, "%s  %s\n    %s\n", it.ID, it.Title, preview)
					}
				})
			})
		},
	}
}

func newNoteImportCmd(r *runner) *cobra.Command {
	var pattern, folder string
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Create notes from text files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(a *App) error {
				imported, err := notes.NewImporter(a.Notes).Import(cmd.Context(), os.DirFS(args[0]), pattern, optionalID(folder))
				if err != nil {
					return err
				}
				return r.emit(cmd, imported, func(w io.Writer) {
					fmt.Fprintf(w, "Imported %d note(s)\n", len(imported))
				})
			})
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", "**/*.md", "glob of files to import")
	cmd.Flags().StringVar(&folder, "folder", "", "folder id for the imported notes")
	return cmd
}
