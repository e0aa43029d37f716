package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newFolderCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Manage folders",
	}
	cmd.AddCommand(
		newFolderCreateCmd(r),
		newFolderListCmd(r),
		newFolderUpdateCmd(r),
		newFolderDeleteCmd(r),
	)
	return cmd
}

func newFolderCreateCmd(r *runner) *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(a *App) error {
				f, err := a.Notes.CreateFolder(cmd.Context(), args[0], optionalID(color))
				if err != nil {
					return err
				}
				return r.emit(cmd, f, func(w io.Writer) {
					fmt.Fprintf(w, "Created folder: %s\n", f.ID)
				})
			})
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "folder color, e.g. #ff8800")
	return cmd
}

func newFolderListCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List folders by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(a *App) error {
				list, err := a.Notes.GetAllFolders(cmd.Context())
				if err != nil {
					return err
				}
				return r.emit(cmd, list, func(w io.Writer) { printFolders(w, list) })
			})
		},
	}
}

func newFolderUpdateCmd(r *runner) *cobra.Command {
	var name, color string
	var noColor bool
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a folder or change its color",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("color") && noColor {
				return userError(errors.New("--color and --no-color are mutually exclusive"))
			}
			return r.withApp(cmd, func(a *App) error {
				ctx := cmd.Context()
				f, err := a.Notes.GetFolder(ctx, args[0])
				if err != nil {
					return err
				}
				if flags.Changed("name") {
					f.Name = name
				}
				switch {
				case flags.Changed("color"):
					f.Color = &color
				case noColor:
					f.Color = nil
				}
				if err := a.Notes.UpdateFolder(ctx, f.ID, f.Name, f.Color); err != nil {
					return err
				}
				updated, err := a.Notes.GetFolder(ctx, f.ID)
				if err != nil {
					return err
				}
				return r.emit(cmd, updated, func(w io.Writer) {
					fmt.Fprintf(w, "Updated folder: %s\n", updated.ID)
				})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&color, "color", "", "new color")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "remove the color")
	return cmd
}

func newFolderDeleteCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a folder; its notes move to no folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(a *App) error {
				if err := a.Notes.DeleteFolder(cmd.Context(), args[0]); err != nil {
					return err
				}
				return r.emit(cmd, map[string]string{"deleted": args[0]}, func(w io.Writer) {
					fmt.Fprintf(w, "Deleted folder: %s\n", args[0])
				})
			})
		},
	}
}
