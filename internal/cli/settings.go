package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/notereel/pkg/types"
)

func newSettingsCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and write stored settings",
	}

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(a *App) error {
				value, ok, err := a.Notes.GetSetting(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%w: setting %q", types.ErrNotFound, args[0])
				}
				return r.emit(cmd, map[string]string{args[0]: value}, func(w io.Writer) {
					fmt.Fprintln(w, value)
				})
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(a *App) error {
				return a.Notes.SetSetting(cmd.Context(), args[0], args[1])
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Print every setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(a *App) error {
				all, err := a.Notes.AllSettings(cmd.Context())
				if err != nil {
					return err
				}
				return r.emit(cmd, all, func(w io.Writer) {
					keys := make([]string, 0, len(all))
					for k := range all {
						keys = append(keys, k)
					}
					sort.Strings(keys)
					for _, k := range keys {
						fmt.Fprintf(w, "%s=%s\n", k, all[k])
					}
				})
			})
		},
	}

	cmd.AddCommand(get, set, list)
	return cmd
}
