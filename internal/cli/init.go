package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newInitCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize notereel storage",
		Long:  "Create the configuration and data directories, write a default config.yaml\nand initialize the note store.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(a *App) error {
				if err := a.Store.Save(cmd.Context()); err != nil {
					return sysError(err)
				}
				if err := a.Chunks.Init(cmd.Context()); err != nil {
					return sysError(err)
				}
				result := map[string]string{
					"config_dir": a.Settings.ConfigDir,
					"data_dir":   a.Settings.DataDir,
					"export_dir": a.Settings.ExportDir,
				}
				return r.emit(cmd, result, func(w io.Writer) {
					fmt.Fprintf(w, "notereel initialized in %s\n", a.Settings.DataDir)
				})
			})
		},
	}
}
