package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/notereel/internal/export"
)

func newBackupCmd(r *runner) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write the note database to a SQLite file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(a *App) error {
				snap, err := a.Store.Snapshot(cmd.Context())
				if err != nil {
					return sysError(err)
				}
				path := out
				if path == "" {
					path = filepath.Join(a.Settings.ExportDir, "notereel-"+export.FilenameDate(time.Now())+".db")
				}
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
					return sysError(fmt.Errorf("create backup directory: %w", err))
				}
				if err := os.WriteFile(path, snap, 0o600); err != nil {
					return sysError(fmt.Errorf("write backup: %w", err))
				}
				return r.emit(cmd, map[string]any{"path": path, "bytes": len(snap)}, func(w io.Writer) {
					fmt.Fprintf(w, "Backup written to %s (%d bytes)\n", path, len(snap))
				})
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "backup file (default: <export dir>/notereel-<date>.db)")
	return cmd
}
