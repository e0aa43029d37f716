package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/notereel/internal/chunks"
	"github.com/mesh-intelligence/notereel/internal/recording"
	"github.com/mesh-intelligence/notereel/pkg/types"
)

func newExportCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export notes and recordings to files",
	}
	cmd.AddCommand(newExportNoteCmd(r), newExportRecordingCmd(r))
	return cmd
}

func newExportNoteCmd(r *runner) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "note <id>",
		Short: "Export a note as markdown or text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(a *App) error {
				n, err := a.Notes.GetNote(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				res, err := a.Exporter.ExportNote(cmd.Context(), n, types.ExportFormat(format))
				if err != nil {
					return err
				}
				return r.emit(cmd, res, func(w io.Writer) {
					fmt.Fprintf(w, "Exported %s\n", res.Path)
				})
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", string(types.FormatMarkdown), "md or txt")
	return cmd
}

// newExportRecordingCmd exports chunks left behind by a recording that was
// never exported, for example after a crash.
func newExportRecordingCmd(r *runner) *cobra.Command {
	var format, filename string
	cmd := &cobra.Command{
		Use:   "recording",
		Short: "Export the buffered chunks of the last recording",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return r.withApp(cmd, func(a *App) error {
				list, err := a.Chunks.AllChunks(ctx)
				if err != nil {
					return sysError(err)
				}
				if len(list) == 0 {
					return userError(errors.New("no buffered recording"))
				}
				blob := &types.Blob{MIMEType: recording.BlobMIMEType, Data: chunks.Concat(list)}
				res, err := a.Exporter.ExportRecording(ctx, blob, types.ExportOptions{
					Format:   types.ExportFormat(format),
					Filename: filename,
				})
				if err != nil {
					return sysError(err)
				}
				if err := a.Chunks.Clear(ctx); err != nil {
					return sysError(err)
				}
				return r.emit(cmd, res, func(w io.Writer) {
					fmt.Fprintf(w, "Exported %s\n", res.Path)
				})
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", string(types.FormatWebM), "webm or mp4")
	cmd.Flags().StringVar(&filename, "filename", "", "base file name (default: Recording)")
	return cmd
}
