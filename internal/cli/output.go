package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/notereel/pkg/types"
)

// emit writes v as indented JSON in --json mode and calls human otherwise.
func (r *runner) emit(cmd *cobra.Command, v any, human func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if r.flags.jsonMode {
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return sysError(fmt.Errorf("marshal JSON: %w", err))
		}
		fmt.Fprintln(w, string(out))
		return nil
	}
	human(w)
	return nil
}

const timeLayout = "2006-01-02 15:04"

func localTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}

func folderLabel(id *string) string {
	if id == nil {
		return "-"
	}
	return *id
}

func printNotes(w io.Writer, list []*types.Note) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tFOLDER\tMODIFIED\tARCHIVED")
	for _, n := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", n.ID, n.Title, folderLabel(n.FolderID), localTime(n.ModifiedAt), n.Archived)
	}
	tw.Flush()
}

func printNote(w io.Writer, n *types.Note) {
	fmt.Fprintf(w, "ID:       %s\n", n.ID)
	fmt.Fprintf(w, "Title:    %s\n", n.Title)
	fmt.Fprintf(w, "Folder:   %s\n", folderLabel(n.FolderID))
	fmt.Fprintf(w, "Created:  %s\n", localTime(n.CreatedAt))
	fmt.Fprintf(w, "Modified: %s\n", localTime(n.ModifiedAt))
	fmt.Fprintf(w, "Archived: %t\n", n.Archived)
	fmt.Fprintf(w, "\n%s\n", n.Content)
}

func printFolders(w io.Writer, list []*types.Folder) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCOLOR\tCREATED")
	for _, f := range list {
		color := "-"
		if f.Color != nil {
			color = *f.Color
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ID, f.Name, color, localTime(f.CreatedAt))
	}
	tw.Flush()
}
