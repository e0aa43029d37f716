package cli

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// versionInfo describes the running binary.
type versionInfo struct {
	Version   string `json:"version"`
	Module    string `json:"module"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Revision  string `json:"revision,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
}

func buildVersionInfo() versionInfo {
	info := versionInfo{
		Version:   Version,
		Module:    modulePath,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

func newVersionCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the notereel version and build details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildVersionInfo()
			return r.emit(cmd, info, func(w io.Writer) {
				fmt.Fprintf(w, "notereel v%s\nmodule: %s\ngo: %s (%s)\n", info.Version, info.Module, info.GoVersion, info.Platform)
				if info.Revision != "" {
					rev := info.Revision
					if info.Modified {
						rev += " (modified)"
					}
					fmt.Fprintf(w, "revision: %s\n", rev)
				}
			})
		},
	}
}
