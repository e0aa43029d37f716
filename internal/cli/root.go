// Package cli implements the notereel command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/notereel/internal/recording"
	"github.com/mesh-intelligence/notereel/pkg/types"
)

// Version is the notereel release.
const Version = "0.1.0"

const modulePath = "github.com/mesh-intelligence/notereel"

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir   string
	dataDir     string
	jsonMode    bool
	metricsFile string
	logLevel    string
}

// runner carries the flags and the collaborators commands build on. Tests
// swap the recorder factory and microphone.
type runner struct {
	flags      rootFlags
	newFactory func(a *App) recording.RecorderFactory
	newMic     func(a *App) recording.Microphone
}

func newRunner() *runner {
	return &runner{
		newFactory: func(a *App) recording.RecorderFactory {
			return recording.NewFFmpegFactory(a.Settings.FFmpegPath, a.Logger)
		},
		newMic: func(a *App) recording.Microphone {
			return recording.NewMalgoMicrophone(a.Logger)
		},
	}
}

// NewRootCmd creates the top-level "notereel" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmd(newRunner())
}

func newRootCmd(r *runner) *cobra.Command {
	root := &cobra.Command{
		Use:     "notereel",
		Short:   "Local-first notes with text-to-video recording",
		Long:    "notereel keeps short text notes in an embedded SQLite store, records\nthe text of a note as video with optional narration and exports\nnotes and recordings to versioned files.",
		Version: Version,
		// Do not print usage or errors on failures returned by subcommands;
		// Execute reports them once.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&r.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&r.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	pf.BoolVar(&r.flags.jsonMode, "json", false, "output in JSON format")
	pf.StringVar(&r.flags.metricsFile, "metrics-file", "", "write prometheus metrics to this file on exit")
	pf.StringVar(&r.flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newVersionCmd(r))
	root.AddCommand(newInitCmd(r))
	root.AddCommand(newNoteCmd(r))
	root.AddCommand(newFolderCmd(r))
	root.AddCommand(newRecordCmd(r))
	root.AddCommand(newExportCmd(r))
	root.AddCommand(newSettingsCmd(r))
	root.AddCommand(newBackupCmd(r))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(context.Background(), NewRootCmd(), os.Args[1:], os.Stderr))
}

// run executes root with args and returns the process exit code.
func run(ctx context.Context, root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "notereel:", err)
	return exitCode(err)
}

// exitError attaches an exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }

func sysError(err error) error { return &exitError{code: exitSysError, err: err} }

// userErrors are caused by command input rather than the environment.
var userErrors = []error{
	types.ErrInvalidArgument,
	types.ErrEmptyName,
	types.ErrNotFound,
	types.ErrUnsupportedFormat,
	types.ErrNoActiveRecording,
	types.ErrQuotaExceeded,
}

// exitCode maps err to an exit code. Explicit exitErrors win and storage
// failures are system errors. Everything else, cobra usage errors
// included, is a user error.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	if errors.Is(err, types.ErrStorage) || errors.Is(err, types.ErrStoreInitialization) {
		return exitSysError
	}
	return exitUserError
}
