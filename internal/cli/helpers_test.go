package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/notereel/internal/paths"
	"github.com/mesh-intelligence/notereel/internal/recording"
)

// ebmlHeader stands in for encoder output.
var ebmlHeader = []byte{0x1A, 0x45, 0xDF, 0xA3}

type stubRecorder struct {
	mu      sync.Mutex
	onChunk func([]byte)
}

func (s *stubRecorder) Start(ctx context.Context, stream *recording.MediaStream, timeslice time.Duration, onChunk func([]byte)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChunk = onChunk
	return nil
}

func (s *stubRecorder) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChunk(ebmlHeader)
	return nil
}

func (s *stubRecorder) Abort() {}

type stubFactory struct{}

func (stubFactory) Supports(recording.Codec) bool { return true }

func (stubFactory) NewRecorder(codec recording.Codec, width, height, fps int) (recording.Recorder, error) {
	return &stubRecorder{}, nil
}

type silentMic struct{}

func (silentMic) Open(ctx context.Context) (*recording.AudioTrack, error) {
	return recording.NewAudioTrack(recording.AudioFormat{SampleRate: 8000, Channels: 1}, bytes.NewReader(make([]byte, 1600))), nil
}

// testEnv is an isolated config and data directory pair.
type testEnv struct {
	t         *testing.T
	ConfigDir string
	DataDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv(paths.EnvExportDir, "")
	dir := t.TempDir()
	return &testEnv{
		t:         t,
		ConfigDir: filepath.Join(dir, "config"),
		DataDir:   filepath.Join(dir, "data"),
	}
}

func (e *testEnv) ExportDir() string {
	return filepath.Join(e.DataDir, paths.ExportDirName)
}

// cmdResult holds the result of one command execution.
type cmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes notereel in-process with the environment's directories.
func (e *testEnv) Run(args ...string) cmdResult {
	e.t.Helper()

	r := newRunner()
	r.newFactory = func(*App) recording.RecorderFactory { return stubFactory{} }
	r.newMic = func(*App) recording.Microphone { return silentMic{} }

	root := newRootCmd(r)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	allArgs := append([]string{"--config-dir", e.ConfigDir, "--data-dir", e.DataDir}, args...)
	code := run(context.Background(), root, allArgs, &stderr)
	return cmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}
}

// MustRun runs the command and fails the test on a non-zero exit.
func (e *testEnv) MustRun(args ...string) cmdResult {
	e.t.Helper()
	res := e.Run(args...)
	require.Equal(e.t, exitSuccess, res.ExitCode, "notereel %v failed: %s", args, res.Stderr)
	return res
}

// parseJSON decodes command output into T.
func parseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), "output: %s", s)
	return v
}
