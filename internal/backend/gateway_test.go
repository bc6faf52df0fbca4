package backend_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/devenv/internal/backend"
	"github.com/opmodel/devenv/internal/environment"
	oerrors "github.com/opmodel/devenv/internal/errors"
)

// exitError mimics *exec.ExitError.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }
func (e *exitError) ExitCode() int { return e.code }

// fakeExec records invocations and replays canned output.
type fakeExec struct {
	calls  []backend.Command
	stdout string
	stderr string
	err    error
}

func (f *fakeExec) run(_ context.Context, cmd backend.Command) error {
	f.calls = append(f.calls, cmd)
	if cmd.Stdout != nil {
		_, _ = io.WriteString(cmd.Stdout, f.stdout)
	}
	if cmd.Stderr != nil {
		_, _ = io.WriteString(cmd.Stderr, f.stderr)
	}
	return f.err
}

func newTestGateway(f *fakeExec, debug bool) (*backend.Gateway, *bytes.Buffer) {
	var stderr bytes.Buffer
	g := backend.New("nix-shell", "/opt/devenv", debug,
		backend.WithExec(f.run),
		backend.WithTTY(func() bool { return false }))
	g.Stdout = &bytes.Buffer{}
	g.Stderr = &stderr
	return g, &stderr
}

func TestArgv(t *testing.T) {
	cfg := &environment.Configuration{ID: "0123456789abcdef", Module: "python"}

	tests := []struct {
		name   string
		action backend.Action
		debug  bool
		want   []string
	}{
		{
			name:   "modules quiet",
			action: backend.Modules{},
			want:   []string{"/opt/devenv", "--quiet", "--argstr", "action", "modules"},
		},
		{
			name:   "modules debug",
			action: backend.Modules{},
			debug:  true,
			want:   []string{"/opt/devenv", "--show-trace", "--argstr", "action", "modules"},
		},
		{
			name:   "run joins command words",
			action: backend.Run{ID: "0123456789abcdef", Cmd: []string{"make", "test"}},
			want: []string{"/opt/devenv", "--quiet", "--argstr", "action", "run",
				"--argstr", "cmd", "make test", "--argstr", "id", "0123456789abcdef"},
		},
		{
			name:   "remove",
			action: backend.Remove{ID: "0123456789abcdef"},
			want:   []string{"/opt/devenv", "--quiet", "--argstr", "action", "rm", "--argstr", "id", "0123456789abcdef"},
		},
		{
			name:   "build passes the stored document",
			action: backend.Build{ID: "0123456789abcdef", Config: cfg},
			want: []string{"/opt/devenv", "--quiet", "--argstr", "action", "create",
				"--argstr", "config", storedJSON(t, cfg), "--argstr", "id", "0123456789abcdef"},
		},
		{
			name: "build passes directory and name",
			action: backend.Build{ID: "0123456789abcdef", Directory: "/home/user/project",
				Alias: "api", Config: cfg},
			want: []string{"/opt/devenv", "--quiet", "--argstr", "action", "create",
				"--argstr", "config", storedJSON(t, cfg), "--argstr", "directory", "/home/user/project",
				"--argstr", "id", "0123456789abcdef", "--argstr", "name", "api"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := backend.New("", "/opt/devenv", tt.debug)
			argv, err := g.Argv(tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, argv)
		})
	}
}

func storedJSON(t *testing.T, cfg *environment.Configuration) string {
	t.Helper()
	data, err := json.Marshal(cfg.Stored())
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"id"`)
	return string(data)
}

func TestBuild_MissingConfig(t *testing.T) {
	_, err := backend.Build{ID: "0123456789abcdef"}.Args()
	assert.Error(t, err)
}

func TestInvoke_ReturnsStdout(t *testing.T) {
	f := &fakeExec{stdout: "python:/opt/devenv/modules/python\n"}
	g, _ := newTestGateway(f, false)

	out, err := g.Invoke(context.Background(), backend.Modules{})
	require.NoError(t, err)
	assert.Equal(t, "python:/opt/devenv/modules/python\n", out)

	require.Len(t, f.calls, 1)
	assert.Equal(t, "nix-shell", f.calls[0].Path)
}

func TestInvoke_DefaultsCommand(t *testing.T) {
	f := &fakeExec{}
	g := backend.New("", "/opt/devenv", false, backend.WithExec(f.run))

	_, err := g.Invoke(context.Background(), backend.Modules{})
	require.NoError(t, err)
	assert.Equal(t, backend.DefaultCommand, f.calls[0].Path)
}

func TestInvoke_FailureSummarized(t *testing.T) {
	f := &fakeExec{stderr: "trace line 1\nerror: attribute 'foo' missing\n", err: &exitError{code: 1}}
	g, stderr := newTestGateway(f, false)

	_, err := g.Invoke(context.Background(), backend.Build{
		ID:     "0123456789abcdef",
		Config: &environment.Configuration{Module: "foo"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrBackend))
	assert.Equal(t, oerrors.ExitBackendFailure, oerrors.ExitCodeFromError(err))
	assert.Contains(t, err.Error(), "attribute 'foo' missing")
	assert.NotContains(t, err.Error(), "trace line 1")
	assert.Empty(t, stderr.String(), "stderr not echoed outside debug mode")

	var be *backend.BackendError
	assert.False(t, errors.As(err, &be))
}

func TestInvoke_FailureDebugDetail(t *testing.T) {
	f := &fakeExec{stderr: "trace line 1\nerror: boom\n", err: &exitError{code: 100}}
	g, stderr := newTestGateway(f, true)

	_, err := g.Invoke(context.Background(), backend.Remove{ID: "0123456789abcdef"})
	require.Error(t, err)

	var be *backend.BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "rm", be.Action)
	assert.Equal(t, 100, be.ExitCode)
	assert.Contains(t, be.Stderr, "trace line 1")
	assert.Contains(t, be.Command, "--show-trace")
	assert.True(t, errors.Is(err, oerrors.ErrBackend))
	assert.Contains(t, stderr.String(), "trace line 1", "stderr echoed in debug mode")
}

func TestInvoke_NonExitError(t *testing.T) {
	f := &fakeExec{err: errors.New("fork failed")}
	g, _ := newTestGateway(f, false)

	_, err := g.Invoke(context.Background(), backend.Modules{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrBackend))
	assert.Contains(t, err.Error(), "fork failed")
}

func TestInvoke_RunStreamsStdio(t *testing.T) {
	f := &fakeExec{stdout: "hello from the shell\n"}
	g, _ := newTestGateway(f, false)
	stdin := strings.NewReader("input")
	g.Stdin = stdin
	var stdout bytes.Buffer
	g.Stdout = &stdout

	out, err := g.Invoke(context.Background(), backend.Run{ID: "0123456789abcdef"})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, "hello from the shell\n", stdout.String())
	assert.Equal(t, stdin, f.calls[0].Stdin)
}

func TestInvoke_Timeout(t *testing.T) {
	g := backend.New("nix-shell", "/opt/devenv", false,
		backend.WithTTY(func() bool { return false }),
		backend.WithExec(func(ctx context.Context, _ backend.Command) error {
			<-ctx.Done()
			return ctx.Err()
		}))
	g.Timeout = 10 * time.Millisecond

	_, err := g.Invoke(context.Background(), backend.Modules{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.True(t, errors.Is(err, oerrors.ErrBackend))
}

func TestBackendError_Message(t *testing.T) {
	err := &backend.BackendError{Action: "create", Command: "nix-shell /x", ExitCode: 1, Stderr: "a\nb\n"}
	msg := err.Error()
	assert.Contains(t, msg, `backend action "create" failed with exit code 1`)
	assert.Contains(t, msg, "\n  a\n  b")
}
