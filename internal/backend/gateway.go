// Package backend invokes the external build backend that materializes
// environments. The backend is a nix-shell expression directory driven
// entirely by --argstr arguments; its module system is opaque here.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	oerrors "github.com/opmodel/devenv/internal/errors"
	"github.com/opmodel/devenv/internal/output"
)

// DefaultCommand is the backend executable looked up in PATH.
const DefaultCommand = "nix-shell"

// Command is one process invocation.
type Command struct {
	Path   string
	Args   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// ExecFunc runs a command to completion. A non-zero exit is reported as an
// error implementing ExitCode() int, as *exec.ExitError does.
type ExecFunc func(ctx context.Context, cmd Command) error

// Gateway invokes the backend.
type Gateway struct {
	// Command is the backend executable. Defaults to nix-shell.
	Command string

	// BaseDir is the backend expression directory passed as the first
	// argument.
	BaseDir string

	// Debug selects --show-trace over --quiet and makes failures carry the
	// backend's full stderr.
	Debug bool

	// Timeout bounds non-interactive actions. Zero means no limit.
	Timeout time.Duration

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	exec ExecFunc
	tty  func() bool
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithExec replaces process execution. Used by tests.
func WithExec(fn ExecFunc) Option {
	return func(g *Gateway) {
		g.exec = fn
	}
}

// WithTTY overrides terminal detection for spinners.
func WithTTY(fn func() bool) Option {
	return func(g *Gateway) {
		g.tty = fn
	}
}

// New returns a Gateway for the backend at baseDir.
func New(command, baseDir string, debug bool, opts ...Option) *Gateway {
	g := &Gateway{
		Command: command,
		BaseDir: baseDir,
		Debug:   debug,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		exec:    runCommand,
		tty:     output.IsTTY,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BackendError is returned in debug mode when the backend exits non-zero.
type BackendError struct {
	Action   string
	Command  string
	ExitCode int
	Stderr   string
}

func (e *BackendError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "backend action %q failed with exit code %d\n  command: %s", e.Action, e.ExitCode, e.Command)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		b.WriteString("\n")
		for _, line := range strings.Split(s, "\n") {
			b.WriteString("\n  ")
			b.WriteString(line)
		}
	}
	return b.String()
}

// Unwrap makes BackendError match errors.ErrBackend.
func (e *BackendError) Unwrap() error {
	return oerrors.ErrBackend
}

// Argv returns the backend arguments for action:
//
//	<basedir> (--quiet|--show-trace) --argstr action <name> --argstr <k> <v>...
//
// Extra arguments are emitted in key order.
func (g *Gateway) Argv(action Action) ([]string, error) {
	extra, err := action.Args()
	if err != nil {
		return nil, err
	}

	verbosity := "--quiet"
	if g.Debug {
		verbosity = "--show-trace"
	}
	argv := []string{g.BaseDir, verbosity, "--argstr", "action", action.Name()}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		if k == "action" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		argv = append(argv, "--argstr", k, extra[k])
	}
	return argv, nil
}

// Invoke runs action and returns the backend's stdout. Interactive actions
// stream stdio and return "".
func (g *Gateway) Invoke(ctx context.Context, action Action) (string, error) {
	argv, err := g.Argv(action)
	if err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer
	cmd := Command{Path: g.command(), Args: argv}
	switch action.mode() {
	case modeInteractive:
		cmd.Stdin = g.Stdin
		cmd.Stdout = writerOr(g.Stdout, os.Stdout)
		cmd.Stderr = io.MultiWriter(writerOr(g.Stderr, os.Stderr), &stderr)
	default:
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if g.Debug {
			cmd.Stderr = io.MultiWriter(writerOr(g.Stderr, os.Stderr), &stderr)
		}
	}

	output.Debug("invoking backend", "action", action.Name(), "command", cmd.Path, "baseDir", g.BaseDir)

	execFn := g.exec
	if execFn == nil {
		execFn = runCommand
	}
	run := func(ctx context.Context) error {
		return execFn(ctx, cmd)
	}

	switch action.mode() {
	case modeInteractive:
		err = run(ctx)
	case modeLong:
		err = output.RunWithSpinner(ctx, run,
			output.WithTitle(fmt.Sprintf("Running backend %s...", action.Name())),
			output.WithTimeout(g.Timeout),
			output.WithTTYFunc(g.isTTY))
	default:
		if g.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, g.Timeout)
			defer cancel()
		}
		err = run(ctx)
	}
	if err != nil {
		return "", g.failure(action, cmd, err, stderr.String())
	}

	return stdout.String(), nil
}

func (g *Gateway) failure(action Action, cmd Command, err error, stderr string) error {
	var coder interface{ ExitCode() int }
	if !errors.As(err, &coder) {
		if errors.Is(err, exec.ErrNotFound) {
			return &oerrors.DetailError{
				Type:    "backend failure",
				Message: fmt.Sprintf("backend command %q not found", cmd.Path),
				Hint:    "Install nix or set backend.command in the config file",
				Cause:   fmt.Errorf("%w: %w", oerrors.ErrBackend, err),
			}
		}
		return fmt.Errorf("%w: %s: %w", oerrors.ErrBackend, action.Name(), err)
	}

	if g.Debug {
		return &BackendError{
			Action:   action.Name(),
			Command:  cmd.String(),
			ExitCode: coder.ExitCode(),
			Stderr:   stderr,
		}
	}

	return &oerrors.DetailError{
		Type:    "backend failure",
		Message: fmt.Sprintf("backend action %q failed with exit code %d%s", action.Name(), coder.ExitCode(), lastLine(stderr)),
		Hint:    "Re-run with DEVENV_DEBUG=1 or --verbose for the full backend trace",
		Cause:   oerrors.ErrBackend,
	}
}

func (g *Gateway) isTTY() bool {
	if g.tty != nil {
		return g.tty()
	}
	return output.IsTTY()
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}

func (g *Gateway) command() string {
	if g.Command != "" {
		return g.Command
	}
	return DefaultCommand
}

// lastLine returns ": <last non-blank stderr line>" or "".
func lastLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return ""
	}
	return ": " + last
}

// runCommand executes cmd with os/exec.
func runCommand(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	return cmd.Run()
}
