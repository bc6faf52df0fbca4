package backend

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/opmodel/devenv/internal/environment"
)

// Action is one backend request. The set of actions is closed: Modules,
// Build, Run and Remove.
type Action interface {
	// Name is the value passed as the backend's "action" argument.
	Name() string

	// Args returns the additional string arguments of the action.
	Args() (map[string]string, error)

	mode() mode
}

// mode selects how the backend process is attached to the terminal.
type mode int

const (
	// modeCapture captures stdout and returns it.
	modeCapture mode = iota
	// modeLong captures stdout and shows a spinner on a terminal.
	modeLong
	// modeInteractive connects the process to the caller's stdio.
	modeInteractive
)

// Modules lists the modules the backend can build.
type Modules struct{}

func (Modules) Name() string                     { return "modules" }
func (Modules) Args() (map[string]string, error) { return map[string]string{}, nil }
func (Modules) mode() mode                       { return modeCapture }

// Build materializes the environment of a registered identity. Directory
// and Alias (sent as "name") are passed along when set.
type Build struct {
	ID        string
	Directory string
	Alias     string
	Config    *environment.Configuration
}

func (Build) Name() string { return "create" }

func (b Build) Args() (map[string]string, error) {
	if b.Config == nil {
		return nil, fmt.Errorf("build %s: missing configuration", b.ID)
	}
	data, err := json.Marshal(b.Config.Stored())
	if err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}
	args := map[string]string{"id": b.ID, "config": string(data)}
	if b.Directory != "" {
		args["directory"] = b.Directory
	}
	if b.Alias != "" {
		args["name"] = b.Alias
	}
	return args, nil
}

func (Build) mode() mode { return modeLong }

// Run enters the environment of an identity, optionally running a command.
type Run struct {
	ID  string
	Cmd []string
}

func (Run) Name() string { return "run" }

// Args joins the command words with spaces, as the backend expects one
// shell string.
func (r Run) Args() (map[string]string, error) {
	return map[string]string{"id": r.ID, "cmd": strings.Join(r.Cmd, " ")}, nil
}

func (Run) mode() mode { return modeInteractive }

// Remove tears down the materialized environment of an identity.
type Remove struct {
	ID string
}

func (Remove) Name() string { return "rm" }

func (r Remove) Args() (map[string]string, error) {
	return map[string]string{"id": r.ID}, nil
}

func (Remove) mode() mode { return modeLong }
