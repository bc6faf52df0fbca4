// Package cmdtypes provides shared types for the cmd package and its sub-packages.
// It is separate from internal/cmd to avoid import cycles between internal/cmd
// and its sub-packages (internal/cmd/env, internal/cmd/config).
package cmdtypes

import (
	"github.com/opmodel/devenv/internal/backend"
	"github.com/opmodel/devenv/internal/config"
	oerrors "github.com/opmodel/devenv/internal/errors"
	"github.com/opmodel/devenv/internal/registry"
)

// GlobalConfig holds CLI-wide configuration resolved during PersistentPreRunE.
// It is populated once at startup and passed explicitly into every sub-command
// constructor.
type GlobalConfig struct {
	Resolved *config.ResolvedConfig

	ConfigPath  string // resolved --config path
	RegistryDir string // resolved registry root
	Verbose     bool

	// BackendExec replaces backend process execution. Nil runs the real
	// backend; tests inject a fake.
	BackendExec backend.ExecFunc

	// WorkDir overrides the process working directory for directory
	// defaults and relative install tokens. Empty means os.Getwd.
	WorkDir string
}

// Registry returns a registry handle on the resolved root.
func (g *GlobalConfig) Registry() *registry.Registry {
	return registry.New(g.RegistryDir)
}

// Backend returns a backend gateway configured from the resolved settings.
func (g *GlobalConfig) Backend() *backend.Gateway {
	var opts []backend.Option
	if g.BackendExec != nil {
		opts = append(opts, backend.WithExec(g.BackendExec))
	}

	if g.Resolved == nil {
		return backend.New(backend.DefaultCommand, "", false, opts...)
	}

	gw := backend.New(g.Resolved.BackendCommand.Value, g.Resolved.BackendBaseDir.Value, g.Resolved.DebugEnabled(), opts...)
	gw.Timeout = g.Resolved.BackendTimeout
	return gw
}

// Exit codes, aliased from internal/errors.
const (
	ExitSuccess          = oerrors.ExitSuccess
	ExitGeneralError     = oerrors.ExitGeneralError
	ExitValidationError  = oerrors.ExitValidationError
	ExitClassification   = oerrors.ExitClassification
	ExitPermissionDenied = oerrors.ExitPermissionDenied
	ExitNotFound         = oerrors.ExitNotFound
	ExitBackendFailure   = oerrors.ExitBackendFailure
)

// ExitError is a type alias to internal/errors.ExitError.
type ExitError = oerrors.ExitError
