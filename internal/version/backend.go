package version

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// backendVersionRegex matches version output like "nix-shell (Nix) 2.18.1".
var backendVersionRegex = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?(?:[-+][a-zA-Z0-9.]+)?`)

// detectTimeout bounds the backend --version call.
const detectTimeout = 5 * time.Second

// BackendInfo describes the build backend executable.
type BackendInfo struct {
	// Command is the configured backend command.
	Command string `json:"command"`

	// Version is the backend version, without a "v" prefix.
	Version string `json:"version,omitempty"`

	// Path is the resolved path of the executable.
	Path string `json:"path,omitempty"`

	// Found indicates the executable was found.
	Found bool `json:"found"`

	// Message explains a detection failure.
	Message string `json:"message,omitempty"`
}

// DetectBackend finds the backend executable and asks it for its version.
func DetectBackend(ctx context.Context, command string) BackendInfo {
	path, err := exec.LookPath(command)
	if err != nil {
		return BackendInfo{
			Command: command,
			Message: command + " not found in PATH",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, "--version")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return BackendInfo{
			Command: command,
			Path:    path,
			Found:   true,
			Message: "failed to get backend version: " + err.Error(),
		}
	}

	v, err := extractVersion(out.String())
	if err != nil {
		return BackendInfo{Command: command, Path: path, Found: true, Message: err.Error()}
	}

	return BackendInfo{Command: command, Version: v, Path: path, Found: true}
}

// extractVersion extracts the version number from the first line that
// carries one.
func extractVersion(output string) (string, error) {
	for _, line := range strings.Split(output, "\n") {
		if match := backendVersionRegex.FindString(line); match != "" {
			return match, nil
		}
	}
	return "", fmt.Errorf("failed to parse backend version from output: %q", strings.TrimSpace(output))
}

// String returns a human-readable backend info string.
func (b BackendInfo) String() string {
	if !b.Found {
		return fmt.Sprintf("  Command: %s\n  Version: not found", b.Command)
	}
	v := b.Version
	if v == "" {
		v = "unknown (" + b.Message + ")"
	}
	return fmt.Sprintf("  Command: %s\n  Version: %s\n  Path:    %s", b.Command, v, b.Path)
}
