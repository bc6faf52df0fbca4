package cmdutil

import (
	"errors"
	"strings"

	"github.com/charmbracelet/log"

	oerrors "github.com/opmodel/devenv/internal/errors"
	"github.com/opmodel/devenv/internal/output"
)

// PrintError logs err in a user-friendly format. DetailErrors get a short
// summary line followed by their structured detail block; other errors use
// the key-value log format.
func PrintError(logger *log.Logger, msg string, err error) {
	if logger == nil {
		logger = output.Logger()
	}

	var detail *oerrors.DetailError
	if errors.As(err, &detail) {
		logger.Error(msg + ": " + detail.Message)
		output.Details(strings.TrimRight(detail.Error(), "\n"))
		return
	}
	logger.Error(msg, "error", err)
}

// Exit wraps err into a printed ExitError with the mapped exit code, after
// logging it through PrintError.
func Exit(logger *log.Logger, msg string, err error) error {
	PrintError(logger, msg, err)
	return &oerrors.ExitError{Code: oerrors.ExitCodeFromError(err), Err: err, Printed: true}
}
