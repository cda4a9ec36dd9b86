package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/grovetools/idler/errors"
)

// ErrorHandler turns errors into user-facing messages.
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates an error handler writing to stderr.
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     os.Stderr,
	}
}

// Handle prints a message for err and returns it unchanged.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}

	var idlerErr *errors.IdlerError
	if e, ok := err.(*errors.IdlerError); ok {
		idlerErr = e
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(h.Out, "❌ Configuration not found. Create idler.yml in the directory printed by 'idler paths'.\n")

	case errors.ErrCodeConfigInvalid:
		fmt.Fprintf(h.Out, "❌ Invalid configuration: %v\n", err)

	case errors.ErrCodePreconditionFailed:
		fmt.Fprintf(h.Out, "❌ Steam is not running. Start the Steam client and try again.\n")

	case errors.ErrCodeHelperNotFound:
		if idlerErr != nil {
			fmt.Fprintf(h.Out, "❌ Helper utility not found at %v\n", idlerErr.Details["path"])
		}
		fmt.Fprintf(h.Out, "Set helper.utility_path in idler.yml to the SteamUtility binary.\n")

	case errors.ErrCodeStateCorrupt:
		fmt.Fprintf(h.Out, "❌ Saved state is unreadable. 'idler logout' resets it.\n")

	case errors.ErrCodeInvalidInput:
		fmt.Fprintf(h.Out, "❌ %v\n", err)

	default:
		fmt.Fprintf(h.Out, "❌ Error: %v\n", err)
	}

	if h.Verbose && idlerErr != nil {
		fmt.Fprintf(h.Out, "\nError details:\n%s\n", idlerErr.ToJSON())
	}
	return err
}
