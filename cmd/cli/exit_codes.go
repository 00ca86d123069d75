package cli

import (
	"context"
	"errors"

	repoerrors "github.com/temirov/multigit/internal/repos/errors"
)

// Process exit statuses, one per failure class.
const (
	ExitCodeSuccess            = 0
	ExitCodeBatchFailed        = 1
	ExitCodeMalformedArguments = 2
	ExitCodeMissingArguments   = 3
	ExitCodeInvalidDirectory   = 4
	ExitCodeInvalidCatalog     = 5
	ExitCodeSetupFailed        = 6
	ExitCodeInterrupted        = 130
)

var argumentKindExitCodes = map[repoerrors.ArgumentKind]int{
	repoerrors.ArgumentMalformed:        ExitCodeMalformedArguments,
	repoerrors.ArgumentMissing:          ExitCodeMissingArguments,
	repoerrors.ArgumentInvalidDirectory: ExitCodeInvalidDirectory,
}

// ExitCode maps an error returned by Execute to the process exit status.
// Unclassified errors exit with ExitCodeBatchFailed.
func ExitCode(executionError error) int {
	if executionError == nil {
		return ExitCodeSuccess
	}

	var argumentError repoerrors.ArgumentError
	if errors.As(executionError, &argumentError) {
		if exitCode, known := argumentKindExitCodes[argumentError.Kind]; known {
			return exitCode
		}
		return ExitCodeMalformedArguments
	}

	var catalogError repoerrors.InvalidCatalogError
	switch {
	case errors.As(executionError, &catalogError):
		return ExitCodeInvalidCatalog
	case errors.Is(executionError, ErrSetupFailed):
		return ExitCodeSetupFailed
	case errors.Is(executionError, context.Canceled):
		return ExitCodeInterrupted
	case errors.Is(executionError, repoerrors.ErrBatchFailed):
		return ExitCodeBatchFailed
	default:
		return ExitCodeBatchFailed
	}
}
