package errors_test

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"

	repoerrors "github.com/temirov/multigit/internal/repos/errors"
)

func TestErrorMessages(testInstance *testing.T) {
	cause := errors.New("exit status 128")

	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "malformed_argument",
			err:      repoerrors.NewArgumentError(repoerrors.ArgumentMalformed, "  unknown command \"push\" ", nil),
			expected: "malformed arguments: unknown command \"push\"",
		},
		{
			name:     "invalid_directory_with_cause",
			err:      repoerrors.NewArgumentError(repoerrors.ArgumentInvalidDirectory, "'/nowhere' is not a valid directory!", fs.ErrNotExist),
			expected: "invalid directory: '/nowhere' is not a valid directory!: file does not exist",
		},
		{
			name:     "catalog_without_path",
			err:      repoerrors.InvalidCatalogError{Reason: "missing top-level repos key"},
			expected: "invalid catalog document: missing top-level repos key",
		},
		{
			name:     "discovery",
			err:      repoerrors.DiscoveryIOError{Directory: "/ws/locked", Cause: fs.ErrPermission},
			expected: "unable to read directory /ws/locked: permission denied",
		},
		{
			name:     "operation",
			err:      repoerrors.OperationError{Operation: "pull", Repository: "core/lib", Cause: cause},
			expected: "pull core/lib failed: exit status 128",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.EqualError(testInstance, testCase.err, testCase.expected)
		})
	}
}

func TestErrorsUnwrapCauses(testInstance *testing.T) {
	cause := errors.New("boom")

	require.ErrorIs(testInstance, repoerrors.NewArgumentError(repoerrors.ArgumentMissing, "--directory is required", cause), cause)
	require.ErrorIs(testInstance, repoerrors.InvalidCatalogError{Path: "repos.yml", Reason: "unreadable", Cause: cause}, cause)
	require.ErrorIs(testInstance, repoerrors.DiscoveryIOError{Directory: "/ws", Cause: cause}, cause)
	require.ErrorIs(testInstance, repoerrors.OperationError{Operation: "clone", Repository: "core/app", Cause: cause}, cause)
}

func TestOperationErrorMessage(testInstance *testing.T) {
	operationError := repoerrors.OperationError{Operation: "pull", Repository: "core/lib", Cause: errors.New("exit status 1")}
	require.Equal(testInstance, "Error processing core/lib: exit status 1\n", operationError.Message())
}

func TestArgumentKindLabels(testInstance *testing.T) {
	require.Equal(testInstance, "malformed arguments", repoerrors.ArgumentMalformed.String())
	require.Equal(testInstance, "missing required arguments", repoerrors.ArgumentMissing.String())
	require.Equal(testInstance, "invalid directory", repoerrors.ArgumentInvalidDirectory.String())
}
