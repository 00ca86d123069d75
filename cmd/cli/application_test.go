package cli_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/multigit/cmd/cli"
	"github.com/temirov/multigit/cmd/cli/repos"
	"github.com/temirov/multigit/internal/execshell"
	repoerrors "github.com/temirov/multigit/internal/repos/errors"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
	testFilePermissionsConstant       = 0o600
	testDirectoryPermissionsConstant  = 0o755
	testGitFailureMessageConstant     = "exit status 1"
)

type stubGitExecutor struct {
	mutex       sync.Mutex
	invocations int
	failure     error
}

func (executor *stubGitExecutor) ExecuteGit(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	executor.invocations++
	return execshell.ExecutionResult{}, executor.failure
}

type applicationHarness struct {
	workingDirectory string
	executor         *stubGitExecutor
	diagnostics      bytes.Buffer
}

func newApplicationHarness(testInstance *testing.T) *applicationHarness {
	testInstance.Helper()
	return &applicationHarness{
		workingDirectory: testInstance.TempDir(),
		executor:         &stubGitExecutor{},
	}
}

func (harness *applicationHarness) createRepository(testInstance *testing.T, name string) {
	testInstance.Helper()
	require.NoError(testInstance, os.MkdirAll(filepath.Join(harness.workingDirectory, name, ".git"), testDirectoryPermissionsConstant))
}

func (harness *applicationHarness) writeConfiguration(testInstance *testing.T, contents string) string {
	testInstance.Helper()
	configurationPath := filepath.Join(harness.workingDirectory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(contents), testFilePermissionsConstant))
	return configurationPath
}

func (harness *applicationHarness) execute(testInstance *testing.T, arguments ...string) (string, error) {
	testInstance.Helper()
	application, applicationError := cli.NewApplication(
		cli.WithBatchCollaborators(repos.BatchCollaborators{
			GitExecutor: harness.executor,
			WorkingDirectoryProvider: func() (string, error) {
				return harness.workingDirectory, nil
			},
		}),
		cli.WithDiagnosticOutput(&harness.diagnostics),
		cli.WithConfigurationSearchPaths(harness.workingDirectory),
	)
	require.NoError(testInstance, applicationError)

	var output bytes.Buffer
	rootCommand := application.RootCommand()
	rootCommand.SetOut(&output)
	rootCommand.SetErr(&output)
	if arguments == nil {
		arguments = []string{}
	}
	rootCommand.SetArgs(arguments)

	executionError := application.Execute(context.Background())
	return output.String(), executionError
}

func TestApplicationHelpSucceeds(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
	}{
		{name: "no_arguments"},
		{name: "long_help_flag", arguments: []string{"--help"}},
		{name: "short_help_flag", arguments: []string{"-h"}},
		{name: "subcommand_help", arguments: []string{"pull", "--help"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			harness := newApplicationHarness(testInstance)
			output, executionError := harness.execute(testInstance, testCase.arguments...)
			require.NoError(testInstance, executionError)
			require.Contains(testInstance, output, "multigit")
			require.Equal(testInstance, cli.ExitCodeSuccess, cli.ExitCode(executionError))
			require.Zero(testInstance, harness.executor.invocations)
		})
	}
}

func TestApplicationClassifiesArgumentErrors(testInstance *testing.T) {
	testCases := []struct {
		name             string
		arguments        []string
		expectedExitCode int
	}{
		{name: "unknown_command", arguments: []string{"frobnicate"}, expectedExitCode: cli.ExitCodeMalformedArguments},
		{name: "unknown_flag", arguments: []string{"pull", "--nope"}, expectedExitCode: cli.ExitCodeMalformedArguments},
		{name: "non_numeric_jobs", arguments: []string{"--jobs", "many", "pull"}, expectedExitCode: cli.ExitCodeMalformedArguments},
		{name: "log_level_outside_choices", arguments: []string{"--log-level", "verbose", "pull"}, expectedExitCode: cli.ExitCodeMalformedArguments},
		{name: "run_without_selector", arguments: []string{"run"}, expectedExitCode: cli.ExitCodeMissingArguments},
		{name: "exec_without_directory", arguments: []string{"exec", "-c", "status"}, expectedExitCode: cli.ExitCodeMissingArguments},
		{name: "pull_missing_directory", arguments: []string{"pull", "-d", "does-not-exist"}, expectedExitCode: cli.ExitCodeInvalidDirectory},
		{name: "clone_without_catalog", arguments: []string{"clone"}, expectedExitCode: cli.ExitCodeInvalidCatalog},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			harness := newApplicationHarness(testInstance)
			_, executionError := harness.execute(testInstance, testCase.arguments...)
			require.Error(testInstance, executionError)
			require.Equal(testInstance, testCase.expectedExitCode, cli.ExitCode(executionError))
			require.Zero(testInstance, harness.executor.invocations)
		})
	}
}

func TestApplicationReportsSetupFailures(testInstance *testing.T) {
	harness := newApplicationHarness(testInstance)

	_, missingConfigurationError := harness.execute(testInstance, "--config", filepath.Join(harness.workingDirectory, "absent.yaml"), "pull")
	require.ErrorIs(testInstance, missingConfigurationError, cli.ErrSetupFailed)
	require.Equal(testInstance, cli.ExitCodeSetupFailed, cli.ExitCode(missingConfigurationError))

	configurationPath := harness.writeConfiguration(testInstance, "common:\n  log_level: chatty\n")
	_, invalidLevelError := harness.execute(testInstance, "--config", configurationPath, "pull")
	require.ErrorIs(testInstance, invalidLevelError, cli.ErrSetupFailed)
}

func TestApplicationFailurePolicyLayers(testInstance *testing.T) {
	harness := newApplicationHarness(testInstance)
	harness.createRepository(testInstance, "alpha")
	harness.executor.failure = errors.New(testGitFailureMessageConstant)

	output, failureError := harness.execute(testInstance, "pull", "-d", harness.workingDirectory)
	require.ErrorIs(testInstance, failureError, repoerrors.ErrBatchFailed)
	require.Equal(testInstance, cli.ExitCodeBatchFailed, cli.ExitCode(failureError))
	require.Contains(testInstance, output, fmt.Sprintf("  failed: %s\n", filepath.Join(harness.workingDirectory, "alpha")))

	harness.writeConfiguration(testInstance, "batch:\n  ignore_failures: true\n")
	_, configuredError := harness.execute(testInstance, "pull", "-d", harness.workingDirectory)
	require.NoError(testInstance, configuredError)

	_, flagOverrideError := harness.execute(testInstance, "--ignore-failures=false", "pull", "-d", harness.workingDirectory)
	require.ErrorIs(testInstance, flagOverrideError, repoerrors.ErrBatchFailed)
}

func TestApplicationEnvironmentOverridesDefaults(testInstance *testing.T) {
	harness := newApplicationHarness(testInstance)
	harness.createRepository(testInstance, "alpha")
	harness.executor.failure = errors.New(testGitFailureMessageConstant)
	testInstance.Setenv("MULTIGIT_BATCH_IGNORE_FAILURES", "true")

	_, executionError := harness.execute(testInstance, "pull", "-d", harness.workingDirectory)
	require.NoError(testInstance, executionError)
}

func TestApplicationLogsAtRequestedLevel(testInstance *testing.T) {
	harness := newApplicationHarness(testInstance)
	harness.createRepository(testInstance, "alpha")

	_, executionError := harness.execute(testInstance, "--log-level", "debug", "--log-format", "structured", "pull", "-d", harness.workingDirectory)
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, harness.diagnostics.String(), "\"msg\":\"configuration initialized\"")
	require.Equal(testInstance, 1, harness.executor.invocations)
}

func TestExitCodeClassification(testInstance *testing.T) {
	testCases := []struct {
		name             string
		err              error
		expectedExitCode int
	}{
		{name: "success", expectedExitCode: cli.ExitCodeSuccess},
		{name: "batch_failed", err: fmt.Errorf("%w: 1 of 3 repositories", repoerrors.ErrBatchFailed), expectedExitCode: cli.ExitCodeBatchFailed},
		{name: "malformed", err: repoerrors.NewArgumentError(repoerrors.ArgumentMalformed, "bad", nil), expectedExitCode: cli.ExitCodeMalformedArguments},
		{name: "missing", err: repoerrors.NewArgumentError(repoerrors.ArgumentMissing, "absent", nil), expectedExitCode: cli.ExitCodeMissingArguments},
		{name: "invalid_directory", err: repoerrors.NewArgumentError(repoerrors.ArgumentInvalidDirectory, "nowhere", nil), expectedExitCode: cli.ExitCodeInvalidDirectory},
		{name: "invalid_catalog", err: repoerrors.InvalidCatalogError{Path: "repos.yml", Reason: "missing repos"}, expectedExitCode: cli.ExitCodeInvalidCatalog},
		{name: "setup", err: fmt.Errorf("%w: logger", cli.ErrSetupFailed), expectedExitCode: cli.ExitCodeSetupFailed},
		{name: "interrupted", err: fmt.Errorf("run: %w", context.Canceled), expectedExitCode: cli.ExitCodeInterrupted},
		{name: "unclassified", err: errors.New("boom"), expectedExitCode: cli.ExitCodeBatchFailed},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedExitCode, cli.ExitCode(testCase.err))
		})
	}
}
