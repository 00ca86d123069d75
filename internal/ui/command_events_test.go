package ui_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/multigit/internal/execshell"
	"github.com/temirov/multigit/internal/ui"
)

func TestConsoleCommandEventPrinterWritesLifecycleLines(testInstance *testing.T) {
	testCases := []struct {
		name           string
		emit           func(*ui.ConsoleCommandEventPrinter, execshell.ShellCommand)
		expectedOutput string
	}{
		{
			name: "started",
			emit: func(printer *ui.ConsoleCommandEventPrinter, command execshell.ShellCommand) {
				printer.CommandStarted(command)
			},
			expectedOutput: "  * Running 'git pull'...\n",
		},
		{
			name: "completed_successfully",
			emit: func(printer *ui.ConsoleCommandEventPrinter, command execshell.ShellCommand) {
				printer.CommandCompleted(command, execshell.ExecutionResult{})
			},
			expectedOutput: "  * Complete.\n\n",
		},
		{
			name: "completed_with_failure",
			emit: func(printer *ui.ConsoleCommandEventPrinter, command execshell.ShellCommand) {
				printer.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 1})
			},
			expectedOutput: "  * Failed with exit code 1.\n\n",
		},
		{
			name: "execution_failure",
			emit: func(printer *ui.ConsoleCommandEventPrinter, command execshell.ShellCommand) {
				printer.CommandExecutionFailed(command, errors.New("executable file not found"))
			},
			expectedOutput: "  * Failed: executable file not found\n\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var fallbackOutput bytes.Buffer
			printer := ui.NewConsoleCommandEventPrinter(&fallbackOutput)
			command := execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: []string{"pull"}}}

			testCase.emit(printer, command)

			require.Equal(testInstance, testCase.expectedOutput, fallbackOutput.String())
		})
	}
}

func TestConsoleCommandEventPrinterPrefersCommandOutput(testInstance *testing.T) {
	var fallbackOutput bytes.Buffer
	var repositoryOutput bytes.Buffer
	printer := ui.NewConsoleCommandEventPrinter(&fallbackOutput)

	printer.CommandStarted(execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{"pull"}, StandardOutput: &repositoryOutput},
	})

	require.Empty(testInstance, fallbackOutput.String())
	require.Equal(testInstance, "  * Running 'git pull'...\n", repositoryOutput.String())
}
