package execshell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	commandGitNameConstant                = "git"
	commandFailedErrorTemplateConstant    = "%s exited with code %d"
	commandFailedStderrTemplateConstant   = "%s exited with code %d: %s"
	commandExecutionErrorTemplateConstant = "%s could not be executed: %v"
	commandDisplayJoinSeparatorConstant   = " "
)

// CommandName identifies a supported external tool.
type CommandName string

// CommandGit identifies the git executable.
const CommandGit CommandName = CommandName(commandGitNameConstant)

var (
	// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
	ErrLoggerNotConfigured = errors.New("shell executor logger not configured")
	// ErrCommandRunnerNotConfigured indicates the executor was constructed without a command runner.
	ErrCommandRunnerNotConfigured = errors.New("shell executor command runner not configured")
)

// CommandDetails describes a single tool invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
	// StandardOutput and StandardError receive the process streams as they are
	// produced. Output is still captured in the ExecutionResult.
	StandardOutput io.Writer
	StandardError  io.Writer
}

// ShellCommand couples a tool with invocation details.
type ShellCommand struct {
	Name CommandName
	// Executable overrides the program resolved for Name, e.g. an absolute path to git.
	Executable string
	Details    CommandDetails
}

// ResolveExecutable returns the program that should be spawned for the command.
func (command ShellCommand) ResolveExecutable() string {
	trimmedExecutable := strings.TrimSpace(command.Executable)
	if len(trimmedExecutable) > 0 {
		return trimmedExecutable
	}
	return string(command.Name)
}

// DisplayLabel renders the executable and its arguments for human consumption.
func (command ShellCommand) DisplayLabel() string {
	parts := append([]string{command.ResolveExecutable()}, command.Details.Arguments...)
	return strings.Join(parts, commandDisplayJoinSeparatorConstant)
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner represents the ability to run shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that ran to completion with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

func (failedError CommandFailedError) Error() string {
	trimmedStandardError := strings.TrimSpace(failedError.Result.StandardError)
	if len(trimmedStandardError) == 0 {
		return fmt.Sprintf(commandFailedErrorTemplateConstant, failedError.Command.DisplayLabel(), failedError.Result.ExitCode)
	}
	return fmt.Sprintf(commandFailedStderrTemplateConstant, failedError.Command.DisplayLabel(), failedError.Result.ExitCode, lastLine(trimmedStandardError))
}

// CommandExecutionError reports a command that could not be started or awaited.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, executionError.Command.DisplayLabel(), executionError.Cause)
}

// Unwrap exposes the underlying cause.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

func lastLine(text string) string {
	lines := strings.Split(text, "\n")
	for index := len(lines) - 1; index >= 0; index-- {
		trimmedLine := strings.TrimSpace(lines[index])
		if len(trimmedLine) > 0 {
			return trimmedLine
		}
	}
	return text
}
