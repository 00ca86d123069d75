package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/temirov/multigit/internal/execshell"
)

const (
	commandStartedMessageTemplateConstant          = "  * Running '%s'...\n"
	commandCompletedMessageConstant                = "  * Complete.\n\n"
	commandFailedExitCodeMessageTemplateConstant   = "  * Failed with exit code %d.\n\n"
	commandExecutionFailureMessageTemplateConstant = "  * Failed: %s\n\n"
	unknownFailureMessageConstant                  = "unknown error"
)

// CommandEventFormatter builds console lines for command lifecycle events.
type CommandEventFormatter struct{}

// BuildStartedMessage formats the line announcing a command about to run.
func (formatter CommandEventFormatter) BuildStartedMessage(command execshell.ShellCommand) string {
	return fmt.Sprintf(commandStartedMessageTemplateConstant, command.DisplayLabel())
}

// BuildCompletedMessage formats the line closing a command that ran to completion.
func (formatter CommandEventFormatter) BuildCompletedMessage(result execshell.ExecutionResult) string {
	if result.ExitCode == 0 {
		return commandCompletedMessageConstant
	}
	return fmt.Sprintf(commandFailedExitCodeMessageTemplateConstant, result.ExitCode)
}

// BuildExecutionFailureMessage formats the line describing a command that could not run.
func (formatter CommandEventFormatter) BuildExecutionFailureMessage(failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = strings.TrimSpace(failure.Error())
	}
	return fmt.Sprintf(commandExecutionFailureMessageTemplateConstant, failureMessage)
}

// ConsoleCommandEventPrinter implements execshell.CommandEventObserver by printing
// lifecycle lines next to the command output. Lines go to the command's own
// standard output when one is attached, so buffered per-repository output keeps
// its header and footer.
type ConsoleCommandEventPrinter struct {
	fallbackWriter io.Writer
	formatter      CommandEventFormatter
}

// NewConsoleCommandEventPrinter constructs a printer writing to writer when a command carries no output stream.
func NewConsoleCommandEventPrinter(writer io.Writer) *ConsoleCommandEventPrinter {
	if writer == nil {
		writer = os.Stdout
	}
	return &ConsoleCommandEventPrinter{fallbackWriter: writer, formatter: CommandEventFormatter{}}
}

// CommandStarted implements execshell.CommandEventObserver.
func (printer *ConsoleCommandEventPrinter) CommandStarted(command execshell.ShellCommand) {
	if printer == nil {
		return
	}
	fmt.Fprint(printer.resolveWriter(command), printer.formatter.BuildStartedMessage(command))
}

// CommandCompleted implements execshell.CommandEventObserver.
func (printer *ConsoleCommandEventPrinter) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if printer == nil {
		return
	}
	fmt.Fprint(printer.resolveWriter(command), printer.formatter.BuildCompletedMessage(result))
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (printer *ConsoleCommandEventPrinter) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if printer == nil {
		return
	}
	fmt.Fprint(printer.resolveWriter(command), printer.formatter.BuildExecutionFailureMessage(failure))
}

func (printer *ConsoleCommandEventPrinter) resolveWriter(command execshell.ShellCommand) io.Writer {
	if command.Details.StandardOutput != nil {
		return command.Details.StandardOutput
	}
	return printer.fallbackWriter
}
