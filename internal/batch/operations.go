package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/temirov/multigit/internal/execshell"
	repoerrors "github.com/temirov/multigit/internal/repos/errors"
	"github.com/temirov/multigit/internal/repos/shared"
)

const (
	cloningMessageTemplateConstant         = "Cloning '%s':\n"
	cloneSkippedMessageTemplateConstant    = "Skipping clone of '%s' as already exists.\n"
	pullingMessageTemplateConstant         = "Pulling '%s':\n"
	pullSkippedMessageTemplateConstant     = "Skipping pull of '%s' as it's not a git repo!\n"
	execRunningMessageTemplateConstant     = "Running in '%s':\n"
	execSkippedMessageTemplateConstant     = "Skipping '%s' as it's not a git repo!\n"
	markerInspectionErrorTemplateConstant  = "inspect %s: %w"
	gitCloneSubcommandConstant             = "clone"
	gitPullSubcommandConstant              = "pull"
	repositoryDirectoryPermissionsConstant = fs.FileMode(0o755)
)

// ErrMissingRemoteURL indicates a clone target without a remote URL.
var ErrMissingRemoteURL = errors.New("repository has no remote url")

type repositoryOperation struct {
	request    Request
	repository shared.Repository
	output     io.Writer
	reporter   shared.Reporter
}

func newRepositoryOperation(request Request, repository shared.Repository, output io.Writer) repositoryOperation {
	return repositoryOperation{
		request:    request,
		repository: repository,
		output:     output,
		reporter:   shared.NewWriterReporter(output),
	}
}

func (operation repositoryOperation) succeeded() Outcome {
	return Outcome{Repository: operation.repository, Status: OutcomeSucceeded}
}

func (operation repositoryOperation) skipped(reason SkipReason) Outcome {
	return Outcome{Repository: operation.repository, Status: OutcomeSkipped, SkipReason: reason}
}

// failed reports the failure on the repository output and wraps it with the repository identity.
func (operation repositoryOperation) failed(cause error) Outcome {
	operationError := repoerrors.OperationError{
		Operation:  operation.request.Command.String(),
		Repository: operation.repository.Identity(),
		Cause:      cause,
	}
	operation.reporter.Printf("%s", operationError.Message())
	return Outcome{Repository: operation.repository, Status: OutcomeFailed, Error: operationError}
}

func (runner *Runner) cloneRepository(executionContext context.Context, operation repositoryOperation) Outcome {
	repository := operation.repository

	markerPresent, markerError := runner.markerExists(repository)
	if markerError != nil {
		return operation.failed(markerError)
	}
	if markerPresent {
		operation.reporter.Printf(cloneSkippedMessageTemplateConstant, repository.Identity())
		return operation.skipped(SkippedAlreadyExists)
	}

	operation.reporter.Printf(cloningMessageTemplateConstant, repository.Identity())
	if len(repository.RemoteURL) == 0 {
		return operation.failed(ErrMissingRemoteURL)
	}
	if mkdirError := runner.dependencies.FileSystem.MkdirAll(repository.Directory, repositoryDirectoryPermissionsConstant); mkdirError != nil {
		return operation.failed(mkdirError)
	}

	return runner.runGit(executionContext, operation, execshell.CommandDetails{
		Arguments: []string{gitCloneSubcommandConstant, repository.RemoteURL, repository.Directory},
	})
}

func (runner *Runner) pullRepository(executionContext context.Context, operation repositoryOperation) Outcome {
	repository := operation.repository

	markerPresent, markerError := runner.markerExists(repository)
	if markerError != nil {
		return operation.failed(markerError)
	}
	if !markerPresent {
		operation.reporter.Printf(pullSkippedMessageTemplateConstant, repository.Identity())
		return operation.skipped(SkippedNotARepository)
	}

	operation.reporter.Printf(pullingMessageTemplateConstant, repository.Identity())
	return runner.runGit(executionContext, operation, execshell.CommandDetails{
		Arguments:        []string{gitPullSubcommandConstant},
		WorkingDirectory: repository.Directory,
	})
}

func (runner *Runner) execRepository(executionContext context.Context, operation repositoryOperation) Outcome {
	repository := operation.repository

	markerPresent, markerError := runner.markerExists(repository)
	if markerError != nil {
		return operation.failed(markerError)
	}
	if !markerPresent {
		operation.reporter.Printf(execSkippedMessageTemplateConstant, repository.Identity())
		return operation.skipped(SkippedNotARepository)
	}

	operation.reporter.Printf(execRunningMessageTemplateConstant, repository.Identity())
	return runner.runGit(executionContext, operation, execshell.CommandDetails{
		Arguments:        append([]string{}, operation.request.Arguments...),
		WorkingDirectory: repository.Directory,
	})
}

func (runner *Runner) runGit(executionContext context.Context, operation repositoryOperation, details execshell.CommandDetails) Outcome {
	details.StandardOutput = operation.output
	details.StandardError = operation.output
	if _, executionError := runner.dependencies.GitExecutor.ExecuteGit(executionContext, details); executionError != nil {
		return operation.failed(executionError)
	}
	return operation.succeeded()
}

func (runner *Runner) markerExists(repository shared.Repository) (bool, error) {
	_, statError := runner.dependencies.FileSystem.Stat(repository.MarkerPath())
	switch {
	case statError == nil:
		return true, nil
	case errors.Is(statError, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf(markerInspectionErrorTemplateConstant, repository.MarkerPath(), statError)
	}
}
