package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	repoerrors "github.com/temirov/multigit/internal/repos/errors"
	"github.com/temirov/multigit/internal/repos/shared"
)

const (
	batchFailedTemplateConstant         = "%w: %d of %d repositories"
	missingHandlerTemplateConstant      = "no handler registered for command %q"
	unknownCommandTemplateConstant      = "unsupported command %q"
	repositoryFailedLogMessageConstant  = "repository operation failed"
	repositorySkippedLogMessageConstant = "repository skipped"
	batchCompletedLogMessageConstant    = "batch completed"
	logFieldRepositoryConstant          = "repository"
	logFieldCommandConstant             = "command"
	logFieldReasonConstant              = "reason"
	logFieldSucceededConstant           = "succeeded"
	logFieldSkippedConstant             = "skipped"
	logFieldFailedConstant              = "failed"
	logFieldCancelledConstant           = "cancelled"
	defaultJobCountConstant             = 1
)

var (
	// ErrGitExecutorNotConfigured indicates the runner was constructed without a git executor.
	ErrGitExecutorNotConfigured = errors.New("batch runner git executor not configured")
	// ErrFileSystemNotConfigured indicates the runner was constructed without a filesystem.
	ErrFileSystemNotConfigured = errors.New("batch runner filesystem not configured")
)

// ProgressTracker observes repository dispatch. Implementations must be safe for concurrent use.
type ProgressTracker interface {
	RepositoryFinished(outcome Outcome)
	Finish()
}

// Dependencies supplies collaborators required by the runner.
type Dependencies struct {
	GitExecutor shared.GitExecutor
	FileSystem  shared.FileSystem
	Logger      *zap.Logger
	Output      io.Writer
	Progress    ProgressTracker
}

// Options controls dispatch policy.
type Options struct {
	Jobs           int
	FailFast       bool
	IgnoreFailures bool
}

// Request selects the operation applied to every repository.
type Request struct {
	Command Command
	// Arguments are the git arguments used by CommandExec.
	Arguments []string
}

type operationHandler func(*Runner, context.Context, repositoryOperation) Outcome

var operationHandlers = map[Command]operationHandler{
	CommandClone: (*Runner).cloneRepository,
	CommandPull:  (*Runner).pullRepository,
	CommandExec:  (*Runner).execRepository,
}

// Runner dispatches one operation per repository.
type Runner struct {
	dependencies Dependencies
	options      Options
	handlers     map[Command]operationHandler
	outputMutex  sync.Mutex
}

// NewRunner validates collaborators and constructs a Runner.
func NewRunner(dependencies Dependencies, options Options) (*Runner, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	for _, command := range Commands() {
		if _, registered := operationHandlers[command]; !registered {
			return nil, fmt.Errorf(missingHandlerTemplateConstant, command)
		}
	}
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.Output == nil {
		dependencies.Output = os.Stdout
	}
	if options.Jobs < defaultJobCountConstant {
		options.Jobs = defaultJobCountConstant
	}
	return &Runner{dependencies: dependencies, options: options, handlers: operationHandlers}, nil
}

// Run applies the requested operation to every repository and prints a summary.
// Cancelling executionContext stops dispatch and terminates running subprocesses.
// With fail-fast enabled the first failure stops dispatch while running
// subprocesses finish. The returned error wraps ErrBatchFailed when a repository
// failed and failures are not ignored.
func (runner *Runner) Run(executionContext context.Context, request Request, repositories iter.Seq[shared.Repository]) (Summary, error) {
	handler, known := runner.handlers[request.Command]
	if !known {
		return Summary{}, repoerrors.NewArgumentError(repoerrors.ArgumentMalformed, fmt.Sprintf(unknownCommandTemplateConstant, request.Command), nil)
	}

	dispatchContext, stopDispatch := context.WithCancel(executionContext)
	defer stopDispatch()

	var (
		outcomesMutex sync.Mutex
		outcomes      []Outcome
		workers       errgroup.Group
	)
	workers.SetLimit(runner.options.Jobs)

	recordOutcome := func(index int, outcome Outcome) {
		outcomesMutex.Lock()
		outcomes[index] = outcome
		outcomesMutex.Unlock()
		runner.logOutcome(request, outcome)
		if runner.dependencies.Progress != nil {
			runner.dependencies.Progress.RepositoryFinished(outcome)
		}
		if outcome.Status == OutcomeFailed && runner.options.FailFast {
			stopDispatch()
		}
	}

	for repository := range repositories {
		outcomesMutex.Lock()
		index := len(outcomes)
		outcomes = append(outcomes, Outcome{Repository: repository, Status: OutcomeCancelled})
		outcomesMutex.Unlock()

		if dispatchContext.Err() != nil {
			recordOutcome(index, Outcome{Repository: repository, Status: OutcomeCancelled})
			continue
		}

		workers.Go(func() error {
			if dispatchContext.Err() != nil {
				recordOutcome(index, Outcome{Repository: repository, Status: OutcomeCancelled})
				return nil
			}
			recordOutcome(index, runner.dispatch(executionContext, handler, request, repository))
			return nil
		})
	}
	workers.Wait()

	if runner.dependencies.Progress != nil {
		runner.dependencies.Progress.Finish()
	}

	summary := Summary{Outcomes: outcomes}
	runner.writeOutput(func(writer io.Writer) { summary.Render(writer) })
	runner.dependencies.Logger.Info(batchCompletedLogMessageConstant,
		zap.String(logFieldCommandConstant, request.Command.String()),
		zap.Int(logFieldSucceededConstant, summary.Count(OutcomeSucceeded)),
		zap.Int(logFieldSkippedConstant, summary.Count(OutcomeSkipped)),
		zap.Int(logFieldFailedConstant, summary.Count(OutcomeFailed)),
		zap.Int(logFieldCancelledConstant, summary.Count(OutcomeCancelled)),
	)

	if contextError := executionContext.Err(); contextError != nil {
		return summary, contextError
	}
	failedCount := summary.Count(OutcomeFailed)
	if failedCount > 0 && !runner.options.IgnoreFailures {
		return summary, fmt.Errorf(batchFailedTemplateConstant, repoerrors.ErrBatchFailed, failedCount, len(summary.Outcomes))
	}
	return summary, nil
}

// dispatch runs the handler with output attributed to the repository. A single
// worker streams directly; multiple workers buffer and flush one block per repository.
func (runner *Runner) dispatch(executionContext context.Context, handler operationHandler, request Request, repository shared.Repository) Outcome {
	if runner.options.Jobs == defaultJobCountConstant {
		var outcome Outcome
		runner.writeOutput(func(writer io.Writer) {
			outcome = handler(runner, executionContext, newRepositoryOperation(request, repository, writer))
		})
		return outcome
	}

	var repositoryOutput bytes.Buffer
	outcome := handler(runner, executionContext, newRepositoryOperation(request, repository, &repositoryOutput))
	runner.writeOutput(func(writer io.Writer) { _, _ = writer.Write(repositoryOutput.Bytes()) })
	return outcome
}

func (runner *Runner) writeOutput(write func(io.Writer)) {
	runner.outputMutex.Lock()
	defer runner.outputMutex.Unlock()
	write(runner.dependencies.Output)
}

func (runner *Runner) logOutcome(request Request, outcome Outcome) {
	fields := []zap.Field{
		zap.String(logFieldCommandConstant, request.Command.String()),
		zap.String(logFieldRepositoryConstant, outcome.Repository.Identity()),
	}
	switch outcome.Status {
	case OutcomeFailed:
		runner.dependencies.Logger.Error(repositoryFailedLogMessageConstant, append(fields, zap.Error(outcome.Error))...)
	case OutcomeSkipped:
		runner.dependencies.Logger.Debug(repositorySkippedLogMessageConstant, append(fields, zap.String(logFieldReasonConstant, string(outcome.SkipReason)))...)
	}
}
