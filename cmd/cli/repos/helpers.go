package repos

import (
	"fmt"
	"io/fs"
	"iter"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/multigit/internal/batch"
	"github.com/temirov/multigit/internal/catalog"
	"github.com/temirov/multigit/internal/repos/dependencies"
	repoerrors "github.com/temirov/multigit/internal/repos/errors"
	"github.com/temirov/multigit/internal/repos/shared"
	"github.com/temirov/multigit/internal/ui"
	"github.com/temirov/multigit/internal/utils"
	pathutils "github.com/temirov/multigit/internal/utils/path"
)

const (
	catalogFileFlagName               = "repos-file"
	catalogFileFlagShorthand          = "r"
	catalogFileFlagUsage              = "Catalog file listing repositories by group (default .git-repos.yml)"
	groupFlagName                     = "group"
	groupFlagUsage                    = "Restrict the catalog to the named group (repeatable)"
	directoryFlagName                 = "directory"
	directoryFlagShorthand            = "d"
	directoryMissingDetailConstant    = "--directory is required"
	directoryNotFoundDetailTemplate   = "'%s' is not a valid directory!"
	unexpectedArgumentsDetailTemplate = "unexpected arguments for %s: %s"
	workingDirectoryErrorTemplate     = "unable to determine working directory: %w"
	batchStartedLogMessageConstant    = "batch started"
	logFieldCommandConstant           = "command"
	logFieldSourceConstant            = "source"
	logFieldJobsConstant              = "jobs"
)

var repositoryHomeDirectoryExpander = pathutils.NewHomeExpander()

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider yields the batch settings resolved from configuration and global flags.
type ConfigurationProvider func() BatchConfiguration

// WorkingDirectoryProvider yields the directory catalog repositories are placed under.
type WorkingDirectoryProvider func() (string, error)

// repositorySource is the lazily materialized input of a batch. Total is
// indeterminateProgressTotalConstant when the size is unknown up front.
type repositorySource struct {
	description  string
	repositories iter.Seq[shared.Repository]
	total        int
}

// BatchCollaborators supplies optional overrides shared by every batch command builder.
type BatchCollaborators struct {
	GitExecutor              shared.GitExecutor
	FileSystem               shared.FileSystem
	Scanner                  shared.RepositoryScanner
	WorkingDirectoryProvider WorkingDirectoryProvider
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveConfiguration(provider ConfigurationProvider) BatchConfiguration {
	if provider == nil {
		return DefaultBatchConfiguration().sanitize()
	}
	return provider().sanitize()
}

func (collaborators BatchCollaborators) workingDirectory() (string, error) {
	provider := collaborators.WorkingDirectoryProvider
	if provider == nil {
		provider = os.Getwd
	}
	workingDirectory, workingDirectoryError := provider()
	if workingDirectoryError != nil {
		return "", fmt.Errorf(workingDirectoryErrorTemplate, workingDirectoryError)
	}
	return workingDirectory, nil
}

// catalogRepositories loads the catalog selected by flags or configuration and materializes it.
func (collaborators BatchCollaborators) catalogRepositories(command *cobra.Command, configuration BatchConfiguration) (repositorySource, error) {
	catalogFile := configuration.CatalogFile
	if command.Flags().Changed(catalogFileFlagName) {
		flagValue, _ := command.Flags().GetString(catalogFileFlagName)
		catalogFile = repositoryHomeDirectoryExpander.Expand(flagValue)
		if len(catalogFile) == 0 {
			return repositorySource{}, repoerrors.NewArgumentError(repoerrors.ArgumentMissing, "--"+catalogFileFlagName+" requires a path", nil)
		}
	}

	groups := configuration.Groups
	if command.Flags().Changed(groupFlagName) {
		groups, _ = command.Flags().GetStringSlice(groupFlagName)
	}

	workingDirectory, workingDirectoryError := collaborators.workingDirectory()
	if workingDirectoryError != nil {
		return repositorySource{}, workingDirectoryError
	}

	catalogPath := catalog.ResolvePath(workingDirectory, catalogFile)
	document, loadError := catalog.Load(catalogPath)
	if loadError != nil {
		return repositorySource{}, loadError
	}

	repositories, materializeError := catalog.Materialize(document, workingDirectory, groups...)
	if materializeError != nil {
		return repositorySource{}, materializeError
	}
	total := 0
	for range repositories {
		total++
	}
	return repositorySource{description: catalogPath, repositories: repositories, total: total}, nil
}

// scannedRepositories validates directory and lazily yields the repositories found below it.
func (collaborators BatchCollaborators) scannedRepositories(command *cobra.Command, logger *zap.Logger, directory string) (repositorySource, error) {
	expandedDirectory := repositoryHomeDirectoryExpander.Expand(directory)
	if len(expandedDirectory) == 0 {
		return repositorySource{}, repoerrors.NewArgumentError(repoerrors.ArgumentMissing, directoryMissingDetailConstant, nil)
	}

	fileSystem := dependencies.ResolveFileSystem(collaborators.FileSystem)
	directoryInfo, statError := fileSystem.Stat(expandedDirectory)
	if statError != nil || !directoryInfo.IsDir() {
		if statError == nil {
			statError = fs.ErrInvalid
		}
		return repositorySource{}, repoerrors.NewArgumentError(repoerrors.ArgumentInvalidDirectory, fmt.Sprintf(directoryNotFoundDetailTemplate, directory), statError)
	}

	if absoluteDirectory, absoluteError := fileSystem.Abs(expandedDirectory); absoluteError == nil {
		expandedDirectory = absoluteDirectory
	}

	scanner := dependencies.ResolveRepositoryScanner(collaborators.Scanner, logger, shared.NewWriterReporter(command.OutOrStdout()))
	executionContext := command.Context()
	repositories := func(yield func(shared.Repository) bool) {
		for repositoryPath := range scanner.Scan(executionContext, expandedDirectory) {
			if !yield(shared.NewDiscoveredRepository(repositoryPath)) {
				return
			}
		}
	}
	return repositorySource{description: expandedDirectory, repositories: repositories, total: indeterminateProgressTotalConstant}, nil
}

// executeBatch runs request over the source repositories with collaborators built from configuration.
func (collaborators BatchCollaborators) executeBatch(command *cobra.Command, logger *zap.Logger, configuration BatchConfiguration, request batch.Request, source repositorySource) error {
	output := utils.NewSynchronizedWriter(command.OutOrStdout())

	gitExecutor, executorError := dependencies.ResolveGitExecutor(collaborators.GitExecutor, logger, dependencies.GitExecutorSettings{
		Executable: configuration.GitExecutable,
		Observer:   ui.NewConsoleCommandEventPrinter(output),
	})
	if executorError != nil {
		return executorError
	}

	runner, runnerError := batch.NewRunner(batch.Dependencies{
		GitExecutor: gitExecutor,
		FileSystem:  dependencies.ResolveFileSystem(collaborators.FileSystem),
		Logger:      logger,
		Output:      output,
		Progress:    newProgressTracker(configuration.Progress, command.ErrOrStderr(), source.total),
	}, batch.Options{
		Jobs:           configuration.Jobs,
		FailFast:       configuration.FailFast,
		IgnoreFailures: configuration.IgnoreFailures,
	})
	if runnerError != nil {
		return runnerError
	}

	logger.Info(batchStartedLogMessageConstant,
		zap.String(logFieldCommandConstant, request.Command.String()),
		zap.String(logFieldSourceConstant, source.description),
		zap.Int(logFieldJobsConstant, configuration.Jobs),
	)

	_, runError := runner.Run(command.Context(), request, source.repositories)
	return runError
}

func addCatalogFlags(command *cobra.Command) {
	command.Flags().StringP(catalogFileFlagName, catalogFileFlagShorthand, "", catalogFileFlagUsage)
	command.Flags().StringSlice(groupFlagName, nil, groupFlagUsage)
}

func requireNoPositionalArguments(command *cobra.Command, arguments []string) error {
	if len(arguments) == 0 {
		return nil
	}
	return repoerrors.NewArgumentError(repoerrors.ArgumentMalformed, fmt.Sprintf(unexpectedArgumentsDetailTemplate, command.Name(), strings.Join(arguments, " ")), nil)
}

