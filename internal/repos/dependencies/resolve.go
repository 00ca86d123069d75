package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/multigit/internal/execshell"
	"github.com/temirov/multigit/internal/repos/discovery"
	repoerrors "github.com/temirov/multigit/internal/repos/errors"
	"github.com/temirov/multigit/internal/repos/filesystem"
	"github.com/temirov/multigit/internal/repos/shared"
)

const unreadableDirectoryReportTemplateConstant = "Error reading directory! '%s'\n"

// GitExecutorSettings describes how a default git executor is built.
type GitExecutorSettings struct {
	Executable string
	Observer   execshell.CommandEventObserver
}

// ResolveRepositoryScanner returns the provided scanner or a filesystem-backed default logging to logger.
func ResolveRepositoryScanner(existing shared.RepositoryScanner, logger *zap.Logger, reporter shared.Reporter) shared.RepositoryScanner {
	if existing != nil {
		return existing
	}
	options := []discovery.DiscovererOption{discovery.WithLogger(logger)}
	if reporter != nil {
		options = append(options, discovery.WithDiscoveryErrorHandler(func(discoveryError repoerrors.DiscoveryIOError) {
			reporter.Printf(unreadableDirectoryReportTemplateConstant, discoveryError.Directory)
		}))
	}
	return discovery.NewFilesystemRepositoryDiscoverer(options...)
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger, settings GitExecutorSettings) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	options := []execshell.ExecutorOption{execshell.WithGitExecutable(settings.Executable)}
	if settings.Observer != nil {
		options = append(options, execshell.WithCommandEventObserver(settings.Observer))
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), options...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}
