package discovery

import (
	"context"
	"io/fs"
	"iter"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	repoerrors "github.com/temirov/multigit/internal/repos/errors"
	"github.com/temirov/multigit/internal/repos/filesystem"
	"github.com/temirov/multigit/internal/repos/shared"
)

const (
	unreadableDirectoryMessageConstant = "skipping unreadable directory"
	logFieldDirectoryConstant          = "directory"
)

// DirectoryReader lists the entries of a directory.
type DirectoryReader interface {
	ReadDir(path string) ([]fs.DirEntry, error)
}

// DiscoveryErrorHandler receives directories skipped because they could not be read.
type DiscoveryErrorHandler func(repoerrors.DiscoveryIOError)

// FilesystemRepositoryDiscoverer locates git repositories on disk.
type FilesystemRepositoryDiscoverer struct {
	directoryReader DirectoryReader
	logger          *zap.Logger
	errorHandler    DiscoveryErrorHandler
}

var (
	_ shared.RepositoryScanner    = (*FilesystemRepositoryDiscoverer)(nil)
	_ shared.RepositoryDiscoverer = (*FilesystemRepositoryDiscoverer)(nil)
)

// DiscovererOption customizes a FilesystemRepositoryDiscoverer.
type DiscovererOption func(*FilesystemRepositoryDiscoverer)

// WithDirectoryReader replaces the operating system directory reader.
func WithDirectoryReader(directoryReader DirectoryReader) DiscovererOption {
	return func(discoverer *FilesystemRepositoryDiscoverer) {
		if directoryReader != nil {
			discoverer.directoryReader = directoryReader
		}
	}
}

// WithLogger routes warnings about unreadable directories to logger.
func WithLogger(logger *zap.Logger) DiscovererOption {
	return func(discoverer *FilesystemRepositoryDiscoverer) {
		if logger != nil {
			discoverer.logger = logger
		}
	}
}

// WithDiscoveryErrorHandler registers a callback for skipped directories.
func WithDiscoveryErrorHandler(handler DiscoveryErrorHandler) DiscovererOption {
	return func(discoverer *FilesystemRepositoryDiscoverer) {
		discoverer.errorHandler = handler
	}
}

// NewFilesystemRepositoryDiscoverer constructs a repository discoverer backed by the operating system.
func NewFilesystemRepositoryDiscoverer(options ...DiscovererOption) *FilesystemRepositoryDiscoverer {
	discoverer := &FilesystemRepositoryDiscoverer{
		directoryReader: filesystem.OSFileSystem{},
		logger:          zap.NewNop(),
	}
	for _, option := range options {
		if option != nil {
			option(discoverer)
		}
	}
	return discoverer
}

// Scan yields the root of every repository below rootDirectory, depth-first in
// directory listing order. The sequence is lazy: stopping iteration stops the
// filesystem traversal, as does cancelling executionContext.
func (discoverer *FilesystemRepositoryDiscoverer) Scan(executionContext context.Context, rootDirectory string) iter.Seq[string] {
	return func(yield func(string) bool) {
		discoverer.scanDirectory(executionContext, filepath.Clean(rootDirectory), yield)
	}
}

// DiscoverRepositories collects the repositories below every root, dropping duplicates.
func (discoverer *FilesystemRepositoryDiscoverer) DiscoverRepositories(roots []string) ([]string, error) {
	seen := make(map[string]struct{})
	var repositories []string

	for _, root := range roots {
		for repositoryPath := range discoverer.Scan(context.Background(), root) {
			if _, alreadySeen := seen[repositoryPath]; alreadySeen {
				continue
			}
			seen[repositoryPath] = struct{}{}
			repositories = append(repositories, repositoryPath)
		}
	}

	sort.Strings(repositories)
	return repositories, nil
}

// scanDirectory reports whether the traversal should continue.
func (discoverer *FilesystemRepositoryDiscoverer) scanDirectory(executionContext context.Context, directory string, yield func(string) bool) bool {
	if executionContext.Err() != nil {
		return false
	}

	entries, readError := discoverer.directoryReader.ReadDir(directory)
	if readError != nil {
		discoverer.reportUnreadableDirectory(directory, readError)
		return true
	}

	subdirectories := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if entry.Name() == shared.GitMetadataDirectoryNameConstant {
			return yield(directory)
		}
		subdirectories = append(subdirectories, filepath.Join(directory, entry.Name()))
	}

	for _, subdirectory := range subdirectories {
		if !discoverer.scanDirectory(executionContext, subdirectory, yield) {
			return false
		}
	}
	return true
}

func (discoverer *FilesystemRepositoryDiscoverer) reportUnreadableDirectory(directory string, readError error) {
	discoveryError := repoerrors.DiscoveryIOError{Directory: directory, Cause: readError}
	discoverer.logger.Warn(unreadableDirectoryMessageConstant, zap.String(logFieldDirectoryConstant, directory), zap.Error(readError))
	if discoverer.errorHandler != nil {
		discoverer.errorHandler(discoveryError)
	}
}
