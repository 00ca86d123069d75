package shared

import (
	"context"
	"io/fs"
	"iter"

	"github.com/temirov/multigit/internal/execshell"
)

// FileSystem exposes filesystem operations required by repository services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	MkdirAll(path string, permissions fs.FileMode) error
	ReadDir(path string) ([]fs.DirEntry, error)
	Abs(path string) (string, error)
}

// GitExecutor exposes the subset of shell execution used by repository services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryDiscoverer locates Git repositories for bulk operations.
type RepositoryDiscoverer interface {
	DiscoverRepositories(roots []string) ([]string, error)
}

// RepositoryScanner lazily yields repository roots found below a directory.
type RepositoryScanner interface {
	Scan(executionContext context.Context, rootDirectory string) iter.Seq[string]
}
