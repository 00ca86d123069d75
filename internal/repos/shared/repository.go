package shared

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// GitMetadataDirectoryNameConstant is the marker directory identifying a repository root.
	GitMetadataDirectoryNameConstant = ".git"

	repositoryIdentityTemplateConstant = "%s/%s"
	repositoryStringTemplateConstant   = "%s:%s - %s - %s"
)

// Repository is the unit of work processed by the batch runner.
type Repository struct {
	Name      string
	Group     string
	Directory string
	RemoteURL string
}

// NewDiscoveredRepository describes a repository found by scanning the filesystem.
func NewDiscoveredRepository(directory string) Repository {
	cleanedDirectory := filepath.Clean(directory)
	return Repository{
		Name:      filepath.Base(cleanedDirectory),
		Directory: cleanedDirectory,
	}
}

// NewCatalogRepository describes a repository declared in a catalog under workingDirectory/group/name.
func NewCatalogRepository(workingDirectory string, group string, name string, remoteURL string) Repository {
	return Repository{
		Name:      name,
		Group:     group,
		Directory: filepath.Join(workingDirectory, group, name),
		RemoteURL: remoteURL,
	}
}

// Identity returns the label used in reports and logs.
func (repository Repository) Identity() string {
	if len(strings.TrimSpace(repository.Group)) == 0 {
		if len(repository.Directory) > 0 {
			return repository.Directory
		}
		return repository.Name
	}
	return fmt.Sprintf(repositoryIdentityTemplateConstant, repository.Group, repository.Name)
}

// MarkerPath returns the location of the repository marker directory.
func (repository Repository) MarkerPath() string {
	return filepath.Join(repository.Directory, GitMetadataDirectoryNameConstant)
}

func (repository Repository) String() string {
	return fmt.Sprintf(repositoryStringTemplateConstant, repository.Name, repository.Group, repository.Directory, repository.RemoteURL)
}
