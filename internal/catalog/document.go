package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	repoerrors "github.com/temirov/multigit/internal/repos/errors"
	"github.com/temirov/multigit/internal/repos/shared"
)

const (
	// DefaultCatalogFileNameConstant names the catalog read when no file is specified.
	DefaultCatalogFileNameConstant = ".git-repos.yml"

	catalogNotFoundReasonConstant     = "file not found"
	catalogUnreadableReasonConstant   = "unable to read file"
	catalogMalformedReasonConstant    = "malformed document"
	catalogMissingReposReasonConstant = "missing top-level \"repos\" mapping"
	catalogUnknownGroupReasonConstant = "unknown group %q"
)

// Entry declares a single repository of a catalog group.
type Entry struct {
	URL string `yaml:"url"`
}

// Document is the decoded catalog: group name to repository name to entry.
type Document struct {
	Path         string                      `yaml:"-"`
	Repositories map[string]map[string]Entry `yaml:"repos"`
}

// Load reads and decodes the catalog stored at path.
func Load(path string) (Document, error) {
	contents, readError := os.ReadFile(path)
	if readError != nil {
		reason := catalogUnreadableReasonConstant
		if errors.Is(readError, fs.ErrNotExist) {
			reason = catalogNotFoundReasonConstant
		}
		return Document{}, repoerrors.InvalidCatalogError{Path: path, Reason: reason, Cause: readError}
	}
	return Parse(contents, path)
}

// Parse decodes catalog contents. JSON documents are accepted as YAML.
func Parse(contents []byte, path string) (Document, error) {
	document := Document{Path: path}

	decoder := yaml.NewDecoder(bytes.NewReader(contents))
	decodeError := decoder.Decode(&document)
	if decodeError != nil && !errors.Is(decodeError, io.EOF) {
		return Document{}, repoerrors.InvalidCatalogError{Path: path, Reason: catalogMalformedReasonConstant, Cause: decodeError}
	}
	document.Path = path

	if document.Repositories == nil {
		return Document{}, repoerrors.InvalidCatalogError{Path: path, Reason: catalogMissingReposReasonConstant}
	}
	return document, nil
}

// Groups returns the group names in sorted order.
func (document Document) Groups() []string {
	return sortedKeys(document.Repositories)
}

// Materialize yields one repository per catalog entry, located at
// workingDirectory/group/name. When groups are provided only those groups are
// materialized; naming a group absent from the catalog is an error.
func Materialize(document Document, workingDirectory string, groups ...string) (iter.Seq[shared.Repository], error) {
	if document.Repositories == nil {
		return nil, repoerrors.InvalidCatalogError{Path: document.Path, Reason: catalogMissingReposReasonConstant}
	}

	selectedGroups, selectionError := selectGroups(document, groups)
	if selectionError != nil {
		return nil, selectionError
	}

	return func(yield func(shared.Repository) bool) {
		for _, groupName := range selectedGroups {
			entries := document.Repositories[groupName]
			for _, repositoryName := range sortedKeys(entries) {
				repository := shared.NewCatalogRepository(workingDirectory, groupName, repositoryName, entries[repositoryName].URL)
				if !yield(repository) {
					return
				}
			}
		}
	}, nil
}

func selectGroups(document Document, requestedGroups []string) ([]string, error) {
	if len(requestedGroups) == 0 {
		return document.Groups(), nil
	}

	seen := make(map[string]struct{}, len(requestedGroups))
	selected := make([]string, 0, len(requestedGroups))
	for _, requestedGroup := range requestedGroups {
		groupName := strings.TrimSpace(requestedGroup)
		if len(groupName) == 0 {
			continue
		}
		if _, exists := document.Repositories[groupName]; !exists {
			return nil, repoerrors.NewArgumentError(repoerrors.ArgumentMalformed, fmt.Sprintf(catalogUnknownGroupReasonConstant, groupName), nil)
		}
		if _, duplicate := seen[groupName]; duplicate {
			continue
		}
		seen[groupName] = struct{}{}
		selected = append(selected, groupName)
	}
	sort.Strings(selected)
	return selected, nil
}

func sortedKeys[Value any](values map[string]Value) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ResolvePath resolves a catalog path relative to workingDirectory.
func ResolvePath(workingDirectory string, catalogPath string) string {
	trimmedPath := strings.TrimSpace(catalogPath)
	if len(trimmedPath) == 0 {
		trimmedPath = DefaultCatalogFileNameConstant
	}
	if filepath.IsAbs(trimmedPath) {
		return filepath.Clean(trimmedPath)
	}
	return filepath.Join(workingDirectory, trimmedPath)
}
