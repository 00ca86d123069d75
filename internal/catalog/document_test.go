package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/multigit/internal/catalog"
	repoerrors "github.com/temirov/multigit/internal/repos/errors"
	"github.com/temirov/multigit/internal/repos/shared"
)

const (
	workspaceDirectory        = "/ws"
	catalogPath               = "catalog.yml"
	coreCatalogContents       = "repos:\n  core:\n    lib:\n      url: u1\n    app:\n      url: u2\n"
	multiGroupCatalogContents = "repos:\n  tools:\n    cli:\n      url: u3\n  core:\n    lib:\n      url: u1\n"
	jsonCatalogContents       = `{"repos": {"core": {"lib": {"url": "u1"}}}}`
	catalogFilePermissions    = 0o600
)

func materializeAll(testInstance *testing.T, document catalog.Document, groups ...string) []shared.Repository {
	testInstance.Helper()
	sequence, materializeError := catalog.Materialize(document, workspaceDirectory, groups...)
	require.NoError(testInstance, materializeError)

	var repositories []shared.Repository
	for repository := range sequence {
		repositories = append(repositories, repository)
	}
	return repositories
}

func TestMaterializeYieldsCatalogEntries(testInstance *testing.T) {
	document, parseError := catalog.Parse([]byte(coreCatalogContents), catalogPath)
	require.NoError(testInstance, parseError)

	repositories := materializeAll(testInstance, document)
	require.ElementsMatch(testInstance, []shared.Repository{
		{Name: "lib", Group: "core", Directory: filepath.Join(workspaceDirectory, "core", "lib"), RemoteURL: "u1"},
		{Name: "app", Group: "core", Directory: filepath.Join(workspaceDirectory, "core", "app"), RemoteURL: "u2"},
	}, repositories)
}

func TestMaterializeOrdersGroupsAndNames(testInstance *testing.T) {
	document, parseError := catalog.Parse([]byte(multiGroupCatalogContents+"    app:\n      url: u2\n"), catalogPath)
	require.NoError(testInstance, parseError)

	var identities []string
	for _, repository := range materializeAll(testInstance, document) {
		identities = append(identities, repository.Identity())
	}
	require.Equal(testInstance, []string{"core/app", "core/lib", "tools/cli"}, identities)
}

func TestMaterializeFiltersGroups(testInstance *testing.T) {
	document, parseError := catalog.Parse([]byte(multiGroupCatalogContents), catalogPath)
	require.NoError(testInstance, parseError)

	repositories := materializeAll(testInstance, document, "tools", "tools")
	require.Len(testInstance, repositories, 1)
	require.Equal(testInstance, "tools/cli", repositories[0].Identity())

	_, materializeError := catalog.Materialize(document, workspaceDirectory, "missing")
	var argumentError repoerrors.ArgumentError
	require.ErrorAs(testInstance, materializeError, &argumentError)
	require.Equal(testInstance, repoerrors.ArgumentMalformed, argumentError.Kind)
}

func TestMaterializeStopsWhenConsumerBreaks(testInstance *testing.T) {
	document, parseError := catalog.Parse([]byte(coreCatalogContents), catalogPath)
	require.NoError(testInstance, parseError)

	sequence, materializeError := catalog.Materialize(document, workspaceDirectory)
	require.NoError(testInstance, materializeError)

	consumed := 0
	for range sequence {
		consumed++
		break
	}
	require.Equal(testInstance, 1, consumed)
}

func TestMaterializeRejectsDocumentWithoutRepos(testInstance *testing.T) {
	sequence, materializeError := catalog.Materialize(catalog.Document{}, workspaceDirectory)
	require.Nil(testInstance, sequence)

	var catalogError repoerrors.InvalidCatalogError
	require.ErrorAs(testInstance, materializeError, &catalogError)
}

func TestParseClassifiesInvalidDocuments(testInstance *testing.T) {
	testCases := []struct {
		name     string
		contents string
	}{
		{name: "missing_repos", contents: "other:\n  core: {}\n"},
		{name: "null_repos", contents: "repos:\n"},
		{name: "empty_document", contents: ""},
		{name: "malformed_yaml", contents: "repos: [unterminated\n"},
		{name: "wrong_shape", contents: "repos:\n  - core\n"},
		{name: "duplicate_group", contents: "repos:\n  core: {}\n  core: {}\n"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, parseError := catalog.Parse([]byte(testCase.contents), catalogPath)
			var catalogError repoerrors.InvalidCatalogError
			require.ErrorAs(testInstance, parseError, &catalogError)
			require.Equal(testInstance, catalogPath, catalogError.Path)
		})
	}
}

func TestParseAcceptsJSON(testInstance *testing.T) {
	document, parseError := catalog.Parse([]byte(jsonCatalogContents), catalogPath)
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, []string{"core"}, document.Groups())
	require.Equal(testInstance, "u1", document.Repositories["core"]["lib"].URL)
}

func TestLoadReadsCatalogFile(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	filePath := filepath.Join(temporaryDirectory, catalogPath)
	require.NoError(testInstance, os.WriteFile(filePath, []byte(coreCatalogContents), catalogFilePermissions))

	document, loadError := catalog.Load(filePath)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, filePath, document.Path)
	require.Len(testInstance, document.Repositories["core"], 2)
}

func TestLoadReportsMissingFile(testInstance *testing.T) {
	missingPath := filepath.Join(testInstance.TempDir(), catalogPath)

	_, loadError := catalog.Load(missingPath)
	var catalogError repoerrors.InvalidCatalogError
	require.ErrorAs(testInstance, loadError, &catalogError)
	require.Contains(testInstance, catalogError.Error(), "file not found")
	require.ErrorIs(testInstance, loadError, os.ErrNotExist)
}

func TestResolvePath(testInstance *testing.T) {
	testCases := []struct {
		name        string
		catalogPath string
		expected    string
	}{
		{name: "default", catalogPath: " ", expected: filepath.Join(workspaceDirectory, catalog.DefaultCatalogFileNameConstant)},
		{name: "relative", catalogPath: "nested/repos.yml", expected: filepath.Join(workspaceDirectory, "nested", "repos.yml")},
		{name: "absolute", catalogPath: "/etc/repos.yml", expected: "/etc/repos.yml"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, catalog.ResolvePath(workspaceDirectory, testCase.catalogPath))
		})
	}
}
