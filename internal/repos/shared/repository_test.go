package shared_test

import (
	"bytes"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/multigit/internal/repos/shared"
)

func TestRepositoryIdentity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		repository shared.Repository
		expected   string
	}{
		{
			name:       "catalog_repository_uses_group_and_name",
			repository: shared.NewCatalogRepository("/ws", "core", "lib", "u1"),
			expected:   "core/lib",
		},
		{
			name:       "discovered_repository_uses_directory",
			repository: shared.NewDiscoveredRepository("/root/B/"),
			expected:   "/root/B",
		},
		{
			name:       "name_only_repository",
			repository: shared.Repository{Name: "standalone"},
			expected:   "standalone",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, testCase.repository.Identity())
		})
	}
}

func TestNewCatalogRepositoryJoinsWorkingDirectoryGroupAndName(t *testing.T) {
	t.Parallel()

	repository := shared.NewCatalogRepository("/ws", "core", "app", "git@example.com:core/app.git")

	require.Equal(t, filepath.Join("/ws", "core", "app"), repository.Directory)
	require.Equal(t, "git@example.com:core/app.git", repository.RemoteURL)
	require.Equal(t, filepath.Join("/ws", "core", "app", ".git"), repository.MarkerPath())
}

func TestNewDiscoveredRepositoryLeavesURLEmpty(t *testing.T) {
	t.Parallel()

	repository := shared.NewDiscoveredRepository("/root/tools/cli")

	require.Equal(t, "cli", repository.Name)
	require.Empty(t, repository.Group)
	require.Empty(t, repository.RemoteURL)
}

func TestWriterReporterSerializesConcurrentWrites(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	reporter := shared.NewWriterReporter(&buffer)

	var waitGroup sync.WaitGroup
	for index := 0; index < 20; index++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			reporter.Printf("line %s\n", "value")
		}()
	}
	waitGroup.Wait()

	require.Equal(t, 20, bytes.Count(buffer.Bytes(), []byte("line value\n")))
}
