package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/multigit/internal/utils/path"
)

const testHomeDirectoryConstant = "/home/developer"

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name          string
		candidatePath string
		expectedPath  string
	}{
		{name: "bare_tilde", candidatePath: "~", expectedPath: testHomeDirectoryConstant},
		{name: "tilde_prefix", candidatePath: "~/src/repos.yml", expectedPath: filepath.Join(testHomeDirectoryConstant, "src", "repos.yml")},
		{name: "other_user", candidatePath: "~other/src", expectedPath: "~other/src"},
		{name: "relative", candidatePath: " workspace ", expectedPath: "workspace"},
		{name: "absolute", candidatePath: "/srv/git", expectedPath: "/srv/git"},
	}

	lookups := 0
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		lookups++
		return testHomeDirectoryConstant, nil
	})

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.candidatePath))
		})
	}
	require.Equal(testInstance, 1, lookups)
}

func TestHomeExpanderKeepsPathWhenHomeUnknown(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New("no home")
	})
	require.Equal(testInstance, "~/repos.yml", expander.Expand("~/repos.yml"))
}
