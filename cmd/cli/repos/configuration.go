package repos

import (
	"strings"

	"github.com/temirov/multigit/internal/catalog"
)

const (
	configurationGitExecutableKeyConstant  = "git_executable"
	configurationCatalogFileKeyConstant    = "catalog_file"
	configurationGroupsKeyConstant         = "groups"
	configurationJobsKeyConstant           = "jobs"
	configurationFailFastKeyConstant       = "fail_fast"
	configurationIgnoreFailuresKeyConstant = "ignore_failures"
	configurationProgressKeyConstant       = "progress"
	defaultGitExecutableConstant           = "git"
	defaultJobsConstant                    = 1
)

// BatchConfiguration describes the settings shared by clone, pull, exec, and run.
type BatchConfiguration struct {
	GitExecutable  string   `mapstructure:"git_executable"`
	CatalogFile    string   `mapstructure:"catalog_file"`
	Groups         []string `mapstructure:"groups"`
	Jobs           int      `mapstructure:"jobs"`
	FailFast       bool     `mapstructure:"fail_fast"`
	IgnoreFailures bool     `mapstructure:"ignore_failures"`
	Progress       bool     `mapstructure:"progress"`
}

// DefaultBatchConfiguration returns baseline batch settings.
func DefaultBatchConfiguration() BatchConfiguration {
	return BatchConfiguration{
		GitExecutable: defaultGitExecutableConstant,
		CatalogFile:   catalog.DefaultCatalogFileNameConstant,
		Groups:        []string{},
		Jobs:          defaultJobsConstant,
	}
}

// DefaultConfigurationValues produces Viper defaults for batch settings under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultBatchConfiguration()
	return map[string]any{
		rootKey + "." + configurationGitExecutableKeyConstant:  defaults.GitExecutable,
		rootKey + "." + configurationCatalogFileKeyConstant:    defaults.CatalogFile,
		rootKey + "." + configurationGroupsKeyConstant:         defaults.Groups,
		rootKey + "." + configurationJobsKeyConstant:           defaults.Jobs,
		rootKey + "." + configurationFailFastKeyConstant:       defaults.FailFast,
		rootKey + "." + configurationIgnoreFailuresKeyConstant: defaults.IgnoreFailures,
		rootKey + "." + configurationProgressKeyConstant:       defaults.Progress,
	}
}

// sanitize trims user input and restores defaults for blank or out of range values.
func (configuration BatchConfiguration) sanitize() BatchConfiguration {
	defaults := DefaultBatchConfiguration()
	sanitized := configuration

	sanitized.GitExecutable = repositoryHomeDirectoryExpander.Expand(configuration.GitExecutable)
	if len(sanitized.GitExecutable) == 0 {
		sanitized.GitExecutable = defaults.GitExecutable
	}

	sanitized.CatalogFile = repositoryHomeDirectoryExpander.Expand(configuration.CatalogFile)
	if len(sanitized.CatalogFile) == 0 {
		sanitized.CatalogFile = defaults.CatalogFile
	}

	sanitized.Groups = make([]string, 0, len(configuration.Groups))
	for _, group := range configuration.Groups {
		if trimmedGroup := strings.TrimSpace(group); len(trimmedGroup) > 0 {
			sanitized.Groups = append(sanitized.Groups, trimmedGroup)
		}
	}

	if sanitized.Jobs < defaultJobsConstant {
		sanitized.Jobs = defaults.Jobs
	}
	return sanitized
}
