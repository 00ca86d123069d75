package repos

import (
	"github.com/spf13/cobra"

	"github.com/temirov/multigit/internal/batch"
	repoerrors "github.com/temirov/multigit/internal/repos/errors"
)

const (
	pullUseConstant            = "pull"
	pullShortDescription       = "Pull every repository from the catalog or below a directory"
	pullLongDescription        = "pull runs 'git pull' inside each repository. Repositories come from the catalog, or from a recursive scan when --directory is given. Directories without a git repository are skipped."
	pullExampleConstant        = "  multigit pull\n  multigit pull --directory ~/src --jobs 8"
	pullDirectoryFlagUsage     = "Scan this directory for repositories instead of reading the catalog"
	pullExclusiveSourcesDetail = "--directory cannot be combined with --repos-file or --group"
)

// PullCommandBuilder assembles the pull command.
type PullCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Collaborators         BatchCollaborators
}

// Build constructs the pull command.
func (builder *PullCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     pullUseConstant,
		Short:   pullShortDescription,
		Long:    pullLongDescription,
		Example: pullExampleConstant,
		Args:    requireNoPositionalArguments,
		RunE:    builder.run,
	}
	addCatalogFlags(command)
	command.Flags().StringP(directoryFlagName, directoryFlagShorthand, "", pullDirectoryFlagUsage)
	return command, nil
}

func (builder *PullCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if !command.Flags().Changed(directoryFlagName) {
		return runCatalogCommand(command, builder.LoggerProvider, builder.ConfigurationProvider, builder.Collaborators, batch.CommandPull)
	}

	if command.Flags().Changed(catalogFileFlagName) || command.Flags().Changed(groupFlagName) {
		return repoerrors.NewArgumentError(repoerrors.ArgumentMalformed, pullExclusiveSourcesDetail, nil)
	}

	logger := resolveLogger(builder.LoggerProvider)
	configuration := resolveConfiguration(builder.ConfigurationProvider)

	directory, _ := command.Flags().GetString(directoryFlagName)
	source, sourceError := builder.Collaborators.scannedRepositories(command, logger, directory)
	if sourceError != nil {
		return sourceError
	}
	return builder.Collaborators.executeBatch(command, logger, configuration, batch.Request{Command: batch.CommandPull}, source)
}
