package repos

import (
	"github.com/spf13/cobra"

	"github.com/temirov/multigit/internal/batch"
)

const (
	cloneUseConstant      = "clone"
	cloneShortDescription = "Clone catalog repositories that are missing locally"
	cloneLongDescription  = "clone reads the repository catalog and clones every repository whose directory does not contain a git repository yet. Repositories are placed under <working directory>/<group>/<name>."
	cloneExampleConstant  = "  multigit clone\n  multigit clone --repos-file ~/workspace.yml --group core --jobs 4"
)

// CloneCommandBuilder assembles the clone command.
type CloneCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Collaborators         BatchCollaborators
}

// Build constructs the clone command.
func (builder *CloneCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     cloneUseConstant,
		Short:   cloneShortDescription,
		Long:    cloneLongDescription,
		Example: cloneExampleConstant,
		Args:    requireNoPositionalArguments,
		RunE:    builder.run,
	}
	addCatalogFlags(command)
	return command, nil
}

func (builder *CloneCommandBuilder) run(command *cobra.Command, arguments []string) error {
	return runCatalogCommand(command, builder.LoggerProvider, builder.ConfigurationProvider, builder.Collaborators, batch.CommandClone)
}

// runCatalogCommand applies a selector command to every catalog repository.
func runCatalogCommand(command *cobra.Command, loggerProvider LoggerProvider, configurationProvider ConfigurationProvider, collaborators BatchCollaborators, selected batch.Command) error {
	logger := resolveLogger(loggerProvider)
	configuration := resolveConfiguration(configurationProvider)

	source, sourceError := collaborators.catalogRepositories(command, configuration)
	if sourceError != nil {
		return sourceError
	}
	return collaborators.executeBatch(command, logger, configuration, batch.Request{Command: selected}, source)
}
