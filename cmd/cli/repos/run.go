package repos

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/multigit/internal/batch"
	repoerrors "github.com/temirov/multigit/internal/repos/errors"
	"github.com/temirov/multigit/internal/utils/flags"
)

const (
	runUseConstant           = "run <clone|pull>"
	runShortDescription      = "Run clone or pull across the catalog"
	runLongDescription       = "run applies the selected command to every catalog repository. It is equivalent to the clone and pull subcommands."
	runSelectorDescription   = "Command applied to each catalog repository."
	runSelectorMissingDetail = "a command is required: %s"
	runTooManyDetailTemplate = "expected a single command, got %d: %s"
)

// RunCommandBuilder assembles the run command with its positional command selector.
type RunCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Collaborators         BatchCollaborators
}

// Build constructs the run command.
func (builder *RunCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:       runUseConstant,
		Short:     runShortDescription,
		Long:      runLongDescription + "\n\nCommand: " + flags.FormatChoiceUsage("", selectorNames(), runSelectorDescription),
		Args:      requireSingleSelector,
		ValidArgs: selectorNames(),
		RunE:      builder.run,
	}
	addCatalogFlags(command)
	return command, nil
}

func (builder *RunCommandBuilder) run(command *cobra.Command, arguments []string) error {
	selected, selectorError := batch.ParseSelector(arguments[0])
	if selectorError != nil {
		return selectorError
	}
	return runCatalogCommand(command, builder.LoggerProvider, builder.ConfigurationProvider, builder.Collaborators, selected)
}

func requireSingleSelector(command *cobra.Command, arguments []string) error {
	switch len(arguments) {
	case 0:
		return repoerrors.NewArgumentError(repoerrors.ArgumentMissing, fmt.Sprintf(runSelectorMissingDetail, strings.Join(selectorNames(), ", ")), nil)
	case 1:
		return nil
	default:
		return repoerrors.NewArgumentError(repoerrors.ArgumentMalformed, fmt.Sprintf(runTooManyDetailTemplate, len(arguments), strings.Join(arguments, " ")), nil)
	}
}

func selectorNames() []string {
	names := make([]string, 0, len(batch.SelectorCommands()))
	for _, command := range batch.SelectorCommands() {
		names = append(names, command.String())
	}
	return names
}
