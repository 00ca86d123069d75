package repos

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/multigit/internal/batch"
	repoerrors "github.com/temirov/multigit/internal/repos/errors"
)

const (
	execUseConstant                 = "exec --directory <dir> --command \"<git command>\" [-- extra arguments]"
	execShortDescription            = "Run a git command in every repository below a directory"
	execLongDescription             = "exec recursively scans --directory for git repositories and runs git with the --command arguments inside each one. Arguments after -- are appended verbatim."
	execExampleConstant             = "  multigit exec -d ~/src -c pull\n  multigit exec -d ~/src -c \"log -1\" -- --format=%h"
	execCommandFlagName             = "command"
	execCommandFlagShorthand        = "c"
	execCommandFlagUsage            = "Git arguments to run in each repository, e.g. \"fetch --prune\""
	execDirectoryFlagUsage          = "Directory to scan recursively for repositories"
	execCommandMissingDetail        = "--command is required"
	execArgumentsBeforeDashTemplate = "unexpected arguments before --: %s"
)

// ExecCommandBuilder assembles the exec command.
type ExecCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Collaborators         BatchCollaborators
}

// Build constructs the exec command.
func (builder *ExecCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     execUseConstant,
		Short:   execShortDescription,
		Long:    execLongDescription,
		Example: execExampleConstant,
		Args:    requireArgumentsAfterDash,
		RunE:    builder.run,
	}
	command.Flags().StringP(directoryFlagName, directoryFlagShorthand, "", execDirectoryFlagUsage)
	command.Flags().StringP(execCommandFlagName, execCommandFlagShorthand, "", execCommandFlagUsage)
	return command, nil
}

func (builder *ExecCommandBuilder) run(command *cobra.Command, arguments []string) error {
	directory, _ := command.Flags().GetString(directoryFlagName)
	if len(strings.TrimSpace(directory)) == 0 {
		return repoerrors.NewArgumentError(repoerrors.ArgumentMissing, directoryMissingDetailConstant, nil)
	}

	gitCommand, _ := command.Flags().GetString(execCommandFlagName)
	gitArguments := append(strings.Fields(gitCommand), arguments...)
	if len(gitArguments) == 0 {
		return repoerrors.NewArgumentError(repoerrors.ArgumentMissing, execCommandMissingDetail, nil)
	}

	logger := resolveLogger(builder.LoggerProvider)
	configuration := resolveConfiguration(builder.ConfigurationProvider)

	source, sourceError := builder.Collaborators.scannedRepositories(command, logger, directory)
	if sourceError != nil {
		return sourceError
	}
	return builder.Collaborators.executeBatch(command, logger, configuration, batch.Request{Command: batch.CommandExec, Arguments: gitArguments}, source)
}

// requireArgumentsAfterDash accepts positional arguments only after a literal --.
func requireArgumentsAfterDash(command *cobra.Command, arguments []string) error {
	dashIndex := command.ArgsLenAtDash()
	if dashIndex < 0 {
		dashIndex = len(arguments)
	}
	if dashIndex > 0 {
		return repoerrors.NewArgumentError(repoerrors.ArgumentMalformed, fmt.Sprintf(execArgumentsBeforeDashTemplate, strings.Join(arguments[:dashIndex], " ")), nil)
	}
	return nil
}
