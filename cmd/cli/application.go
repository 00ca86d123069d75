package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/multigit/cmd/cli/repos"
	repoerrors "github.com/temirov/multigit/internal/repos/errors"
	"github.com/temirov/multigit/internal/utils"
	"github.com/temirov/multigit/internal/utils/flags"
)

const (
	applicationNameConstant                 = "multigit"
	applicationShortDescriptionConstant     = "Run git clone, pull, or any git command across many repositories"
	applicationLongDescriptionConstant      = "multigit treats a set of git repositories as one workspace. Repositories come from a catalog file (.git-repos.yml) grouped by name, or from a recursive scan of a directory tree."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	gitExecutableFlagNameConstant           = "git"
	gitExecutableFlagShorthandConstant      = "g"
	gitExecutableFlagUsageConstant          = "Git executable to run (resolved through PATH)."
	jobsFlagNameConstant                    = "jobs"
	jobsFlagShorthandConstant               = "j"
	jobsFlagUsageConstant                   = "Number of repositories processed concurrently."
	failFastFlagNameConstant                = "fail-fast"
	failFastFlagUsageConstant               = "Stop dispatching repositories after the first failure."
	ignoreFailuresFlagNameConstant          = "ignore-failures"
	ignoreFailuresFlagUsageConstant         = "Exit successfully even when some repositories failed."
	progressFlagNameConstant                = "progress"
	progressFlagUsageConstant               = "Draw a progress bar on a terminal standard error."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	batchConfigurationKeyConstant           = "batch"
	environmentPrefixConstant               = "MULTIGIT"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationDirectoryNameConstant      = "multigit"
	defaultConfigurationSearchPathConstant  = "."
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "%w: unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "%w: unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	unknownCommandDetailTemplateConstant    = "unknown command %q for %s"
)

// ErrSetupFailed marks failures to load configuration or construct the logger.
var ErrSetupFailed = errors.New("setup failed")

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Batch  repos.BatchConfiguration       `mapstructure:"batch"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationOption customizes an Application during construction.
type ApplicationOption func(*Application)

// WithBatchCollaborators overrides the git executor, filesystem, scanner, or working directory used by batch commands.
func WithBatchCollaborators(collaborators repos.BatchCollaborators) ApplicationOption {
	return func(application *Application) {
		application.collaborators = collaborators
	}
}

// WithDiagnosticOutput redirects log output away from standard error.
func WithDiagnosticOutput(output io.Writer) ApplicationOption {
	return func(application *Application) {
		application.loggerFactory = utils.NewLoggerFactory(utils.NewSynchronizedWriter(output))
	}
}

// WithConfigurationSearchPaths replaces the directories probed for config.yaml.
func WithConfigurationSearchPaths(searchPaths ...string) ApplicationOption {
	return func(application *Application) {
		application.searchPaths = append([]string{}, searchPaths...)
	}
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	collaborators         repos.BatchCollaborators
	searchPaths           []string
	flagValues            applicationFlagValues
}

type applicationFlagValues struct {
	configurationFilePath string
	logLevel              string
	logFormat             string
	gitExecutable         string
	jobs                  int
	failFast              bool
	ignoreFailures        bool
	progress              bool
}

type commandBuilder interface {
	Build() (*cobra.Command, error)
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication(options ...ApplicationOption) (*Application, error) {
	application := &Application{
		loggerFactory: utils.NewLoggerFactory(utils.NewSynchronizedWriter(os.Stderr)),
		logger:        zap.NewNop(),
		searchPaths:   defaultConfigurationSearchPaths(),
	}
	for _, option := range options {
		if option != nil {
			option(application)
		}
	}

	application.configurationLoader = utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		application.searchPaths,
	)
	application.configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	defaults := repos.DefaultBatchConfiguration()
	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          rejectUnknownCommands,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}
	cobraCommand.SetFlagErrorFunc(classifyFlagError)

	persistentFlags := cobraCommand.PersistentFlags()
	persistentFlags.StringVar(&application.flagValues.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	flags.AddChoiceFlag(persistentFlags, &application.flagValues.logLevel, logLevelFlagNameConstant, string(utils.LogLevelWarn), utils.LogLevels(), logLevelFlagUsageConstant)
	flags.AddChoiceFlag(persistentFlags, &application.flagValues.logFormat, logFormatFlagNameConstant, string(utils.LogFormatConsole), utils.LogFormats(), logFormatFlagUsageConstant)
	persistentFlags.StringVarP(&application.flagValues.gitExecutable, gitExecutableFlagNameConstant, gitExecutableFlagShorthandConstant, defaults.GitExecutable, gitExecutableFlagUsageConstant)
	persistentFlags.IntVarP(&application.flagValues.jobs, jobsFlagNameConstant, jobsFlagShorthandConstant, defaults.Jobs, jobsFlagUsageConstant)
	persistentFlags.BoolVar(&application.flagValues.failFast, failFastFlagNameConstant, false, failFastFlagUsageConstant)
	persistentFlags.BoolVar(&application.flagValues.ignoreFailures, ignoreFailuresFlagNameConstant, false, ignoreFailuresFlagUsageConstant)
	persistentFlags.BoolVar(&application.flagValues.progress, progressFlagNameConstant, false, progressFlagUsageConstant)

	loggerProvider := func() *zap.Logger {
		return application.logger
	}
	configurationProvider := func() repos.BatchConfiguration {
		return application.configuration.Batch
	}

	builders := []commandBuilder{
		&repos.CloneCommandBuilder{LoggerProvider: loggerProvider, ConfigurationProvider: configurationProvider, Collaborators: application.collaborators},
		&repos.PullCommandBuilder{LoggerProvider: loggerProvider, ConfigurationProvider: configurationProvider, Collaborators: application.collaborators},
		&repos.ExecCommandBuilder{LoggerProvider: loggerProvider, ConfigurationProvider: configurationProvider, Collaborators: application.collaborators},
		&repos.RunCommandBuilder{LoggerProvider: loggerProvider, ConfigurationProvider: configurationProvider, Collaborators: application.collaborators},
	}
	for _, builder := range builders {
		subcommand, buildError := builder.Build()
		if buildError != nil {
			return nil, buildError
		}
		cobraCommand.AddCommand(subcommand)
	}

	application.rootCommand = cobraCommand
	return application, nil
}

// RootCommand exposes the Cobra command hierarchy, mainly for output redirection and argument injection.
func (application *Application) RootCommand() *cobra.Command {
	return application.rootCommand
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute(executionContext context.Context) error {
	executionError := application.rootCommand.ExecuteContext(executionContext)
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute(executionContext context.Context) error {
	application, applicationError := NewApplication()
	if applicationError != nil {
		return applicationError
	}
	return application.Execute(executionContext)
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelWarn),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}
	for configurationKey, configurationValue := range repos.DefaultConfigurationValues(batchConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.flagValues.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, ErrSetupFailed, loadError)
	}
	application.configurationMetadata = loadedConfiguration
	application.applyFlagOverrides(command)

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, ErrSetupFailed, loggerCreationError)
	}
	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)
	return nil
}

func (application *Application) applyFlagOverrides(command *cobra.Command) {
	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.flagValues.logLevel
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.flagValues.logFormat
	}
	if application.persistentFlagChanged(command, gitExecutableFlagNameConstant) {
		application.configuration.Batch.GitExecutable = application.flagValues.gitExecutable
	}
	if application.persistentFlagChanged(command, jobsFlagNameConstant) {
		application.configuration.Batch.Jobs = application.flagValues.jobs
	}
	if application.persistentFlagChanged(command, failFastFlagNameConstant) {
		application.configuration.Batch.FailFast = application.flagValues.failFast
	}
	if application.persistentFlagChanged(command, ignoreFailuresFlagNameConstant) {
		application.configuration.Batch.IgnoreFailures = application.flagValues.ignoreFailures
	}
	if application.persistentFlagChanged(command, progressFlagNameConstant) {
		application.configuration.Batch.Progress = application.flagValues.progress
	}
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}
	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}
	return false
}

func defaultConfigurationSearchPaths() []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, configurationDirectoryNameConstant))
	}
	return searchPaths
}

// classifyFlagError reports flag parsing failures as malformed arguments.
func classifyFlagError(_ *cobra.Command, flagError error) error {
	return repoerrors.NewArgumentError(repoerrors.ArgumentMalformed, flagError.Error(), nil)
}

func rejectUnknownCommands(command *cobra.Command, arguments []string) error {
	if len(arguments) == 0 {
		return nil
	}
	return repoerrors.NewArgumentError(repoerrors.ArgumentMalformed, fmt.Sprintf(unknownCommandDetailTemplateConstant, strings.Join(arguments, " "), command.CommandPath()), nil)
}
