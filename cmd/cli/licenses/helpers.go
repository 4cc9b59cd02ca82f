package licenses

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/licenses-ci/internal/actions"
	"github.com/temirov/licenses-ci/internal/execshell"
	"github.com/temirov/licenses-ci/internal/githubcli"
	"github.com/temirov/licenses-ci/internal/gitrepo"
	"github.com/temirov/licenses-ci/internal/licenses"
	"github.com/temirov/licenses-ci/internal/ui"
	"github.com/temirov/licenses-ci/internal/utils"
)

const (
	branchFlagNameConstant              = "branch"
	branchFlagUsageConstant             = "Branch to operate on; defaults to GITHUB_HEAD_REF or GITHUB_REF."
	repositoryFlagNameConstant          = "repository"
	repositoryFlagUsageConstant         = "Repository in owner/name form; defaults to GITHUB_REPOSITORY."
	actorFlagNameConstant               = "actor"
	actorFlagUsageConstant              = "User asked to review created pull requests; defaults to GITHUB_ACTOR."
	toolCommandFlagNameConstant         = "command"
	toolCommandFlagUsageConstant        = "License tool command line, such as \"bundle exec licensed\"."
	toolConfigFileFlagNameConstant      = "config-file"
	toolConfigFileFlagUsageConstant     = "License tool configuration file; defaults to the first of .licensed.yml, .licensed.yaml, .licensed.json."
	commitMessageFlagNameConstant       = "commit-message"
	commitMessageFlagUsageConstant      = "Commit message for license metadata updates."
	pullRequestCommentFlagNameConstant  = "pr-comment"
	pullRequestCommentFlagUsageConstant = "Text appended to the body of created pull requests."
	workingDirectoryFlagNameConstant    = "working-directory"
	workingDirectoryFlagUsageConstant   = "Repository checkout to operate in; defaults to the current directory."
	logFieldConfigurationFileConstant   = "configuration_file"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandExecutor runs git, the GitHub CLI, and the license tool; execshell.ShellExecutor satisfies it.
type CommandExecutor interface {
	gitrepo.GitExecutor
	githubcli.GitHubCommandExecutor
	licenses.ToolCommandExecutor
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// commandLogger annotates the provided logger with the configuration file attached to the command context.
func commandLogger(command *cobra.Command, provider LoggerProvider) *zap.Logger {
	logger := resolveLogger(provider)
	configurationFilePath, available := utils.NewCommandContextAccessor().ConfigurationFilePath(command.Context())
	if !available || len(configurationFilePath) == 0 {
		return logger
	}
	return logger.With(zap.String(logFieldConfigurationFileConstant, configurationFilePath))
}

// resolveCommandExecutor returns the provided executor or a shell executor; console logging adds a human-readable observer.
func resolveCommandExecutor(existing CommandExecutor, logger *zap.Logger, humanReadableLogging bool) (CommandExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	var observer execshell.CommandEventObserver
	if humanReadableLogging {
		observer = ui.NewConsoleCommandEventLogger(logger)
	}
	shellExecutor, creationError := execshell.NewShellExecutorWithObserver(logger, execshell.NewOSCommandRunner(), observer)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

func resolveHumanReadableLogging(provider func() bool) bool {
	if provider == nil {
		return false
	}
	return provider()
}

func resolveConfiguration(provider func() CommandConfiguration) CommandConfiguration {
	if provider == nil {
		return DefaultCommandConfiguration()
	}
	return provider().Sanitize()
}

func registerToolFlags(command *cobra.Command) {
	command.Flags().String(branchFlagNameConstant, "", branchFlagUsageConstant)
	command.Flags().String(toolCommandFlagNameConstant, "", toolCommandFlagUsageConstant)
	command.Flags().String(toolConfigFileFlagNameConstant, "", toolConfigFileFlagUsageConstant)
	command.Flags().String(workingDirectoryFlagNameConstant, "", workingDirectoryFlagUsageConstant)
}

// applyFlagOverrides copies explicitly set flags over configured values.
func applyFlagOverrides(command *cobra.Command, configuration CommandConfiguration) CommandConfiguration {
	overrides := []struct {
		flagName string
		target   *string
	}{
		{flagName: branchFlagNameConstant, target: &configuration.Branch},
		{flagName: repositoryFlagNameConstant, target: &configuration.Repository},
		{flagName: actorFlagNameConstant, target: &configuration.Actor},
		{flagName: toolCommandFlagNameConstant, target: &configuration.Command},
		{flagName: toolConfigFileFlagNameConstant, target: &configuration.ConfigFile},
		{flagName: commitMessageFlagNameConstant, target: &configuration.CommitMessage},
		{flagName: pullRequestCommentFlagNameConstant, target: &configuration.PullRequestComment},
		{flagName: workingDirectoryFlagNameConstant, target: &configuration.WorkingDirectory},
	}
	for _, override := range overrides {
		flag := command.Flags().Lookup(override.flagName)
		if flag == nil || !flag.Changed {
			continue
		}
		*override.target = flag.Value.String()
	}
	return configuration.Sanitize()
}

func resolveRunContext(lookup actions.EnvironmentLookup, configuration CommandConfiguration) actions.RunContext {
	return actions.ResolveRunContext(lookup).Override(actions.RunContext{
		Repository: configuration.Repository,
		Actor:      configuration.Actor,
		Branch:     configuration.Branch,
	})
}

func toolSettings(configuration CommandConfiguration) licenses.ToolSettings {
	return licenses.ToolSettings{
		Command:           configuration.Command,
		ConfigurationFile: configuration.ConfigFile,
		WorkingDirectory:  strings.TrimSpace(configuration.WorkingDirectory),
	}
}
