package licenses

import (
	"strings"

	"github.com/temirov/licenses-ci/internal/licenses"
)

const (
	defaultCommitMessageConstant               = "Auto-update license files"
	commandConfigurationKeyConstant            = "command"
	configFileConfigurationKeyConstant         = "config_file"
	commitMessageConfigurationKeyConstant      = "commit_message"
	pullRequestCommentConfigurationKeyConstant = "pr_comment"
	githubTokenConfigurationKeyConstant        = "github_token"
	repositoryConfigurationKeyConstant         = "repository"
	actorConfigurationKeyConstant              = "actor"
	branchConfigurationKeyConstant             = "branch"
	workingDirectoryConfigurationKeyConstant   = "working_directory"
	configurationKeySeparatorConstant          = "."
)

// CommandConfiguration captures the inputs shared by the cache and status commands.
type CommandConfiguration struct {
	Command            string `mapstructure:"command"`
	ConfigFile         string `mapstructure:"config_file"`
	CommitMessage      string `mapstructure:"commit_message"`
	PullRequestComment string `mapstructure:"pr_comment"`
	GitHubToken        string `mapstructure:"github_token"`
	Repository         string `mapstructure:"repository"`
	Actor              string `mapstructure:"actor"`
	Branch             string `mapstructure:"branch"`
	WorkingDirectory   string `mapstructure:"working_directory"`
}

// DefaultCommandConfiguration provides the default inputs.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Command:       licenses.DefaultToolCommand,
		CommitMessage: defaultCommitMessageConstant,
	}
}

// DefaultConfigurationValues returns the default inputs keyed under prefix for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		qualifiedKey(prefix, commandConfigurationKeyConstant):            defaults.Command,
		qualifiedKey(prefix, configFileConfigurationKeyConstant):         defaults.ConfigFile,
		qualifiedKey(prefix, commitMessageConfigurationKeyConstant):      defaults.CommitMessage,
		qualifiedKey(prefix, pullRequestCommentConfigurationKeyConstant): defaults.PullRequestComment,
		qualifiedKey(prefix, githubTokenConfigurationKeyConstant):        defaults.GitHubToken,
		qualifiedKey(prefix, repositoryConfigurationKeyConstant):         defaults.Repository,
		qualifiedKey(prefix, actorConfigurationKeyConstant):              defaults.Actor,
		qualifiedKey(prefix, branchConfigurationKeyConstant):             defaults.Branch,
		qualifiedKey(prefix, workingDirectoryConfigurationKeyConstant):   defaults.WorkingDirectory,
	}
}

// EnvironmentAliases maps configuration keys under prefix to the INPUT_* variables exported for action inputs.
func EnvironmentAliases(prefix string) map[string][]string {
	return map[string][]string{
		qualifiedKey(prefix, githubTokenConfigurationKeyConstant):        {"INPUT_GITHUB_TOKEN"},
		qualifiedKey(prefix, commitMessageConfigurationKeyConstant):      {"INPUT_COMMIT_MESSAGE"},
		qualifiedKey(prefix, pullRequestCommentConfigurationKeyConstant): {"INPUT_PR_COMMENT"},
		qualifiedKey(prefix, commandConfigurationKeyConstant):            {"INPUT_COMMAND"},
		qualifiedKey(prefix, configFileConfigurationKeyConstant):         {"INPUT_CONFIG_FILE"},
	}
}

// Sanitize trims values and restores defaults for blank required settings.
// The commit message and pull request comment keep their inner whitespace.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := CommandConfiguration{
		Command:            strings.TrimSpace(configuration.Command),
		ConfigFile:         strings.TrimSpace(configuration.ConfigFile),
		CommitMessage:      configuration.CommitMessage,
		PullRequestComment: configuration.PullRequestComment,
		GitHubToken:        strings.TrimSpace(configuration.GitHubToken),
		Repository:         strings.TrimSpace(configuration.Repository),
		Actor:              strings.TrimSpace(configuration.Actor),
		Branch:             strings.TrimSpace(configuration.Branch),
		WorkingDirectory:   strings.TrimSpace(configuration.WorkingDirectory),
	}
	if len(sanitized.Command) == 0 {
		sanitized.Command = defaults.Command
	}
	return sanitized
}

func qualifiedKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}
