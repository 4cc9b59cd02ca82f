package execshell

import (
	"fmt"
	"net/url"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	allPathsLabelConstant                   = "all changes"
	urlSchemeSeparatorConstant              = "://"
	urlCredentialsSeparatorConstant         = "@"
	pathspecSeparatorConstant               = "--"
)

const (
	gitCheckoutSubcommandNameConstant  = "checkout"
	gitCreateBranchFlagConstant        = "-b"
	gitAddSubcommandNameConstant       = "add"
	gitDiffIndexSubcommandNameConstant = "diff-index"
	gitCommitSubcommandNameConstant    = "commit"
	gitMessageFlagConstant             = "-m"
	gitRemoteSubcommandNameConstant    = "remote"
	gitRemoteAddSubcommandNameConstant = "add"
	gitPushSubcommandNameConstant      = "push"
	githubAPICommandNameConstant       = "api"
	githubMethodFlagConstant           = "-X"
	githubSearchEndpointPrefixConstant = "search/issues"
	githubReviewersEndpointSuffix      = "/requested_reviewers"
	githubPullsEndpointSuffixConstant  = "/pulls"
)

const (
	gitCheckoutStartTemplateConstant                = "Switching %s to branch %s"
	gitCheckoutSuccessTemplateConstant              = "%s now on branch %s"
	gitCheckoutFailureTemplateConstant              = "Failed to switch %s to branch %s (exit code %d%s)"
	gitCheckoutExecutionFailureTemplateConstant     = "Unable to switch %s to branch %s: %s"
	gitBranchCreationStartTemplateConstant          = "Creating branch %s from %s in %s"
	gitBranchCreationSuccessTemplateConstant        = "Created branch %s from %s in %s"
	gitBranchCreationFailureTemplateConstant        = "Failed to create branch %s from %s in %s (exit code %d%s)"
	gitBranchCreationExecutionFailureTemplateConst  = "Unable to create branch %s from %s in %s: %s"
	gitAddStartTemplateConstant                     = "Staging %s in %s"
	gitAddSuccessTemplateConstant                   = "Staged %s in %s"
	gitAddFailureTemplateConstant                   = "Failed to stage %s in %s (exit code %d%s)"
	gitAddExecutionFailureTemplateConstant          = "Unable to stage %s in %s: %s"
	gitDiffIndexStartTemplateConstant               = "Comparing %s against HEAD in %s"
	gitDiffIndexSuccessTemplateConstant             = "No differences in %s against HEAD in %s"
	gitDiffIndexChangedTemplateConstant             = "Detected differences in %s against HEAD in %s"
	gitDiffIndexFailureTemplateConstant             = "Failed to compare %s against HEAD in %s (exit code %d%s)"
	gitDiffIndexExecutionFailureTemplateConstant    = "Unable to compare %s against HEAD in %s: %s"
	gitCommitStartTemplateConstant                  = "Creating commit in %s with message %q"
	gitCommitSuccessTemplateConstant                = "Created commit in %s with message %q"
	gitCommitFailureTemplateConstant                = "Failed to create commit in %s with message %q (exit code %d%s)"
	gitCommitExecutionFailureTemplateConstant       = "Unable to create commit in %s with message %q: %s"
	gitRemoteAddStartTemplateConstant               = "Adding %s remote in %s"
	gitRemoteAddSuccessTemplateConstant             = "Added %s remote in %s"
	gitRemoteAddFailureTemplateConstant             = "Failed to add %s remote in %s (exit code %d%s)"
	gitRemoteAddExecutionFailureTemplateConstant    = "Unable to add %s remote in %s: %s"
	gitPushStartTemplateConstant                    = "Pushing %s to %s from %s"
	gitPushSuccessTemplateConstant                  = "Pushed %s to %s from %s"
	gitPushFailureTemplateConstant                  = "Failed to push %s to %s from %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant         = "Unable to push %s to %s from %s: %s"
	githubSearchStartTemplateConstant               = "Searching open pull requests"
	githubSearchSuccessTemplateConstant             = "Searched open pull requests"
	githubSearchFailureTemplateConstant             = "Failed to search open pull requests (exit code %d%s)"
	githubSearchExecutionFailureTemplateConstant    = "Unable to search open pull requests: %s"
	githubPullCreateStartTemplateConstant           = "Creating pull request on %s"
	githubPullCreateSuccessTemplateConstant         = "Created pull request on %s"
	githubPullCreateFailureTemplateConstant         = "Failed to create pull request on %s (exit code %d%s)"
	githubPullCreateExecutionFailureTemplateConst   = "Unable to create pull request on %s: %s"
	githubReviewRequestStartTemplateConstant        = "Requesting review on %s"
	githubReviewRequestSuccessTemplateConstant      = "Requested review on %s"
	githubReviewRequestFailureTemplateConstant      = "Failed to request review on %s (exit code %d%s)"
	githubReviewRequestExecutionFailureTemplateCons = "Unable to request review on %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) shouldLogStartMessage(command ShellCommand) bool {
	return command.Name != CommandGitHub || !formatter.isGitHubSearch(command.Details.Arguments)
}

func (formatter CommandMessageFormatter) isGitHubSearch(arguments []string) bool {
	return len(arguments) > 1 &&
		strings.TrimSpace(arguments[0]) == githubAPICommandNameConstant &&
		strings.HasPrefix(strings.TrimSpace(arguments[1]), githubSearchEndpointPrefixConstant)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandGitHub:
		return formatter.describeGitHubMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch strings.TrimSpace(command.Details.Arguments[0]) {
	case gitCheckoutSubcommandNameConstant:
		return formatter.describeGitCheckoutMessage(command, result, failure, stage)
	case gitAddSubcommandNameConstant:
		return formatter.describeStagedTemplates(command, result, failure, stage, gitAddStartTemplateConstant, gitAddSuccessTemplateConstant, gitAddFailureTemplateConstant, gitAddExecutionFailureTemplateConstant)
	case gitDiffIndexSubcommandNameConstant:
		if stage == messageStageFailure && result.ExitCode == 1 {
			return fmt.Sprintf(gitDiffIndexChangedTemplateConstant, formatter.describePathspec(command.Details.Arguments), formatter.describeWorkingDirectory(command))
		}
		return formatter.describeStagedTemplates(command, result, failure, stage, gitDiffIndexStartTemplateConstant, gitDiffIndexSuccessTemplateConstant, gitDiffIndexFailureTemplateConstant, gitDiffIndexExecutionFailureTemplateConstant)
	case gitCommitSubcommandNameConstant:
		return formatter.describeGitCommitMessage(command, result, failure, stage)
	case gitRemoteSubcommandNameConstant:
		return formatter.describeGitRemoteMessage(command, result, failure, stage)
	case gitPushSubcommandNameConstant:
		return formatter.describeGitPushMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitCheckoutMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	if containsArgument(arguments, gitCreateBranchFlagConstant) {
		branchName := formatter.ensureValue(findFlagValue(arguments, gitCreateBranchFlagConstant))
		startPoint := formatter.ensureValue(formatter.argumentAtIndex(arguments, 3))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitBranchCreationStartTemplateConstant, branchName, startPoint, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitBranchCreationSuccessTemplateConstant, branchName, startPoint, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitBranchCreationFailureTemplateConstant, branchName, startPoint, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		default:
			return fmt.Sprintf(gitBranchCreationExecutionFailureTemplateConst, branchName, startPoint, workingDirectory, formatter.describeFailure(failure))
		}
	}

	branchName := formatter.ensureValue(formatter.argumentAtIndex(arguments, 1))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCheckoutStartTemplateConstant, workingDirectory, branchName)
	case messageStageSuccess:
		return fmt.Sprintf(gitCheckoutSuccessTemplateConstant, workingDirectory, branchName)
	case messageStageFailure:
		return fmt.Sprintf(gitCheckoutFailureTemplateConstant, workingDirectory, branchName, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(gitCheckoutExecutionFailureTemplateConstant, workingDirectory, branchName, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeStagedTemplates(command ShellCommand, result ExecutionResult, failure error, stage messageStage, startTemplate string, successTemplate string, failureTemplate string, executionFailureTemplate string) string {
	pathspec := formatter.describePathspec(command.Details.Arguments)
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(startTemplate, pathspec, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(successTemplate, pathspec, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(failureTemplate, pathspec, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(executionFailureTemplate, pathspec, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitCommitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commitMessage := findFlagValue(command.Details.Arguments, gitMessageFlagConstant)
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCommitStartTemplateConstant, workingDirectory, commitMessage)
	case messageStageSuccess:
		return fmt.Sprintf(gitCommitSuccessTemplateConstant, workingDirectory, commitMessage)
	case messageStageFailure:
		return fmt.Sprintf(gitCommitFailureTemplateConstant, workingDirectory, commitMessage, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(gitCommitExecutionFailureTemplateConstant, workingDirectory, commitMessage, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitRemoteMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if strings.TrimSpace(formatter.argumentAtIndex(arguments, 1)) != gitRemoteAddSubcommandNameConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	remoteName := formatter.ensureValue(formatter.argumentAtIndex(arguments, 2))
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitRemoteAddStartTemplateConstant, remoteName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitRemoteAddSuccessTemplateConstant, remoteName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitRemoteAddFailureTemplateConstant, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(gitRemoteAddExecutionFailureTemplateConstant, remoteName, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitPushMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	remoteName := formatter.ensureValue(formatter.argumentAtIndex(arguments, 1))
	references := formatter.ensureValue(strings.Join(arguments[min(2, len(arguments)):], commandArgumentsJoinSeparatorConstant))
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitPushStartTemplateConstant, references, remoteName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitPushSuccessTemplateConstant, references, remoteName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitPushFailureTemplateConstant, references, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(gitPushExecutionFailureTemplateConstant, references, remoteName, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < 2 || strings.TrimSpace(arguments[0]) != githubAPICommandNameConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	endpoint := strings.TrimSpace(arguments[1])
	standardErrorSuffix := formatter.formatStandardErrorSuffix(result.StandardError)

	switch {
	case formatter.isGitHubSearch(arguments):
		switch stage {
		case messageStageStart:
			return githubSearchStartTemplateConstant
		case messageStageSuccess:
			return githubSearchSuccessTemplateConstant
		case messageStageFailure:
			return fmt.Sprintf(githubSearchFailureTemplateConstant, result.ExitCode, standardErrorSuffix)
		default:
			return fmt.Sprintf(githubSearchExecutionFailureTemplateConstant, formatter.describeFailure(failure))
		}
	case strings.HasSuffix(endpoint, githubReviewersEndpointSuffix):
		pullRequestEndpoint := strings.TrimSuffix(endpoint, githubReviewersEndpointSuffix)
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubReviewRequestStartTemplateConstant, pullRequestEndpoint)
		case messageStageSuccess:
			return fmt.Sprintf(githubReviewRequestSuccessTemplateConstant, pullRequestEndpoint)
		case messageStageFailure:
			return fmt.Sprintf(githubReviewRequestFailureTemplateConstant, pullRequestEndpoint, result.ExitCode, standardErrorSuffix)
		default:
			return fmt.Sprintf(githubReviewRequestExecutionFailureTemplateCons, pullRequestEndpoint, formatter.describeFailure(failure))
		}
	case strings.HasSuffix(endpoint, githubPullsEndpointSuffixConstant) && containsArgument(arguments, githubMethodFlagConstant):
		repository := strings.TrimSuffix(strings.TrimPrefix(endpoint, "repos/"), githubPullsEndpointSuffixConstant)
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubPullCreateStartTemplateConstant, repository)
		case messageStageSuccess:
			return fmt.Sprintf(githubPullCreateSuccessTemplateConstant, repository)
		case messageStageFailure:
			return fmt.Sprintf(githubPullCreateFailureTemplateConstant, repository, result.ExitCode, standardErrorSuffix)
		default:
			return fmt.Sprintf(githubPullCreateExecutionFailureTemplateConst, repository, formatter.describeFailure(failure))
		}
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(redactArguments(command.Details.Arguments), commandArgumentsJoinSeparatorConstant))
	}
	return fmt.Sprintf(commandLabelTemplateConstant, strings.Join(commandParts, commandArgumentsJoinSeparatorConstant), formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describePathspec(arguments []string) string {
	for argumentIndex, argument := range arguments {
		if argument != pathspecSeparatorConstant {
			continue
		}
		paths := arguments[argumentIndex+1:]
		if len(paths) == 0 {
			return allPathsLabelConstant
		}
		return strings.Join(paths, commandArgumentsJoinSeparatorConstant)
	}
	return allPathsLabelConstant
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return arguments[index]
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmedValue
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if argument == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for argumentIndex := 0; argumentIndex < len(arguments)-1; argumentIndex++ {
		if arguments[argumentIndex] == flag {
			return arguments[argumentIndex+1]
		}
	}
	return emptyStringConstant
}

// redactArguments hides credentials embedded in URL arguments, such as authenticated push remotes.
func redactArguments(arguments []string) []string {
	redactedArguments := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		redactedArguments = append(redactedArguments, redactArgument(argument))
	}
	return redactedArguments
}

func redactArgument(argument string) string {
	if !strings.Contains(argument, urlSchemeSeparatorConstant) || !strings.Contains(argument, urlCredentialsSeparatorConstant) {
		return argument
	}
	parsedURL, parseError := url.Parse(argument)
	if parseError != nil || parsedURL.User == nil {
		return argument
	}
	return parsedURL.Redacted()
}
