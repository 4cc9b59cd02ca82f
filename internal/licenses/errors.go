package licenses

import (
	"fmt"
)

const (
	configurationErrorTemplateConstant      = "missing required input: %s"
	gitFailureTemplateConstant              = "git %s failed: %v"
	toolFailureExitTemplateConstant         = "%s %s exited with code %d"
	toolFailureCauseTemplateConstant        = "%s %s could not run: %v"
	apiFailureTemplateConstant              = "%s failed: %v"
	statusFailureTemplateConstant           = "%s status failed"
	toolExecutionFailedExitCodeConstant     = -1
	defaultStatusFailureCommandNameConstant = "licensed"
)

// GitOperation names the git step that failed.
type GitOperation string

// Git operations performed by the cache and status operations.
const (
	GitOperationCheckout     GitOperation = "checkout"
	GitOperationCreateBranch GitOperation = "create branch"
	GitOperationAdd          GitOperation = "add"
	GitOperationDiff         GitOperation = "diff-index"
	GitOperationCommit       GitOperation = "commit"
	GitOperationRemoteAdd    GitOperation = "remote add"
	GitOperationPush         GitOperation = "push"
)

// APIOperation names the hosting platform call that failed.
type APIOperation string

// Hosting platform calls made by the pull request ensurer.
const (
	APIOperationSearchPullRequests APIOperation = "search pull requests"
	APIOperationCreatePullRequest  APIOperation = "create pull request"
	APIOperationRequestReviewers   APIOperation = "request reviewers"
)

// ConfigurationError reports a missing or invalid required input.
type ConfigurationError struct {
	Field string
}

func (configurationError ConfigurationError) Error() string {
	return fmt.Sprintf(configurationErrorTemplateConstant, configurationError.Field)
}

// GitFailure reports a git command that failed outside of change detection.
type GitFailure struct {
	Operation GitOperation
	Cause     error
}

func (gitFailure GitFailure) Error() string {
	return fmt.Sprintf(gitFailureTemplateConstant, gitFailure.Operation, gitFailure.Cause)
}

// Unwrap exposes the executor error.
func (gitFailure GitFailure) Unwrap() error {
	return gitFailure.Cause
}

// ToolFailure reports a license tool invocation that could not run or, for cache, exited non-zero.
// ExitCode is -1 when the process never produced an exit code.
type ToolFailure struct {
	Command    string
	Subcommand string
	ExitCode   int
	Cause      error
}

func (toolFailure ToolFailure) Error() string {
	if toolFailure.ExitCode >= 0 {
		return fmt.Sprintf(toolFailureExitTemplateConstant, toolFailure.Command, toolFailure.Subcommand, toolFailure.ExitCode)
	}
	return fmt.Sprintf(toolFailureCauseTemplateConstant, toolFailure.Command, toolFailure.Subcommand, toolFailure.Cause)
}

// Unwrap exposes the executor error.
func (toolFailure ToolFailure) Unwrap() error {
	return toolFailure.Cause
}

// APIFailure reports a rejected or failed hosting platform call.
type APIFailure struct {
	Operation APIOperation
	Cause     error
}

func (apiFailure APIFailure) Error() string {
	return fmt.Sprintf(apiFailureTemplateConstant, apiFailure.Operation, apiFailure.Cause)
}

// Unwrap exposes the client error.
func (apiFailure APIFailure) Unwrap() error {
	return apiFailure.Cause
}

// StatusFailure reports a failed status check. It is returned on every failing path,
// including when the companion branch passed.
type StatusFailure struct {
	Command           string
	Branch            string
	FallbackBranch    string
	FallbackAttempted bool
	FallbackPassed    bool
}

func (statusFailure StatusFailure) Error() string {
	commandName := statusFailure.Command
	if len(commandName) == 0 {
		commandName = defaultStatusFailureCommandNameConstant
	}
	return fmt.Sprintf(statusFailureTemplateConstant, commandName)
}
