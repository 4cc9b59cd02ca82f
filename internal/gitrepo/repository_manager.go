package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/licenses-ci/internal/execshell"
)

const (
	gitCheckoutSubcommandConstant        = "checkout"
	gitCreateBranchFlagConstant          = "-b"
	gitAddSubcommandConstant             = "add"
	gitDiffIndexSubcommandConstant       = "diff-index"
	gitQuietFlagConstant                 = "--quiet"
	gitHeadReferenceConstant             = "HEAD"
	gitCommitSubcommandConstant          = "commit"
	gitMessageFlagConstant               = "-m"
	gitRemoteSubcommandConstant          = "remote"
	gitRemoteAddSubcommandConstant       = "add"
	gitPushSubcommandConstant            = "push"
	gitPathspecSeparatorConstant         = "--"
	gitWorkingTreePathspecConstant       = "."
	diffIndexChangedExitCodeConstant     = 1
	branchFieldNameConstant              = "branch"
	startPointFieldNameConstant          = "start_point"
	commitMessageFieldNameConstant       = "commit_message"
	remoteNameFieldNameConstant          = "remote_name"
	remoteURLFieldNameConstant           = "remote_url"
	executorNotConfiguredMessageConstant = "git executor not configured"
	repositoryInputErrorTemplateConstant = "%s: %s"
)

// GitExecutor exposes the subset of execshell.ShellExecutor used for git plumbing.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ErrGitExecutorNotConfigured indicates the manager was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// RepositoryInputError reports an invalid argument to a repository operation.
type RepositoryInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid argument.
func (inputError RepositoryInputError) Error() string {
	return fmt.Sprintf(repositoryInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// RepositoryManager runs git operations against a single working tree.
type RepositoryManager struct {
	executor         GitExecutor
	workingDirectory string
}

// NewRepositoryManager constructs a RepositoryManager. An empty working directory means the process directory.
func NewRepositoryManager(executor GitExecutor, workingDirectory string) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor, workingDirectory: strings.TrimSpace(workingDirectory)}, nil
}

// CheckoutBranch switches the working tree to branch.
func (manager *RepositoryManager) CheckoutBranch(executionContext context.Context, branch string) error {
	branchName, validationError := requireValue(branchFieldNameConstant, branch)
	if validationError != nil {
		return validationError
	}
	return manager.run(executionContext, gitCheckoutSubcommandConstant, branchName)
}

// CreateBranch creates branch from startPoint and switches to it.
func (manager *RepositoryManager) CreateBranch(executionContext context.Context, branch string, startPoint string) error {
	branchName, validationError := requireValue(branchFieldNameConstant, branch)
	if validationError != nil {
		return validationError
	}
	startPointName, validationError := requireValue(startPointFieldNameConstant, startPoint)
	if validationError != nil {
		return validationError
	}
	return manager.run(executionContext, gitCheckoutSubcommandConstant, gitCreateBranchFlagConstant, branchName, startPointName)
}

// StagePaths stages the given paths, or the whole working tree when paths is empty.
func (manager *RepositoryManager) StagePaths(executionContext context.Context, paths []string) error {
	arguments := append([]string{gitAddSubcommandConstant, gitPathspecSeparatorConstant}, pathspec(paths)...)
	return manager.run(executionContext, arguments...)
}

// HasStagedChanges reports whether the index differs from HEAD for the given paths.
// Exit code 1 from diff-index means differences exist; any other failure is returned.
func (manager *RepositoryManager) HasStagedChanges(executionContext context.Context, paths []string) (bool, error) {
	arguments := append([]string{gitDiffIndexSubcommandConstant, gitQuietFlagConstant, gitHeadReferenceConstant, gitPathspecSeparatorConstant}, pathspec(paths)...)
	executionError := manager.run(executionContext, arguments...)
	if executionError == nil {
		return false, nil
	}
	if exitCode, exited := execshell.ExitCode(executionError); exited && exitCode == diffIndexChangedExitCodeConstant {
		return true, nil
	}
	return false, executionError
}

// Commit records the staged changes with message.
func (manager *RepositoryManager) Commit(executionContext context.Context, message string) error {
	if len(strings.TrimSpace(message)) == 0 {
		return RepositoryInputError{FieldName: commitMessageFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return manager.run(executionContext, gitCommitSubcommandConstant, gitMessageFlagConstant, message)
}

// AddRemote registers a named remote.
func (manager *RepositoryManager) AddRemote(executionContext context.Context, name string, remoteURL string) error {
	remoteName, validationError := requireValue(remoteNameFieldNameConstant, name)
	if validationError != nil {
		return validationError
	}
	remoteAddress, validationError := requireValue(remoteURLFieldNameConstant, remoteURL)
	if validationError != nil {
		return validationError
	}
	return manager.run(executionContext, gitRemoteSubcommandConstant, gitRemoteAddSubcommandConstant, remoteName, remoteAddress)
}

// Push publishes branch to the named remote.
func (manager *RepositoryManager) Push(executionContext context.Context, remoteName string, branch string) error {
	remote, validationError := requireValue(remoteNameFieldNameConstant, remoteName)
	if validationError != nil {
		return validationError
	}
	branchName, validationError := requireValue(branchFieldNameConstant, branch)
	if validationError != nil {
		return validationError
	}
	return manager.run(executionContext, gitPushSubcommandConstant, remote, branchName)
}

func (manager *RepositoryManager) run(executionContext context.Context, arguments ...string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: manager.workingDirectory,
	})
	return executionError
}

func pathspec(paths []string) []string {
	selected := make([]string, 0, len(paths))
	for _, path := range paths {
		if trimmedPath := strings.TrimSpace(path); len(trimmedPath) > 0 {
			selected = append(selected, trimmedPath)
		}
	}
	if len(selected) == 0 {
		return []string{gitWorkingTreePathspecConstant}
	}
	return selected
}

func requireValue(fieldName string, value string) (string, error) {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return "", RepositoryInputError{FieldName: fieldName, Message: requiredValueMessageConstant}
	}
	return trimmedValue, nil
}
