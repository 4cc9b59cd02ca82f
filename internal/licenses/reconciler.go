package licenses

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/licenses-ci/internal/gitrepo"
)

const (
	// PushRemoteName is the remote registered to push the licenses branch with the configured token.
	PushRemoteName = "licensed-ci-origin"

	commitMessageFieldNameConstant     = "commit_message"
	tokenFieldNameConstant             = "github_token"
	gitNotConfiguredConstant           = "git workspace not configured"
	toolNotConfiguredConstant          = "license tool not configured"
	ensurerNotConfiguredConstant       = "pull request ensurer not configured"
	alreadyOnLicensesBranchLogConstant = "already on licenses branch, nothing to cache"
	creatingLicensesBranchLogConstant  = "licenses branch not found locally, creating it"
	noLicenseChangesLogConstant        = "license metadata unchanged"
	licenseChangesDetectedLogConstant  = "license metadata changed, publishing licenses branch"
	logFieldBranchConstant             = "branch"
	logFieldLicensesBranchConstant     = "licenses_branch"
)

// WorkspaceGit is the git surface used by the cache and status operations;
// gitrepo.RepositoryManager satisfies it.
type WorkspaceGit interface {
	CheckoutBranch(executionContext context.Context, branch string) error
	CreateBranch(executionContext context.Context, branch string, startPoint string) error
	StagePaths(executionContext context.Context, paths []string) error
	HasStagedChanges(executionContext context.Context, paths []string) (bool, error)
	Commit(executionContext context.Context, message string) error
	AddRemote(executionContext context.Context, name string, remoteURL string) error
	Push(executionContext context.Context, remoteName string, branch string) error
}

// CacheSettings carries the inputs needed to publish changes.
// CommitMessage and Token are only required when metadata changed.
type CacheSettings struct {
	RunContext    RunContext
	CommitMessage string
	Token         string
}

// CacheResult summarizes a cache run.
type CacheResult struct {
	BranchContext BranchContext
	CachePaths    CachePaths
	Changed       bool
	PullRequest   *PullRequestOutcome
}

// ReconcilerDependencies wires the collaborators of a Reconciler.
type ReconcilerDependencies struct {
	Git          WorkspaceGit
	Tool         LicenseTool
	PullRequests PullRequestEnsurer
	Logger       *zap.Logger
}

// Reconciler implements the cache operation.
type Reconciler struct {
	git          WorkspaceGit
	tool         LicenseTool
	pullRequests PullRequestEnsurer
	logger       *zap.Logger
	settings     CacheSettings
}

var (
	// ErrGitNotConfigured indicates a missing git dependency.
	ErrGitNotConfigured = errors.New(gitNotConfiguredConstant)
	// ErrToolNotConfigured indicates a missing license tool dependency.
	ErrToolNotConfigured = errors.New(toolNotConfiguredConstant)
	// ErrPullRequestEnsurerNotConfigured indicates a missing pull request dependency.
	ErrPullRequestEnsurerNotConfigured = errors.New(ensurerNotConfiguredConstant)
)

// NewReconciler validates dependencies and constructs a Reconciler.
func NewReconciler(dependencies ReconcilerDependencies, settings CacheSettings) (*Reconciler, error) {
	if dependencies.Git == nil {
		return nil, ErrGitNotConfigured
	}
	if dependencies.Tool == nil {
		return nil, ErrToolNotConfigured
	}
	if dependencies.PullRequests == nil {
		return nil, ErrPullRequestEnsurerNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		git:          dependencies.Git,
		tool:         dependencies.Tool,
		pullRequests: dependencies.PullRequests,
		logger:       logger,
		settings:     settings,
	}, nil
}

// Cache regenerates license metadata on the licenses branch and publishes any drift.
// On the licenses branch itself it does nothing.
func (reconciler *Reconciler) Cache(executionContext context.Context, branchContext BranchContext) (CacheResult, error) {
	result := CacheResult{BranchContext: branchContext, CachePaths: Unscoped()}
	branchFields := []zap.Field{
		zap.String(logFieldBranchConstant, branchContext.Branch),
		zap.String(logFieldLicensesBranchConstant, branchContext.LicensesBranch),
	}

	if branchContext.State == OnLicensesBranch {
		reconciler.logger.Info(alreadyOnLicensesBranchLogConstant, branchFields...)
		return result, nil
	}

	if checkoutError := reconciler.ensureLicensesBranch(executionContext, branchContext); checkoutError != nil {
		return result, checkoutError
	}

	if cacheError := reconciler.tool.RunCache(executionContext); cacheError != nil {
		return result, cacheError
	}

	result.CachePaths = reconciler.tool.ResolveCachePaths(executionContext)
	pathspec := result.CachePaths.Pathspec()
	if stageError := reconciler.git.StagePaths(executionContext, pathspec); stageError != nil {
		return result, GitFailure{Operation: GitOperationAdd, Cause: stageError}
	}

	changed, diffError := reconciler.git.HasStagedChanges(executionContext, pathspec)
	if diffError != nil {
		return result, GitFailure{Operation: GitOperationDiff, Cause: diffError}
	}
	result.Changed = changed

	if !changed {
		reconciler.logger.Info(noLicenseChangesLogConstant, branchFields...)
	} else {
		reconciler.logger.Info(licenseChangesDetectedLogConstant, branchFields...)
		outcome, publishError := reconciler.publish(executionContext, branchContext)
		if publishError != nil {
			return result, publishError
		}
		result.PullRequest = &outcome
	}

	if checkoutError := reconciler.git.CheckoutBranch(executionContext, branchContext.Branch); checkoutError != nil {
		return result, GitFailure{Operation: GitOperationCheckout, Cause: checkoutError}
	}
	return result, nil
}

func (reconciler *Reconciler) ensureLicensesBranch(executionContext context.Context, branchContext BranchContext) error {
	if checkoutError := reconciler.git.CheckoutBranch(executionContext, branchContext.LicensesBranch); checkoutError == nil {
		return nil
	}
	reconciler.logger.Debug(creatingLicensesBranchLogConstant, zap.String(logFieldLicensesBranchConstant, branchContext.LicensesBranch))
	if creationError := reconciler.git.CreateBranch(executionContext, branchContext.LicensesBranch, branchContext.Branch); creationError != nil {
		return GitFailure{Operation: GitOperationCreateBranch, Cause: creationError}
	}
	return nil
}

func (reconciler *Reconciler) publish(executionContext context.Context, branchContext BranchContext) (PullRequestOutcome, error) {
	commitMessage := strings.TrimSpace(reconciler.settings.CommitMessage)
	if len(commitMessage) == 0 {
		return PullRequestOutcome{}, ConfigurationError{Field: commitMessageFieldNameConstant}
	}
	token := strings.TrimSpace(reconciler.settings.Token)
	if len(token) == 0 {
		return PullRequestOutcome{}, ConfigurationError{Field: tokenFieldNameConstant}
	}
	if len(strings.TrimSpace(reconciler.settings.RunContext.Repository)) == 0 {
		return PullRequestOutcome{}, ConfigurationError{Field: repositoryFieldNameConstant}
	}
	remoteURL, remoteError := gitrepo.AuthenticatedRemoteURL(reconciler.settings.RunContext.Repository, token)
	if remoteError != nil {
		return PullRequestOutcome{}, ConfigurationError{Field: repositoryFieldNameConstant}
	}

	if commitError := reconciler.git.Commit(executionContext, commitMessage); commitError != nil {
		return PullRequestOutcome{}, GitFailure{Operation: GitOperationCommit, Cause: commitError}
	}
	if remoteAddError := reconciler.git.AddRemote(executionContext, PushRemoteName, remoteURL); remoteAddError != nil {
		return PullRequestOutcome{}, GitFailure{Operation: GitOperationRemoteAdd, Cause: remoteAddError}
	}
	if pushError := reconciler.git.Push(executionContext, PushRemoteName, branchContext.LicensesBranch); pushError != nil {
		return PullRequestOutcome{}, GitFailure{Operation: GitOperationPush, Cause: pushError}
	}

	return reconciler.pullRequests.EnsurePullRequest(executionContext, branchContext.LicensesBranch, branchContext.Branch)
}
