package licenses_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/temirov/licenses-ci/internal/githubcli"
	"github.com/temirov/licenses-ci/internal/licenses"
)

const (
	testBranchConstant         = "main"
	testLicensesBranchConstant = "main-licenses"
	testRepositoryConstant     = "owner/example"
	testActorConstant          = "octocat"
	testTokenConstant          = "token-value"
	testCommitMessageConstant  = "Auto-update license files"
	testCommentConstant        = "cc @owner/legal"
	testPullRequestURLConstant = "https://github.com/owner/example/pull/7"
	testToolCommandConstant    = "licensed"
)

type fakeWorkspaceGit struct {
	calls         []string
	failures      map[string]error
	changed       bool
	stagedPaths   []string
	comparedPaths []string
}

func (git *fakeWorkspaceGit) record(call string) error {
	git.calls = append(git.calls, call)
	if git.failures == nil {
		return nil
	}
	return git.failures[call]
}

func (git *fakeWorkspaceGit) CheckoutBranch(_ context.Context, branch string) error {
	return git.record("checkout " + branch)
}

func (git *fakeWorkspaceGit) CreateBranch(_ context.Context, branch string, startPoint string) error {
	return git.record(fmt.Sprintf("checkout -b %s %s", branch, startPoint))
}

func (git *fakeWorkspaceGit) StagePaths(_ context.Context, paths []string) error {
	git.stagedPaths = paths
	return git.record("add")
}

func (git *fakeWorkspaceGit) HasStagedChanges(_ context.Context, paths []string) (bool, error) {
	git.comparedPaths = paths
	if failure := git.record("diff-index"); failure != nil {
		return false, failure
	}
	return git.changed, nil
}

func (git *fakeWorkspaceGit) Commit(_ context.Context, message string) error {
	return git.record("commit " + message)
}

func (git *fakeWorkspaceGit) AddRemote(_ context.Context, name string, remoteURL string) error {
	return git.record(fmt.Sprintf("remote add %s %s", name, remoteURL))
}

func (git *fakeWorkspaceGit) Push(_ context.Context, remoteName string, branch string) error {
	return git.record(fmt.Sprintf("push %s %s", remoteName, branch))
}

type fakeLicenseTool struct {
	calls         []string
	cacheError    error
	statusResults []int
	statusError   error
	cachePaths    licenses.CachePaths
}

func (tool *fakeLicenseTool) CommandName() string {
	return testToolCommandConstant
}

func (tool *fakeLicenseTool) RunCache(context.Context) error {
	tool.calls = append(tool.calls, "cache")
	return tool.cacheError
}

func (tool *fakeLicenseTool) RunStatus(context.Context) (int, error) {
	tool.calls = append(tool.calls, "status")
	if tool.statusError != nil {
		return -1, tool.statusError
	}
	if len(tool.statusResults) == 0 {
		return 0, nil
	}
	exitCode := tool.statusResults[0]
	tool.statusResults = tool.statusResults[1:]
	return exitCode, nil
}

func (tool *fakeLicenseTool) ResolveCachePaths(context.Context) licenses.CachePaths {
	tool.calls = append(tool.calls, "env")
	return tool.cachePaths
}

type fakePullRequestEnsurer struct {
	calls   []string
	outcome licenses.PullRequestOutcome
	failure error
}

func (ensurer *fakePullRequestEnsurer) EnsurePullRequest(_ context.Context, head string, base string) (licenses.PullRequestOutcome, error) {
	ensurer.calls = append(ensurer.calls, head+"->"+base)
	return ensurer.outcome, ensurer.failure
}

type fakePullRequestAPI struct {
	searchResult   githubcli.PullRequestSearchResult
	searchError    error
	createdRequest githubcli.PullRequest
	createError    error
	reviewError    error
	searchQueries  []githubcli.PullRequestQuery
	creations      []githubcli.PullRequestCreation
	reviewRequests []githubcli.ReviewRequest
}

func (api *fakePullRequestAPI) SearchPullRequests(_ context.Context, query githubcli.PullRequestQuery) (githubcli.PullRequestSearchResult, error) {
	api.searchQueries = append(api.searchQueries, query)
	return api.searchResult, api.searchError
}

func (api *fakePullRequestAPI) CreatePullRequest(_ context.Context, creation githubcli.PullRequestCreation) (githubcli.PullRequest, error) {
	api.creations = append(api.creations, creation)
	return api.createdRequest, api.createError
}

func (api *fakePullRequestAPI) RequestReviewers(_ context.Context, request githubcli.ReviewRequest) error {
	api.reviewRequests = append(api.reviewRequests, request)
	return api.reviewError
}

type recordingAnnotator struct {
	lines []string
}

func (annotator *recordingAnnotator) Warning(message string) {
	annotator.lines = append(annotator.lines, "warning: "+message)
}

func (annotator *recordingAnnotator) Error(message string) {
	annotator.lines = append(annotator.lines, "error: "+message)
}

func (annotator *recordingAnnotator) String() string {
	return strings.Join(annotator.lines, "\n")
}
