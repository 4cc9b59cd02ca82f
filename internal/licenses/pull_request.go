package licenses

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/licenses-ci/internal/githubcli"
)

const (
	pullRequestTitleTemplateConstant   = "License updates for %s"
	pullRequestCreatedTemplateConstant = "Created pull request for changes: %s\n"
	basePlaceholderConstant            = "<base>"
	commentPlaceholderConstant         = "<prComment>"
	repositoryFieldNameConstant        = "repository"
	existingPullRequestLogConstant     = "open license pull request already exists"
	reviewSkippedLogConstant           = "no actor available, skipping review request"
	logFieldHeadBranchConstant         = "head_branch"
	logFieldBaseBranchConstant         = "base_branch"
	logFieldPullRequestURLConstant     = "pull_request_url"
	apiClientNotConfiguredConstant     = "pull request api client not configured"
)

// PullRequestBodyTemplate is the pull request description; <base> and <prComment> are substituted.
const PullRequestBodyTemplate = `This PR was auto generated by the 'licensed-ci' GitHub Action.
It contains updates to cached 'github/licensed' dependency metadata to be merged into <base>.

Please review the changed files and adjust as needed before merging.

<prComment>`

// PullRequestAPI is the hosting platform surface used to manage license pull requests.
type PullRequestAPI interface {
	SearchPullRequests(executionContext context.Context, query githubcli.PullRequestQuery) (githubcli.PullRequestSearchResult, error)
	CreatePullRequest(executionContext context.Context, creation githubcli.PullRequestCreation) (githubcli.PullRequest, error)
	RequestReviewers(executionContext context.Context, request githubcli.ReviewRequest) error
}

// PullRequestEnsurer makes sure an open pull request exists from head into base.
type PullRequestEnsurer interface {
	EnsurePullRequest(executionContext context.Context, head string, base string) (PullRequestOutcome, error)
}

// RunContext identifies the repository being updated and the actor who triggered the run.
type RunContext struct {
	Repository string
	Actor      string
}

// PullRequestOutcome describes what EnsurePullRequest did.
type PullRequestOutcome struct {
	Existing        bool
	Number          int
	URL             string
	ReviewRequested bool
}

// PullRequestService searches before creating so repeated runs reuse one open pull request.
// The search and the creation are separate calls; concurrent runs may still both create.
type PullRequestService struct {
	api        PullRequestAPI
	runContext RunContext
	comment    string
	output     io.Writer
	logger     *zap.Logger
}

// ErrPullRequestAPINotConfigured indicates the service was constructed without an API client.
var ErrPullRequestAPINotConfigured = errors.New(apiClientNotConfiguredConstant)

// NewPullRequestService constructs a PullRequestService. The confirmation line is written to output.
func NewPullRequestService(api PullRequestAPI, runContext RunContext, comment string, output io.Writer, logger *zap.Logger) (*PullRequestService, error) {
	if api == nil {
		return nil, ErrPullRequestAPINotConfigured
	}
	if output == nil {
		output = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PullRequestService{
		api:        api,
		runContext: RunContext{Repository: strings.TrimSpace(runContext.Repository), Actor: strings.TrimSpace(runContext.Actor)},
		comment:    comment,
		output:     output,
		logger:     logger,
	}, nil
}

// RenderPullRequestBody fills PullRequestBodyTemplate.
func RenderPullRequestBody(base string, comment string) string {
	body := strings.ReplaceAll(PullRequestBodyTemplate, basePlaceholderConstant, base)
	return strings.TrimSpace(strings.Replace(body, commentPlaceholderConstant, comment, 1))
}

// PullRequestTitle returns the title used for license pull requests into base.
func PullRequestTitle(base string) string {
	return fmt.Sprintf(pullRequestTitleTemplateConstant, base)
}

// EnsurePullRequest returns the existing open pull request outcome, or creates one and requests review from the actor.
func (service *PullRequestService) EnsurePullRequest(executionContext context.Context, head string, base string) (PullRequestOutcome, error) {
	if len(service.runContext.Repository) == 0 {
		return PullRequestOutcome{}, ConfigurationError{Field: repositoryFieldNameConstant}
	}

	searchResult, searchError := service.api.SearchPullRequests(executionContext, githubcli.PullRequestQuery{
		Repository: service.runContext.Repository,
		HeadBranch: head,
		BaseBranch: base,
		State:      githubcli.PullRequestStateOpen,
	})
	if searchError != nil {
		return PullRequestOutcome{}, APIFailure{Operation: APIOperationSearchPullRequests, Cause: searchError}
	}
	if searchResult.TotalCount > 0 {
		outcome := PullRequestOutcome{Existing: true}
		if len(searchResult.PullRequests) > 0 {
			outcome.Number = searchResult.PullRequests[0].Number
			outcome.URL = searchResult.PullRequests[0].HTMLURL
		}
		service.logger.Info(existingPullRequestLogConstant,
			zap.String(logFieldHeadBranchConstant, head),
			zap.String(logFieldBaseBranchConstant, base),
			zap.String(logFieldPullRequestURLConstant, outcome.URL),
		)
		return outcome, nil
	}

	pullRequest, creationError := service.api.CreatePullRequest(executionContext, githubcli.PullRequestCreation{
		Repository: service.runContext.Repository,
		Title:      PullRequestTitle(base),
		HeadBranch: head,
		BaseBranch: base,
		Body:       RenderPullRequestBody(base, service.comment),
	})
	if creationError != nil {
		return PullRequestOutcome{}, APIFailure{Operation: APIOperationCreatePullRequest, Cause: creationError}
	}
	outcome := PullRequestOutcome{Number: pullRequest.Number, URL: pullRequest.HTMLURL}

	if len(service.runContext.Actor) == 0 {
		service.logger.Warn(reviewSkippedLogConstant, zap.String(logFieldPullRequestURLConstant, outcome.URL))
	} else {
		reviewError := service.api.RequestReviewers(executionContext, githubcli.ReviewRequest{
			Repository:        service.runContext.Repository,
			PullRequestNumber: pullRequest.Number,
			Reviewers:         []string{service.runContext.Actor},
		})
		if reviewError != nil {
			return outcome, APIFailure{Operation: APIOperationRequestReviewers, Cause: reviewError}
		}
		outcome.ReviewRequested = true
	}

	fmt.Fprintf(service.output, pullRequestCreatedTemplateConstant, outcome.URL)
	return outcome, nil
}
