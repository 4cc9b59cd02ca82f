package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/licenses-ci/internal/execshell"
)

const (
	apiSubcommandConstant                    = "api"
	methodFlagConstant                       = "-X"
	fieldFlagConstant                        = "-f"
	inputFlagConstant                        = "--input"
	stdinReferenceConstant                   = "-"
	acceptHeaderFlagConstant                 = "-H"
	acceptHeaderValueConstant                = "Accept: application/vnd.github+json"
	httpMethodGetConstant                    = "GET"
	httpMethodPostConstant                   = "POST"
	searchIssuesEndpointConstant             = "search/issues"
	pullsEndpointTemplateConstant            = "repos/%s/pulls"
	reviewersEndpointTemplateConstant        = "repos/%s/pulls/%d/requested_reviewers"
	searchQueryFieldTemplateConstant         = "q=%s"
	pullRequestSearchQueryTemplateConstant   = "is:pr is:%s repo:%s head:%s base:%s"
	tokenEnvironmentVariableConstant         = "GH_TOKEN"
	repositoryFieldNameConstant              = "repository"
	headBranchFieldNameConstant              = "head"
	baseBranchFieldNameConstant              = "base"
	stateFieldNameConstant                   = "state"
	titleFieldNameConstant                   = "title"
	pullRequestNumberFieldNameConstant       = "pull_number"
	reviewersFieldNameConstant               = "reviewers"
	requiredValueMessageConstant             = "value required"
	positiveValueMessageConstant             = "value must be positive"
	repositoryFormatMessageConstant          = "expected owner/name"
	executorNotConfiguredMessageConstant     = "github cli executor not configured"
	operationErrorMessageTemplateConstant    = "%s operation failed"
	operationErrorWithCauseTemplateConstant  = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant    = "%s response decoding failed: %s"
	payloadEncodingErrorTemplateConstant     = "%s payload encoding failed: %s"
	invalidInputErrorTemplateConstant        = "%s: %s"
	searchPullRequestsOperationNameConstant  = OperationName("SearchPullRequests")
	createPullRequestOperationNameConstant   = OperationName("CreatePullRequest")
	requestReviewersOperationNameConstant    = OperationName("RequestReviewers")
	pullRequestStateOpenValueConstant        = "open"
	pullRequestStateClosedValueConstant      = "closed"
	repositoryOwnerSeparatorConstant         = "/"
	expectedRepositoryComponentCountConstant = 2
)

// OperationName describes a named GitHub workflow supported by the client.
type OperationName string

// PullRequestState describes acceptable GitHub pull request states.
type PullRequestState string

// Pull request state enumerations.
const (
	PullRequestStateOpen   PullRequestState = PullRequestState(pullRequestStateOpenValueConstant)
	PullRequestStateClosed PullRequestState = PullRequestState(pullRequestStateClosedValueConstant)
)

// PullRequestQuery selects pull requests by repository, head, base, and state.
type PullRequestQuery struct {
	Repository string
	HeadBranch string
	BaseBranch string
	State      PullRequestState
}

// PullRequestSearchResult summarizes a pull request search.
type PullRequestSearchResult struct {
	TotalCount   int
	PullRequests []PullRequest
}

// PullRequest represents minimal PR details returned by GitHub.
type PullRequest struct {
	Number  int
	Title   string
	HTMLURL string
}

// PullRequestCreation describes a new pull request.
type PullRequestCreation struct {
	Repository string
	Title      string
	HeadBranch string
	BaseBranch string
	Body       string
}

// ReviewRequest asks reviewers to look at a pull request.
type ReviewRequest struct {
	Repository        string
	PullRequestNumber int
	Reviewers         []string
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor            GitHubCommandExecutor
	authenticationToken string
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// PayloadEncodingError indicates JSON encoding issues.
type PayloadEncodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the encoding failure.
func (encodingError PayloadEncodingError) Error() string {
	return fmt.Sprintf(payloadEncodingErrorTemplateConstant, encodingError.Operation, encodingError.Cause)
}

// Unwrap exposes the underlying error.
func (encodingError PayloadEncodingError) Unwrap() error {
	return encodingError.Cause
}

// NewClient constructs a GitHub CLI client relying on the ambient gh authentication.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	return NewAuthenticatedClient(executor, "")
}

// NewAuthenticatedClient constructs a GitHub CLI client that exports token as GH_TOKEN for every call.
func NewAuthenticatedClient(executor GitHubCommandExecutor, token string) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor, authenticationToken: strings.TrimSpace(token)}, nil
}

// SearchPullRequests counts pull requests matching the query using the issue search API.
func (client *Client) SearchPullRequests(executionContext context.Context, query PullRequestQuery) (PullRequestSearchResult, error) {
	repositoryIdentifier, validationError := validateRepository(query.Repository)
	if validationError != nil {
		return PullRequestSearchResult{}, validationError
	}
	if len(strings.TrimSpace(query.HeadBranch)) == 0 {
		return PullRequestSearchResult{}, InvalidInputError{FieldName: headBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(query.BaseBranch)) == 0 {
		return PullRequestSearchResult{}, InvalidInputError{FieldName: baseBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(query.State) == 0 {
		return PullRequestSearchResult{}, InvalidInputError{FieldName: stateFieldNameConstant, Message: requiredValueMessageConstant}
	}

	searchQuery := fmt.Sprintf(pullRequestSearchQueryTemplateConstant, query.State, repositoryIdentifier, strings.TrimSpace(query.HeadBranch), strings.TrimSpace(query.BaseBranch))
	commandDetails := client.commandDetails([]string{
		apiSubcommandConstant,
		searchIssuesEndpointConstant,
		methodFlagConstant,
		httpMethodGetConstant,
		fieldFlagConstant,
		fmt.Sprintf(searchQueryFieldTemplateConstant, searchQuery),
		acceptHeaderFlagConstant,
		acceptHeaderValueConstant,
	}, nil)

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return PullRequestSearchResult{}, OperationError{Operation: searchPullRequestsOperationNameConstant, Cause: executionError}
	}

	var response struct {
		TotalCount int `json:"total_count"`
		Items      []struct {
			Number  int    `json:"number"`
			Title   string `json:"title"`
			HTMLURL string `json:"html_url"`
		} `json:"items"`
	}
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return PullRequestSearchResult{}, ResponseDecodingError{Operation: searchPullRequestsOperationNameConstant, Cause: decodingError}
	}

	searchResult := PullRequestSearchResult{TotalCount: response.TotalCount, PullRequests: make([]PullRequest, 0, len(response.Items))}
	for _, item := range response.Items {
		searchResult.PullRequests = append(searchResult.PullRequests, PullRequest{Number: item.Number, Title: item.Title, HTMLURL: item.HTMLURL})
	}
	return searchResult, nil
}

// CreatePullRequest opens a pull request and returns its number and URL.
func (client *Client) CreatePullRequest(executionContext context.Context, creation PullRequestCreation) (PullRequest, error) {
	repositoryIdentifier, validationError := validateRepository(creation.Repository)
	if validationError != nil {
		return PullRequest{}, validationError
	}
	if len(strings.TrimSpace(creation.Title)) == 0 {
		return PullRequest{}, InvalidInputError{FieldName: titleFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(creation.HeadBranch)) == 0 {
		return PullRequest{}, InvalidInputError{FieldName: headBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(creation.BaseBranch)) == 0 {
		return PullRequest{}, InvalidInputError{FieldName: baseBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payload := struct {
		Title string `json:"title"`
		Head  string `json:"head"`
		Base  string `json:"base"`
		Body  string `json:"body"`
	}{
		Title: creation.Title,
		Head:  strings.TrimSpace(creation.HeadBranch),
		Base:  strings.TrimSpace(creation.BaseBranch),
		Body:  creation.Body,
	}
	payloadBytes, encodingError := json.Marshal(payload)
	if encodingError != nil {
		return PullRequest{}, PayloadEncodingError{Operation: createPullRequestOperationNameConstant, Cause: encodingError}
	}

	commandDetails := client.commandDetails(postArguments(fmt.Sprintf(pullsEndpointTemplateConstant, repositoryIdentifier)), payloadBytes)
	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return PullRequest{}, OperationError{Operation: createPullRequestOperationNameConstant, Cause: executionError}
	}

	var response struct {
		Number  int    `json:"number"`
		Title   string `json:"title"`
		HTMLURL string `json:"html_url"`
	}
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return PullRequest{}, ResponseDecodingError{Operation: createPullRequestOperationNameConstant, Cause: decodingError}
	}

	return PullRequest{Number: response.Number, Title: response.Title, HTMLURL: response.HTMLURL}, nil
}

// RequestReviewers asks the listed users to review a pull request.
func (client *Client) RequestReviewers(executionContext context.Context, request ReviewRequest) error {
	repositoryIdentifier, validationError := validateRepository(request.Repository)
	if validationError != nil {
		return validationError
	}
	if request.PullRequestNumber <= 0 {
		return InvalidInputError{FieldName: pullRequestNumberFieldNameConstant, Message: positiveValueMessageConstant}
	}

	reviewers := make([]string, 0, len(request.Reviewers))
	for _, reviewer := range request.Reviewers {
		if trimmedReviewer := strings.TrimSpace(reviewer); len(trimmedReviewer) > 0 {
			reviewers = append(reviewers, trimmedReviewer)
		}
	}
	if len(reviewers) == 0 {
		return InvalidInputError{FieldName: reviewersFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payloadBytes, encodingError := json.Marshal(struct {
		Reviewers []string `json:"reviewers"`
	}{Reviewers: reviewers})
	if encodingError != nil {
		return PayloadEncodingError{Operation: requestReviewersOperationNameConstant, Cause: encodingError}
	}

	commandDetails := client.commandDetails(postArguments(fmt.Sprintf(reviewersEndpointTemplateConstant, repositoryIdentifier, request.PullRequestNumber)), payloadBytes)
	if _, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails); executionError != nil {
		return OperationError{Operation: requestReviewersOperationNameConstant, Cause: executionError}
	}
	return nil
}

func (client *Client) commandDetails(arguments []string, standardInput []byte) execshell.CommandDetails {
	commandDetails := execshell.CommandDetails{Arguments: arguments, StandardInput: standardInput}
	if len(client.authenticationToken) > 0 {
		commandDetails.EnvironmentVariables = map[string]string{tokenEnvironmentVariableConstant: client.authenticationToken}
	}
	return commandDetails
}

func postArguments(endpoint string) []string {
	return []string{
		apiSubcommandConstant,
		endpoint,
		methodFlagConstant,
		httpMethodPostConstant,
		inputFlagConstant,
		stdinReferenceConstant,
		acceptHeaderFlagConstant,
		acceptHeaderValueConstant,
	}
}

func validateRepository(repository string) (string, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	components := strings.Split(repositoryIdentifier, repositoryOwnerSeparatorConstant)
	if len(components) != expectedRepositoryComponentCountConstant || len(components[0]) == 0 || len(components[1]) == 0 {
		return "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: repositoryFormatMessageConstant}
	}
	return repositoryIdentifier, nil
}
