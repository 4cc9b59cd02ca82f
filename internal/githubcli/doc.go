// Package githubcli wraps the GitHub CLI for licenses-ci workflows.
//
// It issues REST calls through gh api for pull request search, creation, and
// review requests, layering typed request and response structures on top of
// execshell so interactions with GitHub can be stubbed during testing.
package githubcli
