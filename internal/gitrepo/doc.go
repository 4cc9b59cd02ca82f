// Package gitrepo runs the git plumbing needed to maintain a companion branch.
//
// RepositoryManager wraps checkout, branch creation, staging, change detection,
// commit, remote registration, and push behind a GitExecutor so callers can stub
// git in tests. The remote URL helpers format HTTPS remotes that authenticate
// with an access token.
package gitrepo
