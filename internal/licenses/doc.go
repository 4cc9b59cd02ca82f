// Package licenses keeps cached dependency license metadata current in CI.
//
// The cache operation (Reconciler) regenerates metadata on a companion branch
// named after the working branch with a -licenses suffix, commits and pushes any
// drift, and makes sure a single open pull request carries it back. The status
// operation (StatusVerifier) checks metadata on the working branch and, when that
// fails, checks the companion branch to point users at pending updates.
//
// Every external effect goes through a narrow interface: LicenseTool for the
// license scanner, WorkspaceGit for git, and PullRequestAPI for the hosting
// platform. Failures are reported as ConfigurationError, GitFailure,
// ToolFailure, APIFailure, or StatusFailure.
package licenses
