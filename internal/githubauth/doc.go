// Package githubauth resolves the GitHub token used for authenticated pushes and API calls.
package githubauth
