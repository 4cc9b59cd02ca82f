// Package licenses provides the cache and status commands. Each command resolves
// its inputs from configuration, flags, and the CI environment, then wires the
// shell executor into the git, GitHub CLI, and license tool collaborators.
package licenses
