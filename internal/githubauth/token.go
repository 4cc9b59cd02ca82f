package githubauth

import (
	"os"
	"strings"
)

// Environment variable names used by GitHub authentication helpers.
const (
	EnvActionInputToken = "INPUT_GITHUB_TOKEN"
	EnvGitHubToken      = "GITHUB_TOKEN"
	EnvGitHubCLIToken   = "GH_TOKEN"
)

var tokenPreference = []string{
	EnvActionInputToken,
	EnvGitHubToken,
	EnvGitHubCLIToken,
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// ResolveToken returns the configured token when present, otherwise the first
// non-empty token observed through lookup. A nil lookup reads the process environment.
func ResolveToken(configuredToken string, lookup EnvironmentLookup) (string, bool) {
	if trimmedToken := strings.TrimSpace(configuredToken); len(trimmedToken) > 0 {
		return trimmedToken, true
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, key := range tokenPreference {
		value, exists := lookup(key)
		if !exists {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) > 0 {
			return value, true
		}
	}
	return "", false
}
