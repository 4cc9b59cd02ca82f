package actions

import (
	"os"
	"strings"
)

const (
	// EnvRepository names the owner/name of the repository running the workflow.
	EnvRepository = "GITHUB_REPOSITORY"
	// EnvActor names the user that triggered the workflow.
	EnvActor = "GITHUB_ACTOR"
	// EnvRef names the fully qualified ref that triggered the workflow.
	EnvRef = "GITHUB_REF"
	// EnvHeadRef names the source branch of a pull request event.
	EnvHeadRef = "GITHUB_HEAD_REF"

	branchReferencePrefixConstant = "refs/heads/"
)

// EnvironmentLookup resolves environment variables; os.LookupEnv satisfies it.
type EnvironmentLookup func(name string) (string, bool)

// RunContext identifies the repository, actor, and branch a run operates on.
type RunContext struct {
	Repository string
	Actor      string
	Branch     string
}

// ResolveRunContext reads the run context from lookup, falling back to the process environment when lookup is nil.
func ResolveRunContext(lookup EnvironmentLookup) RunContext {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return RunContext{
		Repository: readVariable(lookup, EnvRepository),
		Actor:      readVariable(lookup, EnvActor),
		Branch:     resolveBranch(lookup),
	}
}

// Override replaces fields of the run context with the non-empty values of overrides.
func (runContext RunContext) Override(overrides RunContext) RunContext {
	if value := strings.TrimSpace(overrides.Repository); len(value) > 0 {
		runContext.Repository = value
	}
	if value := strings.TrimSpace(overrides.Actor); len(value) > 0 {
		runContext.Actor = value
	}
	if value := strings.TrimSpace(overrides.Branch); len(value) > 0 {
		runContext.Branch = BranchFromReference(value)
	}
	return runContext
}

// BranchFromReference strips the refs/heads/ prefix from a git reference.
func BranchFromReference(reference string) string {
	return strings.TrimPrefix(strings.TrimSpace(reference), branchReferencePrefixConstant)
}

func resolveBranch(lookup EnvironmentLookup) string {
	if headReference := readVariable(lookup, EnvHeadRef); len(headReference) > 0 {
		return headReference
	}
	return BranchFromReference(readVariable(lookup, EnvRef))
}

func readVariable(lookup EnvironmentLookup, name string) string {
	value, found := lookup(name)
	if !found {
		return ""
	}
	return strings.TrimSpace(value)
}
