package licenses

import (
	"slices"
	"strings"
)

const (
	workingTreePathspecConstant = "."
	pathListSeparatorConstant   = ", "
	unscopedDescriptionConstant = "entire working tree"
)

// CachePaths is either a set of scoped paths or Unscoped, which covers the whole working tree.
type CachePaths struct {
	paths []string
}

// ScopedPaths builds a path set from paths, ignoring blanks and duplicates.
// A set with no usable paths is Unscoped.
func ScopedPaths(paths ...string) CachePaths {
	collected := make([]string, 0, len(paths))
	for _, path := range paths {
		trimmedPath := strings.TrimSpace(path)
		if len(trimmedPath) == 0 || slices.Contains(collected, trimmedPath) {
			continue
		}
		collected = append(collected, trimmedPath)
	}
	slices.Sort(collected)
	return CachePaths{paths: collected}
}

// Unscoped scopes git operations to the whole working tree.
func Unscoped() CachePaths {
	return CachePaths{}
}

// IsScoped reports whether the set names specific paths.
func (cachePaths CachePaths) IsScoped() bool {
	return len(cachePaths.paths) > 0
}

// Paths returns a copy of the scoped paths; it is empty when Unscoped.
func (cachePaths CachePaths) Paths() []string {
	return slices.Clone(cachePaths.paths)
}

// Pathspec returns the git pathspec for the set.
func (cachePaths CachePaths) Pathspec() []string {
	if !cachePaths.IsScoped() {
		return []string{workingTreePathspecConstant}
	}
	return cachePaths.Paths()
}

func (cachePaths CachePaths) String() string {
	if !cachePaths.IsScoped() {
		return unscopedDescriptionConstant
	}
	return strings.Join(cachePaths.paths, pathListSeparatorConstant)
}
