package licenses

import "strings"

// LicensesBranchSuffix marks a branch that carries license metadata updates.
const LicensesBranchSuffix = "-licenses"

const branchFieldNameConstant = "branch"

// BranchState tells whether a run starts on a working branch or on its licenses branch.
type BranchState int

// Branch states.
const (
	OnDefaultBranch BranchState = iota
	OnLicensesBranch
)

func (state BranchState) String() string {
	switch state {
	case OnLicensesBranch:
		return "licenses branch"
	default:
		return "default branch"
	}
}

// BranchContext is computed once per run.
type BranchContext struct {
	Branch         string
	LicensesBranch string
	State          BranchState
}

// LicensesBranchName appends LicensesBranchSuffix unless branch already ends with it.
func LicensesBranchName(branch string) string {
	if strings.HasSuffix(branch, LicensesBranchSuffix) {
		return branch
	}
	return branch + LicensesBranchSuffix
}

// ResolveBranchContext derives the licenses branch and state for branch.
func ResolveBranchContext(branch string) (BranchContext, error) {
	branchName := strings.TrimSpace(branch)
	if len(branchName) == 0 {
		return BranchContext{}, ConfigurationError{Field: branchFieldNameConstant}
	}

	licensesBranch := LicensesBranchName(branchName)
	state := OnDefaultBranch
	if licensesBranch == branchName {
		state = OnLicensesBranch
	}
	return BranchContext{Branch: branchName, LicensesBranch: licensesBranch, State: state}, nil
}
