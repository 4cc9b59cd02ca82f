package licenses_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/licenses-ci/internal/licenses"
)

func TestLicensesBranchName(testInstance *testing.T) {
	testCases := []struct {
		name     string
		branch   string
		expected string
	}{
		{name: "default_branch", branch: "main", expected: "main-licenses"},
		{name: "feature_branch", branch: "feature/login", expected: "feature/login-licenses"},
		{name: "already_licenses", branch: "main-licenses", expected: "main-licenses"},
		{name: "suffix_only", branch: "-licenses", expected: "-licenses"},
		{name: "similar_suffix", branch: "main-license", expected: "main-license-licenses"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			licensesBranch := licenses.LicensesBranchName(testCase.branch)
			require.Equal(testInstance, testCase.expected, licensesBranch)
			require.Equal(testInstance, licensesBranch, licenses.LicensesBranchName(licensesBranch))
		})
	}
}

func TestResolveBranchContext(testInstance *testing.T) {
	testCases := []struct {
		name        string
		branch      string
		expected    licenses.BranchContext
		expectError bool
	}{
		{
			name:     "default_branch",
			branch:   " main ",
			expected: licenses.BranchContext{Branch: "main", LicensesBranch: "main-licenses", State: licenses.OnDefaultBranch},
		},
		{
			name:     "licenses_branch",
			branch:   "main-licenses",
			expected: licenses.BranchContext{Branch: "main-licenses", LicensesBranch: "main-licenses", State: licenses.OnLicensesBranch},
		},
		{name: "empty", branch: "  ", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			branchContext, resolveError := licenses.ResolveBranchContext(testCase.branch)
			if testCase.expectError {
				require.Equal(testInstance, licenses.ConfigurationError{Field: "branch"}, resolveError)
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expected, branchContext)
		})
	}
}

func TestBranchStateString(testInstance *testing.T) {
	require.Equal(testInstance, "default branch", licenses.OnDefaultBranch.String())
	require.Equal(testInstance, "licenses branch", licenses.OnLicensesBranch.String())
}
