package licenses_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/licenses-ci/internal/execshell"
	"github.com/temirov/licenses-ci/internal/licenses"
)

const (
	testConfigurationFileConstant = ".licensed.yml"
	testYAMLConfigurationConstant = `sources:
  go: true
cache_path: .licenses
apps:
  - source_path: ./cmd/server
    cache_path: .licenses/server
  - source_path: ./cmd/worker
`
	testEnvironmentOutputConstant = `{"config_path":"/repo/.licensed.yml","root":"/repo","apps":[{"name":"server","cache_path":"/repo/.licenses/server"},{"name":"worker","cache_path":"/repo/.licenses/worker"}]}`
)

type invocation struct {
	name      execshell.CommandName
	arguments []string
	directory string
}

type stubToolExecutor struct {
	invocations []invocation
	results     map[string]execshell.ExecutionResult
	failures    map[string]error
}

func (executor *stubToolExecutor) ExecuteCommand(_ context.Context, name execshell.CommandName, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.invocations = append(executor.invocations, invocation{name: name, arguments: details.Arguments, directory: details.WorkingDirectory})
	subcommand := ""
	for _, argument := range details.Arguments {
		if argument == "cache" || argument == "status" || argument == "env" {
			subcommand = argument
			break
		}
	}
	if failure, found := executor.failures[subcommand]; found {
		return execshell.ExecutionResult{}, failure
	}
	return executor.results[subcommand], nil
}

func exitedWith(exitCode int) error {
	return execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandName(testToolCommandConstant)},
		Result:  execshell.ExecutionResult{ExitCode: exitCode},
	}
}

func writeConfiguration(testInstance *testing.T, directory string, name string, contents string) {
	testInstance.Helper()
	require.NoError(testInstance, os.WriteFile(filepath.Join(directory, name), []byte(contents), 0o600))
}

func newTestAdapter(testInstance *testing.T, executor *stubToolExecutor, settings licenses.ToolSettings) *licenses.ToolAdapter {
	testInstance.Helper()
	adapter, creationError := licenses.NewToolAdapter(executor, settings, nil)
	require.NoError(testInstance, creationError)
	return adapter
}

func TestNewToolAdapterRequiresExecutor(testInstance *testing.T) {
	adapter, creationError := licenses.NewToolAdapter(nil, licenses.ToolSettings{}, nil)
	require.ErrorIs(testInstance, creationError, licenses.ErrToolExecutorNotConfigured)
	require.Nil(testInstance, adapter)
}

func TestNewToolAdapterRejectsUnterminatedQuote(testInstance *testing.T) {
	adapter, creationError := licenses.NewToolAdapter(&stubToolExecutor{}, licenses.ToolSettings{Command: `licensed "--sources`}, nil)
	require.Error(testInstance, creationError)
	require.Nil(testInstance, adapter)
}

func TestToolAdapterRunCache(testInstance *testing.T) {
	launchFailure := errors.New("executable file not found")

	testCases := []struct {
		name          string
		settings      licenses.ToolSettings
		failures      map[string]error
		expectedName  execshell.CommandName
		expectedArgs  []string
		expectedError error
	}{
		{
			name:         "default_command",
			settings:     licenses.ToolSettings{ConfigurationFile: "config/licensed.yml"},
			expectedName: "licensed",
			expectedArgs: []string{"cache", "-c", "config/licensed.yml"},
		},
		{
			name:         "command_with_arguments",
			settings:     licenses.ToolSettings{Command: "bundle exec licensed", ConfigurationFile: ".licensed.yml"},
			expectedName: "bundle",
			expectedArgs: []string{"exec", "licensed", "cache", "-c", ".licensed.yml"},
		},
		{
			name:         "quoted_command_arguments",
			settings:     licenses.ToolSettings{Command: `docker run "licensed image" licensed`, ConfigurationFile: ".licensed.yml"},
			expectedName: "docker",
			expectedArgs: []string{"run", "licensed image", "licensed", "cache", "-c", ".licensed.yml"},
		},
		{
			name:          "non_zero_exit_is_fatal",
			settings:      licenses.ToolSettings{ConfigurationFile: ".licensed.yml"},
			failures:      map[string]error{"cache": exitedWith(1)},
			expectedName:  "licensed",
			expectedArgs:  []string{"cache", "-c", ".licensed.yml"},
			expectedError: licenses.ToolFailure{Command: "licensed", Subcommand: "cache", ExitCode: 1, Cause: exitedWith(1)},
		},
		{
			name:          "launch_failure",
			settings:      licenses.ToolSettings{ConfigurationFile: ".licensed.yml"},
			failures:      map[string]error{"cache": launchFailure},
			expectedName:  "licensed",
			expectedArgs:  []string{"cache", "-c", ".licensed.yml"},
			expectedError: licenses.ToolFailure{Command: "licensed", Subcommand: "cache", ExitCode: -1, Cause: launchFailure},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubToolExecutor{failures: testCase.failures}
			adapter := newTestAdapter(testInstance, executor, testCase.settings)

			cacheError := adapter.RunCache(context.Background())
			require.Equal(testInstance, testCase.expectedError, cacheError)
			require.Len(testInstance, executor.invocations, 1)
			require.Equal(testInstance, testCase.expectedName, executor.invocations[0].name)
			require.Equal(testInstance, testCase.expectedArgs, executor.invocations[0].arguments)
		})
	}
}

func TestToolAdapterRunStatus(testInstance *testing.T) {
	launchFailure := errors.New("permission denied")

	testCases := []struct {
		name             string
		failures         map[string]error
		expectedExitCode int
		expectToolError  bool
	}{
		{name: "passes", expectedExitCode: 0},
		{name: "fails_without_error", failures: map[string]error{"status": exitedWith(1)}, expectedExitCode: 1},
		{name: "launch_failure", failures: map[string]error{"status": launchFailure}, expectedExitCode: -1, expectToolError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubToolExecutor{failures: testCase.failures}
			adapter := newTestAdapter(testInstance, executor, licenses.ToolSettings{ConfigurationFile: ".licensed.yml"})

			exitCode, statusError := adapter.RunStatus(context.Background())
			require.Equal(testInstance, testCase.expectedExitCode, exitCode)
			require.Equal(testInstance, []string{"status", "-c", ".licensed.yml"}, executor.invocations[0].arguments)
			if testCase.expectToolError {
				var toolFailure licenses.ToolFailure
				require.ErrorAs(testInstance, statusError, &toolFailure)
				require.ErrorIs(testInstance, statusError, launchFailure)
				return
			}
			require.NoError(testInstance, statusError)
		})
	}
}

func TestToolAdapterDiscoversConfigurationFile(testInstance *testing.T) {
	testCases := []struct {
		name         string
		files        []string
		expectedFile string
	}{
		{name: "yml", files: []string{".licensed.yml", ".licensed.json"}, expectedFile: ".licensed.yml"},
		{name: "yaml", files: []string{".licensed.yaml"}, expectedFile: ".licensed.yaml"},
		{name: "json", files: []string{".licensed.json"}, expectedFile: ".licensed.json"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			workingDirectory := testInstance.TempDir()
			for _, fileName := range testCase.files {
				writeConfiguration(testInstance, workingDirectory, fileName, "{}")
			}
			executor := &stubToolExecutor{}
			adapter := newTestAdapter(testInstance, executor, licenses.ToolSettings{WorkingDirectory: workingDirectory})

			_, statusError := adapter.RunStatus(context.Background())
			require.NoError(testInstance, statusError)
			require.Equal(testInstance, []string{"status", "-c", testCase.expectedFile}, executor.invocations[0].arguments)
			require.Equal(testInstance, workingDirectory, executor.invocations[0].directory)
		})
	}
}

func TestToolAdapterMissingConfigurationFile(testInstance *testing.T) {
	executor := &stubToolExecutor{}
	adapter := newTestAdapter(testInstance, executor, licenses.ToolSettings{WorkingDirectory: testInstance.TempDir()})

	require.Equal(testInstance, licenses.ConfigurationError{Field: "config_file"}, adapter.RunCache(context.Background()))
	_, statusError := adapter.RunStatus(context.Background())
	require.Equal(testInstance, licenses.ConfigurationError{Field: "config_file"}, statusError)
	require.False(testInstance, adapter.ResolveCachePaths(context.Background()).IsScoped())
	require.Empty(testInstance, executor.invocations)
}

func TestToolAdapterResolveCachePaths(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configuration string
		results       map[string]execshell.ExecutionResult
		failures      map[string]error
		expected      licenses.CachePaths
	}{
		{
			name:          "environment_output",
			configuration: testYAMLConfigurationConstant,
			results:       map[string]execshell.ExecutionResult{"env": {StandardOutput: testEnvironmentOutputConstant}},
			expected:      licenses.ScopedPaths("/repo/.licenses/server", "/repo/.licenses/worker"),
		},
		{
			name:          "configuration_file_fallback",
			configuration: testYAMLConfigurationConstant,
			failures:      map[string]error{"env": exitedWith(1)},
			expected:      licenses.ScopedPaths(".licenses", ".licenses/server"),
		},
		{
			name:          "unparseable_environment_output",
			configuration: testYAMLConfigurationConstant,
			results:       map[string]execshell.ExecutionResult{"env": {StandardOutput: "Unknown command env"}},
			expected:      licenses.ScopedPaths(".licenses", ".licenses/server"),
		},
		{
			name:          "json_configuration",
			configuration: `{"cache_path": "vendor/licenses"}`,
			failures:      map[string]error{"env": exitedWith(1)},
			expected:      licenses.ScopedPaths("vendor/licenses"),
		},
		{
			name:          "configuration_without_cache_paths",
			configuration: "sources:\n  go: true\n",
			failures:      map[string]error{"env": exitedWith(1)},
			expected:      licenses.Unscoped(),
		},
		{
			name:          "invalid_configuration",
			configuration: "cache_path: [unterminated",
			failures:      map[string]error{"env": exitedWith(1)},
			expected:      licenses.Unscoped(),
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			workingDirectory := testInstance.TempDir()
			writeConfiguration(testInstance, workingDirectory, testConfigurationFileConstant, testCase.configuration)
			executor := &stubToolExecutor{results: testCase.results, failures: testCase.failures}
			adapter := newTestAdapter(testInstance, executor, licenses.ToolSettings{WorkingDirectory: workingDirectory})

			cachePaths := adapter.ResolveCachePaths(context.Background())
			require.Equal(testInstance, testCase.expected.Pathspec(), cachePaths.Pathspec())
			require.Equal(testInstance, []string{"env", "--format", "json", "-c", testConfigurationFileConstant}, executor.invocations[0].arguments)
		})
	}
}
