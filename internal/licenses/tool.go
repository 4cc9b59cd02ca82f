package licenses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/temirov/licenses-ci/internal/execshell"
)

const (
	// DefaultToolCommand is the license tool executable used when none is configured.
	DefaultToolCommand = "licensed"

	cacheSubcommandConstant           = "cache"
	statusSubcommandConstant          = "status"
	environmentSubcommandConstant     = "env"
	configurationFlagConstant         = "-c"
	formatFlagConstant                = "--format"
	jsonFormatConstant                = "json"
	configurationFileFieldConstant    = "config_file"
	logFieldConfigurationFileConstant = "configuration_file"
	logFieldCachePathsConstant        = "cache_paths"
	environmentFallbackLogConstant    = "license tool environment unavailable, reading configuration file"
	configurationFallbackLogConstant  = "license tool configuration unreadable, scoping to entire working tree"
	noCachePathsLogConstant           = "license tool configuration names no cache paths, scoping to entire working tree"
	cachePathsResolvedLogConstant     = "resolved license cache paths"
	executorNotConfiguredConstant     = "license tool executor not configured"
	invalidCommandTemplateConstant    = "license tool command %q must be valid: %w"
	jsonDocumentPrefixConstant        = "{"
)

// DefaultConfigurationFileNames lists the configuration files discovered, in order, when none is configured.
var DefaultConfigurationFileNames = []string{".licensed.yml", ".licensed.yaml", ".licensed.json"}

// ToolCommandExecutor runs arbitrary executables; execshell.ShellExecutor satisfies it.
type ToolCommandExecutor interface {
	ExecuteCommand(executionContext context.Context, name execshell.CommandName, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// LicenseTool is the license scanner seen by the cache and status operations.
type LicenseTool interface {
	CommandName() string
	RunCache(executionContext context.Context) error
	RunStatus(executionContext context.Context) (int, error)
	ResolveCachePaths(executionContext context.Context) CachePaths
}

// ToolSettings configures the license tool invocation.
type ToolSettings struct {
	// Command may carry leading arguments, such as "bundle exec licensed", split with shell quoting rules.
	Command           string
	ConfigurationFile string
	WorkingDirectory  string
}

// ToolAdapter invokes the license tool as a subprocess.
type ToolAdapter struct {
	executor          ToolCommandExecutor
	logger            *zap.Logger
	commandLine       string
	executable        execshell.CommandName
	leadingArguments  []string
	configurationFile string
	workingDirectory  string
}

// ErrToolExecutorNotConfigured indicates the adapter was constructed without an executor.
var ErrToolExecutorNotConfigured = errors.New(executorNotConfiguredConstant)

// NewToolAdapter constructs a ToolAdapter. The configuration file is located lazily on first use.
func NewToolAdapter(executor ToolCommandExecutor, settings ToolSettings, logger *zap.Logger) (*ToolAdapter, error) {
	if executor == nil {
		return nil, ErrToolExecutorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	commandLine := strings.TrimSpace(settings.Command)
	if len(commandLine) == 0 {
		commandLine = DefaultToolCommand
	}
	commandFields, splitError := shlex.Split(commandLine)
	if splitError != nil {
		return nil, fmt.Errorf(invalidCommandTemplateConstant, commandLine, splitError)
	}
	if len(commandFields) == 0 {
		commandFields = []string{DefaultToolCommand}
	}

	return &ToolAdapter{
		executor:          executor,
		logger:            logger,
		commandLine:       commandLine,
		executable:        execshell.CommandName(commandFields[0]),
		leadingArguments:  commandFields[1:],
		configurationFile: strings.TrimSpace(settings.ConfigurationFile),
		workingDirectory:  strings.TrimSpace(settings.WorkingDirectory),
	}, nil
}

// CommandName returns the configured command line, used in failure messages.
func (adapter *ToolAdapter) CommandName() string {
	return adapter.commandLine
}

// RunCache runs the cache subcommand. A non-zero exit is a ToolFailure.
func (adapter *ToolAdapter) RunCache(executionContext context.Context) error {
	_, executionError := adapter.run(executionContext, cacheSubcommandConstant)
	if executionError == nil {
		return nil
	}
	if exitCode, exited := execshell.ExitCode(executionError); exited {
		return ToolFailure{Command: adapter.commandLine, Subcommand: cacheSubcommandConstant, ExitCode: exitCode, Cause: executionError}
	}
	return adapter.launchFailure(cacheSubcommandConstant, executionError)
}

// RunStatus runs the status subcommand and returns its exit code.
// Only a failure to run the tool at all is returned as an error.
func (adapter *ToolAdapter) RunStatus(executionContext context.Context) (int, error) {
	_, executionError := adapter.run(executionContext, statusSubcommandConstant)
	if executionError == nil {
		return 0, nil
	}
	if exitCode, exited := execshell.ExitCode(executionError); exited {
		return exitCode, nil
	}
	return toolExecutionFailedExitCodeConstant, adapter.launchFailure(statusSubcommandConstant, executionError)
}

// ResolveCachePaths determines which paths the tool manages. It asks the tool's env
// subcommand first, then parses the configuration file, and otherwise returns Unscoped.
func (adapter *ToolAdapter) ResolveCachePaths(executionContext context.Context) CachePaths {
	configurationFile, configurationError := adapter.configurationPath()
	if configurationError != nil {
		adapter.logger.Debug(configurationFallbackLogConstant, zap.Error(configurationError))
		return Unscoped()
	}

	executionResult, executionError := adapter.run(executionContext, environmentSubcommandConstant, formatFlagConstant, jsonFormatConstant)
	if executionError == nil {
		if cachePaths, parseError := parseCachePaths([]byte(executionResult.StandardOutput)); parseError == nil && cachePaths.IsScoped() {
			adapter.logger.Debug(cachePathsResolvedLogConstant, zap.Stringer(logFieldCachePathsConstant, cachePaths))
			return cachePaths
		}
	}
	adapter.logger.Debug(environmentFallbackLogConstant, zap.String(logFieldConfigurationFileConstant, configurationFile))

	configurationContents, readError := os.ReadFile(adapter.resolveLocalPath(configurationFile))
	if readError != nil {
		adapter.logger.Debug(configurationFallbackLogConstant, zap.Error(readError))
		return Unscoped()
	}
	cachePaths, parseError := parseCachePaths(configurationContents)
	if parseError != nil {
		adapter.logger.Debug(configurationFallbackLogConstant, zap.Error(parseError))
		return Unscoped()
	}
	if !cachePaths.IsScoped() {
		adapter.logger.Debug(noCachePathsLogConstant, zap.String(logFieldConfigurationFileConstant, configurationFile))
		return Unscoped()
	}
	adapter.logger.Debug(cachePathsResolvedLogConstant, zap.Stringer(logFieldCachePathsConstant, cachePaths))
	return cachePaths
}

func (adapter *ToolAdapter) run(executionContext context.Context, subcommand string, extraArguments ...string) (execshell.ExecutionResult, error) {
	configurationFile, configurationError := adapter.configurationPath()
	if configurationError != nil {
		return execshell.ExecutionResult{}, configurationError
	}

	arguments := append([]string{}, adapter.leadingArguments...)
	arguments = append(arguments, subcommand)
	arguments = append(arguments, extraArguments...)
	arguments = append(arguments, configurationFlagConstant, configurationFile)

	return adapter.executor.ExecuteCommand(executionContext, adapter.executable, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: adapter.workingDirectory,
	})
}

func (adapter *ToolAdapter) launchFailure(subcommand string, executionError error) error {
	var configurationError ConfigurationError
	if errors.As(executionError, &configurationError) {
		return configurationError
	}
	return ToolFailure{Command: adapter.commandLine, Subcommand: subcommand, ExitCode: toolExecutionFailedExitCodeConstant, Cause: executionError}
}

// configurationPath returns the configured file or the first default file present in the working directory.
func (adapter *ToolAdapter) configurationPath() (string, error) {
	if len(adapter.configurationFile) > 0 {
		return adapter.configurationFile, nil
	}
	for _, candidate := range DefaultConfigurationFileNames {
		if fileInfo, statError := os.Stat(adapter.resolveLocalPath(candidate)); statError == nil && !fileInfo.IsDir() {
			return candidate, nil
		}
	}
	return "", ConfigurationError{Field: configurationFileFieldConstant}
}

func (adapter *ToolAdapter) resolveLocalPath(path string) string {
	if filepath.IsAbs(path) || len(adapter.workingDirectory) == 0 {
		return path
	}
	return filepath.Join(adapter.workingDirectory, path)
}

type toolConfigurationDocument struct {
	CachePath string `yaml:"cache_path" json:"cache_path"`
	Apps      []struct {
		CachePath string `yaml:"cache_path" json:"cache_path"`
	} `yaml:"apps" json:"apps"`
}

// parseCachePaths reads cache_path and apps[].cache_path from YAML or JSON content.
func parseCachePaths(contents []byte) (CachePaths, error) {
	var document toolConfigurationDocument
	decode := yaml.Unmarshal
	if bytes.HasPrefix(bytes.TrimSpace(contents), []byte(jsonDocumentPrefixConstant)) {
		decode = json.Unmarshal
	}
	if decodeError := decode(contents, &document); decodeError != nil {
		return Unscoped(), decodeError
	}
	paths := []string{document.CachePath}
	for _, application := range document.Apps {
		paths = append(paths, application.CachePath)
	}
	return ScopedPaths(paths...), nil
}
