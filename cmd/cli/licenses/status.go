package licenses

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/licenses-ci/internal/actions"
	"github.com/temirov/licenses-ci/internal/gitrepo"
	"github.com/temirov/licenses-ci/internal/licenses"
)

const (
	statusCommandUseConstant              = "status"
	statusCommandShortDescriptionConstant = "Verify cached license metadata"
	statusCommandLongDescriptionConstant  = "status runs the license tool status check. When it fails on a working branch it checks <branch>-licenses to report whether pending updates would fix it; the command fails either way."
	statusVerifierErrorTemplateConstant   = "unable to construct status operation: %w"
	statusPassedMessageConstant           = "license status passed"
)

// StatusCommandBuilder assembles the status command.
type StatusCommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     CommandExecutor
	EnvironmentLookup            actions.EnvironmentLookup
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the status command.
func (builder *StatusCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   statusCommandUseConstant,
		Short: statusCommandShortDescriptionConstant,
		Long:  statusCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	registerToolFlags(command)

	return command, nil
}

func (builder *StatusCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := applyFlagOverrides(command, resolveConfiguration(builder.ConfigurationProvider))
	runContext := resolveRunContext(builder.EnvironmentLookup, configuration)

	branchContext, branchError := licenses.ResolveBranchContext(runContext.Branch)
	if branchError != nil {
		return branchError
	}

	logger := commandLogger(command, builder.LoggerProvider)
	executor, executorError := resolveCommandExecutor(builder.Executor, logger, resolveHumanReadableLogging(builder.HumanReadableLoggingProvider))
	if executorError != nil {
		return executorError
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor, configuration.WorkingDirectory)
	if managerError != nil {
		return fmt.Errorf(repositoryManagerErrorTemplateConstant, managerError)
	}

	toolAdapter, toolError := licenses.NewToolAdapter(executor, toolSettings(configuration), logger)
	if toolError != nil {
		return fmt.Errorf(toolAdapterErrorTemplateConstant, toolError)
	}

	verifier, verifierError := licenses.NewStatusVerifier(licenses.StatusVerifierDependencies{
		Git:       repositoryManager,
		Tool:      toolAdapter,
		Annotator: actions.NewWorkflowCommandAnnotator(command.OutOrStdout()),
		Output:    command.OutOrStdout(),
		Logger:    logger,
	})
	if verifierError != nil {
		return fmt.Errorf(statusVerifierErrorTemplateConstant, verifierError)
	}

	if verifyError := verifier.Verify(command.Context(), branchContext); verifyError != nil {
		return verifyError
	}

	logger.Info(statusPassedMessageConstant, zap.String(logFieldBranchConstant, branchContext.Branch))
	return nil
}
