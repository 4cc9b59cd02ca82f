package licenses

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/licenses-ci/internal/actions"
	"github.com/temirov/licenses-ci/internal/githubauth"
	"github.com/temirov/licenses-ci/internal/githubcli"
	"github.com/temirov/licenses-ci/internal/gitrepo"
	"github.com/temirov/licenses-ci/internal/licenses"
)

const (
	cacheCommandUseConstant                 = "cache"
	cacheCommandShortDescriptionConstant    = "Update cached license metadata on the licenses branch"
	cacheCommandLongDescriptionConstant     = "cache regenerates license metadata on <branch>-licenses, pushes any changes, and opens a pull request into <branch>. It does nothing when run on a licenses branch."
	repositoryManagerErrorTemplateConstant  = "unable to construct repository manager: %w"
	toolAdapterErrorTemplateConstant        = "unable to construct license tool adapter: %w"
	gitHubClientErrorTemplateConstant       = "unable to construct GitHub client: %w"
	pullRequestServiceErrorTemplateConstant = "unable to construct pull request service: %w"
	reconcilerErrorTemplateConstant         = "unable to construct cache operation: %w"
	cacheCompletedMessageConstant           = "license cache completed"
	logFieldBranchConstant                  = "branch"
	logFieldLicensesBranchConstant          = "licenses_branch"
	logFieldBranchStateConstant             = "branch_state"
	logFieldCachePathsConstant              = "cache_paths"
	logFieldChangedConstant                 = "changed"
	logFieldPullRequestURLConstant          = "pull_request_url"
)

// CacheCommandBuilder assembles the cache command.
type CacheCommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     CommandExecutor
	EnvironmentLookup            actions.EnvironmentLookup
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the cache command.
func (builder *CacheCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   cacheCommandUseConstant,
		Short: cacheCommandShortDescriptionConstant,
		Long:  cacheCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	registerToolFlags(command)
	command.Flags().String(repositoryFlagNameConstant, "", repositoryFlagUsageConstant)
	command.Flags().String(actorFlagNameConstant, "", actorFlagUsageConstant)
	command.Flags().String(commitMessageFlagNameConstant, "", commitMessageFlagUsageConstant)
	command.Flags().String(pullRequestCommentFlagNameConstant, "", pullRequestCommentFlagUsageConstant)

	return command, nil
}

func (builder *CacheCommandBuilder) run(command *cobra.Command, arguments []string) error {
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

	token, _ := githubauth.ResolveToken(configuration.GitHubToken, githubauth.EnvironmentLookup(builder.EnvironmentLookup))
	gitHubClient, clientError := githubcli.NewAuthenticatedClient(executor, token)
	if clientError != nil {
		return fmt.Errorf(gitHubClientErrorTemplateConstant, clientError)
	}

	pullRequestRunContext := licenses.RunContext{Repository: runContext.Repository, Actor: runContext.Actor}
	pullRequestService, serviceError := licenses.NewPullRequestService(gitHubClient, pullRequestRunContext, configuration.PullRequestComment, command.OutOrStdout(), logger)
	if serviceError != nil {
		return fmt.Errorf(pullRequestServiceErrorTemplateConstant, serviceError)
	}

	reconciler, reconcilerError := licenses.NewReconciler(
		licenses.ReconcilerDependencies{
			Git:          repositoryManager,
			Tool:         toolAdapter,
			PullRequests: pullRequestService,
			Logger:       logger,
		},
		licenses.CacheSettings{
			RunContext:    pullRequestRunContext,
			CommitMessage: configuration.CommitMessage,
			Token:         token,
		},
	)
	if reconcilerError != nil {
		return fmt.Errorf(reconcilerErrorTemplateConstant, reconcilerError)
	}

	result, cacheError := reconciler.Cache(command.Context(), branchContext)
	if cacheError != nil {
		return cacheError
	}

	summaryFields := []zap.Field{
		zap.String(logFieldBranchConstant, result.BranchContext.Branch),
		zap.String(logFieldLicensesBranchConstant, result.BranchContext.LicensesBranch),
		zap.Stringer(logFieldBranchStateConstant, result.BranchContext.State),
		zap.Stringer(logFieldCachePathsConstant, result.CachePaths),
		zap.Bool(logFieldChangedConstant, result.Changed),
	}
	if result.PullRequest != nil {
		summaryFields = append(summaryFields, zap.String(logFieldPullRequestURLConstant, result.PullRequest.URL))
	}
	logger.Info(cacheCompletedMessageConstant, summaryFields...)
	return nil
}
