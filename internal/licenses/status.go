package licenses

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
)

const (
	checkingStatusTemplateConstant = "Checking status on %s\n"
	fallbackErrorTemplateConstant  = "Status check failed on %s.  Checking status on %s"
	fallbackPassedTemplateConstant = "Status check succeeded on %s.  Please merge license updates from %s"
	fallbackFailedTemplateConstant = "Status check failed on %s.  Please review and update %s as needed"
	statusExitCodeLogConstant      = "license status check finished"
	logFieldExitCodeConstant       = "exit_code"
)

// Annotator surfaces warnings and errors to the CI runner; actions.WorkflowCommandAnnotator satisfies it.
type Annotator interface {
	Warning(message string)
	Error(message string)
}

// BranchSwitcher checks out branches.
type BranchSwitcher interface {
	CheckoutBranch(executionContext context.Context, branch string) error
}

// StatusVerifierDependencies wires the collaborators of a StatusVerifier.
type StatusVerifierDependencies struct {
	Git       BranchSwitcher
	Tool      LicenseTool
	Annotator Annotator
	Output    io.Writer
	Logger    *zap.Logger
}

// StatusVerifier implements the status operation.
type StatusVerifier struct {
	git       BranchSwitcher
	tool      LicenseTool
	annotator Annotator
	output    io.Writer
	logger    *zap.Logger
}

type discardAnnotator struct{}

func (discardAnnotator) Warning(string) {}

func (discardAnnotator) Error(string) {}

// NewStatusVerifier validates dependencies and constructs a StatusVerifier.
func NewStatusVerifier(dependencies StatusVerifierDependencies) (*StatusVerifier, error) {
	if dependencies.Git == nil {
		return nil, ErrGitNotConfigured
	}
	if dependencies.Tool == nil {
		return nil, ErrToolNotConfigured
	}
	verifier := &StatusVerifier{
		git:       dependencies.Git,
		tool:      dependencies.Tool,
		annotator: dependencies.Annotator,
		output:    dependencies.Output,
		logger:    dependencies.Logger,
	}
	if verifier.annotator == nil {
		verifier.annotator = discardAnnotator{}
	}
	if verifier.output == nil {
		verifier.output = io.Discard
	}
	if verifier.logger == nil {
		verifier.logger = zap.NewNop()
	}
	return verifier, nil
}

// Verify runs the status check on the current branch. When that fails on a working branch
// it checks the licenses branch to produce a diagnostic. Any failure returns StatusFailure.
func (verifier *StatusVerifier) Verify(executionContext context.Context, branchContext BranchContext) error {
	passed, statusError := verifier.check(executionContext, branchContext.Branch)
	if statusError != nil {
		return statusError
	}
	if passed {
		return nil
	}

	failure := StatusFailure{Command: verifier.tool.CommandName(), Branch: branchContext.Branch}
	if branchContext.State == OnLicensesBranch {
		return failure
	}

	fmt.Fprintln(verifier.output)
	verifier.annotator.Error(fmt.Sprintf(fallbackErrorTemplateConstant, branchContext.Branch, branchContext.LicensesBranch))
	if checkoutError := verifier.git.CheckoutBranch(executionContext, branchContext.LicensesBranch); checkoutError != nil {
		return GitFailure{Operation: GitOperationCheckout, Cause: checkoutError}
	}

	fallbackPassed, fallbackError := verifier.check(executionContext, branchContext.LicensesBranch)
	if fallbackError != nil {
		return fallbackError
	}
	failure.FallbackBranch = branchContext.LicensesBranch
	failure.FallbackAttempted = true
	failure.FallbackPassed = fallbackPassed

	if fallbackPassed {
		verifier.annotator.Warning(fmt.Sprintf(fallbackPassedTemplateConstant, branchContext.LicensesBranch, branchContext.LicensesBranch))
	} else {
		verifier.annotator.Warning(fmt.Sprintf(fallbackFailedTemplateConstant, branchContext.LicensesBranch, branchContext.LicensesBranch))
	}
	return failure
}

func (verifier *StatusVerifier) check(executionContext context.Context, branch string) (bool, error) {
	fmt.Fprintf(verifier.output, checkingStatusTemplateConstant, branch)
	exitCode, statusError := verifier.tool.RunStatus(executionContext)
	if statusError != nil {
		return false, statusError
	}
	verifier.logger.Debug(statusExitCodeLogConstant, zap.String(logFieldBranchConstant, branch), zap.Int(logFieldExitCodeConstant, exitCode))
	return exitCode == 0, nil
}
