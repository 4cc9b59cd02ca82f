package actions

import (
	"fmt"
	"io"
	"strings"
)

const (
	warningCommandConstant          = "warning"
	errorCommandConstant            = "error"
	workflowCommandTemplateConstant = "::%s::%s\n"
	percentConstant                 = "%"
	escapedPercentConstant          = "%25"
	carriageReturnConstant          = "\r"
	escapedCarriageReturnConstant   = "%0D"
	lineFeedConstant                = "\n"
	escapedLineFeedConstant         = "%0A"
)

// Annotator reports warnings and errors using workflow commands understood by the runner.
type Annotator interface {
	Warning(message string)
	Error(message string)
}

// WorkflowCommandAnnotator writes ::warning:: and ::error:: commands to an output stream.
type WorkflowCommandAnnotator struct {
	output io.Writer
}

// NewWorkflowCommandAnnotator constructs an annotator writing to output; nil output discards annotations.
func NewWorkflowCommandAnnotator(output io.Writer) *WorkflowCommandAnnotator {
	if output == nil {
		output = io.Discard
	}
	return &WorkflowCommandAnnotator{output: output}
}

// Warning emits a warning annotation.
func (annotator *WorkflowCommandAnnotator) Warning(message string) {
	annotator.write(warningCommandConstant, message)
}

// Error emits an error annotation.
func (annotator *WorkflowCommandAnnotator) Error(message string) {
	annotator.write(errorCommandConstant, message)
}

func (annotator *WorkflowCommandAnnotator) write(command string, message string) {
	fmt.Fprintf(annotator.output, workflowCommandTemplateConstant, command, escapeData(message))
}

// escapeData applies the runner's data escaping so multi-line messages stay one command.
func escapeData(message string) string {
	escaped := strings.ReplaceAll(message, percentConstant, escapedPercentConstant)
	escaped = strings.ReplaceAll(escaped, carriageReturnConstant, escapedCarriageReturnConstant)
	return strings.ReplaceAll(escaped, lineFeedConstant, escapedLineFeedConstant)
}
