// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the abstractions licenses-ci uses to
// run git, gh, and the license tool in a testable manner. Non-zero exit codes
// surface as CommandFailedError so callers can treat them as signals.
package execshell
