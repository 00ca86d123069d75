// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the abstractions multigit uses to run
// git against each repository in a testable manner. The working directory of
// every invocation is passed explicitly; the process working directory is never
// changed.
package execshell
