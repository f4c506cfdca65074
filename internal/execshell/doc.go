// Package execshell runs external tools for repokeeper.
//
// ShellExecutor logs every command it runs and turns non-zero exits into
// CommandFailedError values. OSCommandRunner is the os/exec backed runner; it
// either captures output or hands the terminal to the child process when a
// command asks for inherited streams, as the release workflow does for git and
// the package managers.
package execshell
