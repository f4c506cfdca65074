package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/temirov/repokeeper/internal/utils"
)

const (
	environmentAssignmentTemplateConstant = "%s=%s"
)

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct {
	standardInput  io.Reader
	standardOutput io.Writer
	standardError  io.Writer
}

// NewOSCommandRunner constructs a runner attached to the process terminal streams.
func NewOSCommandRunner() *OSCommandRunner {
	return NewOSCommandRunnerWithStreams(os.Stdin, os.Stdout, os.Stderr)
}

// NewOSCommandRunnerWithStreams constructs a runner that hands the provided streams to commands requesting inherited streams.
// Files are passed to children as descriptors; other writers are copied through a flushing writer.
func NewOSCommandRunnerWithStreams(standardInput io.Reader, standardOutput io.Writer, standardError io.Writer) *OSCommandRunner {
	return &OSCommandRunner{
		standardInput:  standardInput,
		standardOutput: inheritableWriter(standardOutput),
		standardError:  inheritableWriter(standardError),
	}
}

// inheritableWriter keeps *os.File values intact so os/exec shares the descriptor instead of piping.
func inheritableWriter(writer io.Writer) io.Writer {
	if file, isFile := writer.(*os.File); isFile {
		return file
	}
	return utils.NewFlushingWriter(writer)
}

// Run executes the supplied command using os/exec.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandArguments := append([]string{}, command.Details.Arguments...)
	executable := exec.CommandContext(executionContext, string(command.Name), commandArguments...)

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}

	if len(command.Details.EnvironmentVariables) > 0 {
		mergedEnvironment := append([]string{}, os.Environ()...)
		for environmentKey, environmentValue := range command.Details.EnvironmentVariables {
			mergedEnvironment = append(mergedEnvironment, fmt.Sprintf(environmentAssignmentTemplateConstant, environmentKey, environmentValue))
		}
		executable.Env = mergedEnvironment
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	if command.Details.InheritStreams {
		executable.Stdin = runner.standardInput
		executable.Stdout = runner.standardOutput
		executable.Stderr = runner.standardError
	} else {
		executable.Stdout = &standardOutputBuffer
		executable.Stderr = &standardErrorBuffer
	}

	runError := executable.Run()
	executionResult := ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
	}
	if runError != nil {
		exitError := &exec.ExitError{}
		if errors.As(runError, &exitError) {
			executionResult.ExitCode = exitError.ExitCode()
			return executionResult, nil
		}
		return ExecutionResult{}, runError
	}

	return executionResult, nil
}
