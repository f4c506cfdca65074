package status

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/repokeeper/internal/execshell"
	"github.com/temirov/repokeeper/internal/repos/shared"
)

const (
	gitConfigurationFlagConstant        = "-c"
	gitStatusHintsSettingConstant       = "advice.statusHints=true"
	gitStatusSubcommandConstant         = "status"
	localeEnvironmentVariableConstant   = "LC_ALL"
	localeValueConstant                 = "C"
	statusCommandFailedTemplateConstant = "git status failed in %s: %w"
)

// Source names a status collection strategy.
type Source string

// Supported status sources.
const (
	SourceText     Source = Source("text")
	SourceWorktree Source = Source("worktree")
)

// ErrGitExecutorNotConfigured indicates the text collector has no executor.
var ErrGitExecutorNotConfigured = errors.New("status collector git executor not configured")

// ErrUnsupportedSource indicates an unknown status source name.
var ErrUnsupportedSource = errors.New("unsupported status source")

// ParseSource resolves a configured source name.
func ParseSource(rawSource string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(rawSource))) {
	case SourceText, "":
		return SourceText, nil
	case SourceWorktree:
		return SourceWorktree, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedSource, rawSource)
	}
}

// Collector produces a Report for a repository.
type Collector interface {
	Collect(executionContext context.Context, repositoryPath string) (Report, error)
}

// Reader returns the raw human-readable status text of a repository.
type Reader interface {
	ReadStatus(executionContext context.Context, repositoryPath string) (string, error)
}

// TextCollector runs `git status` and parses its human-readable output.
type TextCollector struct {
	executor shared.GitExecutor
}

// NewTextCollector constructs a TextCollector.
func NewTextCollector(executor shared.GitExecutor) (*TextCollector, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &TextCollector{executor: executor}, nil
}

// ReadStatus returns the captured standard output of `git status`.
// The C locale and enabled hints keep the output in the shape ParseStatusText expects.
func (collector *TextCollector) ReadStatus(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := collector.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitConfigurationFlagConstant, gitStatusHintsSettingConstant, gitStatusSubcommandConstant},
		WorkingDirectory:     repositoryPath,
		EnvironmentVariables: map[string]string{localeEnvironmentVariableConstant: localeValueConstant},
	})
	if executionError != nil {
		return "", fmt.Errorf(statusCommandFailedTemplateConstant, repositoryPath, executionError)
	}
	return executionResult.StandardOutput, nil
}

// Collect reads and parses the repository status.
func (collector *TextCollector) Collect(executionContext context.Context, repositoryPath string) (Report, error) {
	statusText, readError := collector.ReadStatus(executionContext, repositoryPath)
	if readError != nil {
		return Report{}, readError
	}
	return ParseStatusText(statusText), nil
}
