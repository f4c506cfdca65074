package shared

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/temirov/repokeeper/internal/execshell"
)

const (
	// OriginRemoteNameConstant identifies the remote pushed to by the release workflow.
	OriginRemoteNameConstant = "origin"
	// DefaultReleaseBranchConstant identifies the branch pushed to by the release workflow.
	DefaultReleaseBranchConstant = "master"

	repositoryPathEmptyMessageConstant       = "repository path must not be empty"
	repositoryPathLineBreakMessageConstant   = "repository path must not contain line breaks"
	repositoryPathNotAbsoluteMessageConstant = "repository path must be absolute"
	lineBreakCharactersConstant              = "\r\n"
)

// ErrRepositoryPathEmpty reports a blank repository path.
var ErrRepositoryPathEmpty = errors.New(repositoryPathEmptyMessageConstant)

// ErrRepositoryPathLineBreak reports a repository path containing a line break.
var ErrRepositoryPathLineBreak = errors.New(repositoryPathLineBreakMessageConstant)

// ErrRepositoryPathNotAbsolute reports a relative repository path.
var ErrRepositoryPathNotAbsolute = errors.New(repositoryPathNotAbsoluteMessageConstant)

// RepositoryPath is the absolute, cleaned path of a repository working copy.
type RepositoryPath struct {
	value string
}

// NewRepositoryPath validates and normalizes a repository path.
func NewRepositoryPath(rawPath string) (RepositoryPath, error) {
	if strings.ContainsAny(rawPath, lineBreakCharactersConstant) {
		return RepositoryPath{}, ErrRepositoryPathLineBreak
	}
	trimmedPath := strings.TrimSpace(rawPath)
	if len(trimmedPath) == 0 {
		return RepositoryPath{}, ErrRepositoryPathEmpty
	}
	if !filepath.IsAbs(trimmedPath) {
		return RepositoryPath{}, ErrRepositoryPathNotAbsolute
	}
	return RepositoryPath{value: filepath.Clean(trimmedPath)}, nil
}

// String returns the path.
func (path RepositoryPath) String() string {
	return path.value
}

// FileSystem exposes the file operations used by repository services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
	Abs(path string) (string, error)
}

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CommandExecutor runs arbitrary executables.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// RepositoryDiscoverer locates Git repositories for bulk operations.
type RepositoryDiscoverer interface {
	DiscoverRepositories(roots []string) ([]string, error)
}
