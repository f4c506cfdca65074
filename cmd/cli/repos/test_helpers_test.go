package repos_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/repokeeper/internal/execshell"
)

type fakeRepositoryDiscoverer struct {
	repositories  []string
	receivedRoots []string
}

func (discoverer *fakeRepositoryDiscoverer) DiscoverRepositories(roots []string) ([]string, error) {
	discoverer.receivedRoots = append([]string{}, roots...)
	return append([]string{}, discoverer.repositories...), nil
}

type fakeGitExecutor struct {
	statusByDirectory map[string]string
	failures          map[string]error
}

func (executor *fakeGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	if failure, found := executor.failures[details.WorkingDirectory]; found {
		return execshell.ExecutionResult{}, failure
	}
	return execshell.ExecutionResult{StandardOutput: executor.statusByDirectory[details.WorkingDirectory]}, nil
}

type recordingCommandExecutor struct {
	labels   []string
	failures map[string]error
}

func (executor *recordingCommandExecutor) Execute(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.labels = append(executor.labels, command.Label())
	if failure, found := executor.failures[command.Label()]; found {
		return execshell.ExecutionResult{}, failure
	}
	return execshell.ExecutionResult{}, nil
}

type recordingProgressReporter struct {
	announcements []string
}

func (reporter *recordingProgressReporter) Announce(message string) {
	reporter.announcements = append(reporter.announcements, message)
}

type commandOutput struct {
	standardOutput bytes.Buffer
	standardError  bytes.Buffer
}

func executeCommand(testInstance *testing.T, command *cobra.Command, arguments ...string) (*commandOutput, error) {
	testInstance.Helper()
	output := &commandOutput{}
	command.SetContext(context.Background())
	command.SetOut(&output.standardOutput)
	command.SetErr(&output.standardError)
	command.SetArgs(arguments)
	return output, command.Execute()
}

func createRepository(testInstance *testing.T, parent string, name string, files map[string]string) string {
	testInstance.Helper()
	repositoryPath := filepath.Join(parent, name)
	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryPath, ".git"), 0o755))
	for relativePath, content := range files {
		require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryPath, relativePath), []byte(content), 0o644))
	}
	return repositoryPath
}

func readFile(testInstance *testing.T, path string) string {
	testInstance.Helper()
	content, readError := os.ReadFile(path)
	require.NoError(testInstance, readError)
	return string(content)
}
