package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandMessageFormatterDescribesReleaseCommands(testInstance *testing.T) {
	testCases := []struct {
		name            string
		command         ShellCommand
		expectedStarted string
		expectedSuccess string
	}{
		{
			name:            "status_with_configuration_overrides",
			command:         ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"-c", "advice.statusHints=true", "status"}, WorkingDirectory: "/workspace/repo"}},
			expectedStarted: "Reviewing working tree status in /workspace/repo",
			expectedSuccess: "Reviewed working tree status in /workspace/repo",
		},
		{
			name:            "add_all",
			command:         ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"add", ".", "--all"}, WorkingDirectory: "/workspace/repo"}},
			expectedStarted: "Staging all changes in /workspace/repo",
			expectedSuccess: "Staged all changes in /workspace/repo",
		},
		{
			name:            "commit",
			command:         ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"commit", "-m", "Version 1.2.4"}, WorkingDirectory: "/workspace/repo"}},
			expectedStarted: `Committing "Version 1.2.4" in /workspace/repo`,
			expectedSuccess: `Committed "Version 1.2.4" in /workspace/repo`,
		},
		{
			name:            "push_with_upstream",
			command:         ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"push", "-u", "origin", "master"}, WorkingDirectory: "/workspace/repo"}},
			expectedStarted: "Pushing master to origin in /workspace/repo",
			expectedSuccess: "Pushed master to origin in /workspace/repo",
		},
		{
			name:            "publish",
			command:         ShellCommand{Name: CommandNPM, Details: CommandDetails{Arguments: []string{"publish", "."}, WorkingDirectory: "/workspace/repo"}},
			expectedStarted: "Publishing package in /workspace/repo",
			expectedSuccess: "Published package in /workspace/repo",
		},
		{
			name:            "privileged_global_install",
			command:         ShellCommand{Name: CommandSudo, Details: CommandDetails{Arguments: []string{"yarn", "global", "add", "tool"}}},
			expectedStarted: "Installing global package tool in current directory",
			expectedSuccess: "Installed global package tool in current directory",
		},
		{
			name:            "unknown_command",
			command:         ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"--version"}}},
			expectedStarted: "Running git --version in current directory",
			expectedSuccess: "Completed git --version in current directory",
		},
	}

	formatter := CommandMessageFormatter{}
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedStarted, formatter.BuildStartedMessage(testCase.command))
			require.Equal(testInstance, testCase.expectedSuccess, formatter.BuildSuccessMessage(testCase.command))
		})
	}
}

func TestCommandMessageFormatterFailureMessages(testInstance *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{Name: CommandSudo, Details: CommandDetails{Arguments: []string{"yarn", "global", "remove", "tool"}, WorkingDirectory: "/workspace/repo"}}

	failureMessage := formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 1, StandardError: " permission denied \n"})
	require.Equal(testInstance, "Failed to remove global package tool in /workspace/repo (exit code 1: permission denied)", failureMessage)

	executionFailureMessage := formatter.BuildExecutionFailureMessage(command, errors.New("sudo not found"))
	require.Equal(testInstance, "Unable to remove global package tool in /workspace/repo: sudo not found", executionFailureMessage)
}
