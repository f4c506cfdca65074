package repos_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repokeeper/cmd/cli/repos"
)

const (
	testPublishedManifestConstant = "{\n  \"name\": \"tool\",\n  \"version\": \"1.2.3\",\n  \"publish\": true\n}\n"
	testUpgradedManifestConstant  = "{\n  \"name\": \"tool\",\n  \"version\": \"0.9.9\",\n  \"publish\": 1,\n  \"upgrade\": \"yes\"\n}\n"
	testPrivateManifestConstant   = "{\n  \"name\": \"tool\",\n  \"version\": \"2.0.0\",\n  \"publish\": false\n}\n"
	testManifestFileNameConstant  = "package.json"
)

func TestReleaseCommandRunsPushAndPublish(testInstance *testing.T) {
	repositoryPath := createRepository(testInstance, testInstance.TempDir(), "tool", map[string]string{testManifestFileNameConstant: testPublishedManifestConstant})
	executor := &recordingCommandExecutor{}
	progress := &recordingProgressReporter{}

	builder := repos.ReleaseCommandBuilder{ReleaseSettings: repos.ReleaseSettings{CommandExecutor: executor, ProgressReporter: progress}}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command, repositoryPath, "--branch", "main")
	require.NoError(testInstance, executionError)
	require.Empty(testInstance, output.standardError.String())
	require.Equal(testInstance, []string{
		"git add . --all",
		"git commit -m Version 1.2.4",
		"git push -u origin main",
		"npm publish .",
	}, executor.labels)
	require.Equal(testInstance, []string{
		"Updating version 1.2.4...",
		"Commit message: «Version 1.2.4».",
		"Pushing...",
		"Publishing...",
	}, progress.announcements)
	require.Contains(testInstance, readFile(testInstance, filepath.Join(repositoryPath, testManifestFileNameConstant)), "\"version\": \"1.2.4\"")
}

func TestReleaseCommandDryRunWritesNothing(testInstance *testing.T) {
	repositoryPath := createRepository(testInstance, testInstance.TempDir(), "tool", map[string]string{testManifestFileNameConstant: testUpgradedManifestConstant})
	executor := &recordingCommandExecutor{}

	builder := repos.ReleaseCommandBuilder{ReleaseSettings: repos.ReleaseSettings{CommandExecutor: executor, ProgressReporter: &recordingProgressReporter{}}}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command, repositoryPath, "--dry-run")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance,
		"PLAN: Project «"+repositoryPath+"» would be released as version 0.9.10.\n"+
			"  git add . --all\n"+
			"  git commit -m Version 0.9.10\n"+
			"  git push -u origin master\n"+
			"  npm publish .\n"+
			"  sudo yarn global remove tool\n"+
			"  sudo yarn global add tool\n",
		output.standardOutput.String())
	require.Empty(testInstance, executor.labels)
	require.Equal(testInstance, testUpgradedManifestConstant, readFile(testInstance, filepath.Join(repositoryPath, testManifestFileNameConstant)))
}

func TestReleaseCommandAbortsAfterFailedPush(testInstance *testing.T) {
	repositoryPath := createRepository(testInstance, testInstance.TempDir(), "tool", map[string]string{testManifestFileNameConstant: testPublishedManifestConstant})
	pushFailure := errors.New("rejected")
	executor := &recordingCommandExecutor{failures: map[string]error{"git push -u origin master": pushFailure}}

	builder := repos.ReleaseCommandBuilder{ReleaseSettings: repos.ReleaseSettings{CommandExecutor: executor, ProgressReporter: &recordingProgressReporter{}}}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	_, executionError := executeCommand(testInstance, command, repositoryPath)
	require.ErrorIs(testInstance, executionError, pushFailure)
	require.Equal(testInstance, []string{"git add . --all", "git commit -m Version 1.2.4", "git push -u origin master"}, executor.labels)
}

func TestPublishCommandContinuePolicyReportsFailures(testInstance *testing.T) {
	repositoryPath := createRepository(testInstance, testInstance.TempDir(), "tool", map[string]string{testManifestFileNameConstant: testUpgradedManifestConstant})
	executor := &recordingCommandExecutor{failures: map[string]error{"npm publish .": errors.New("forbidden")}}
	progress := &recordingProgressReporter{}

	builder := repos.PublishCommandBuilder{ReleaseSettings: repos.ReleaseSettings{CommandExecutor: executor, ProgressReporter: progress}}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command, repositoryPath, "--failure-policy", "continue")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, []string{"npm publish .", "sudo yarn global remove tool", "sudo yarn global add tool"}, executor.labels)
	require.Equal(testInstance, []string{"Publishing...", "Removing...", "Installing..."}, progress.announcements)
	require.Equal(testInstance, "Project «"+repositoryPath+"» finished with 1 failed step(s).\n", output.standardError.String())
	require.Equal(testInstance, testUpgradedManifestConstant, readFile(testInstance, filepath.Join(repositoryPath, testManifestFileNameConstant)))
}

func TestPublishCommandSkipsDisabledManifest(testInstance *testing.T) {
	repositoryPath := createRepository(testInstance, testInstance.TempDir(), "tool", map[string]string{testManifestFileNameConstant: testPrivateManifestConstant})
	executor := &recordingCommandExecutor{}

	builder := repos.PublishCommandBuilder{ReleaseSettings: repos.ReleaseSettings{CommandExecutor: executor, ProgressReporter: &recordingProgressReporter{}}}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command, repositoryPath, "--dry-run")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "PLAN: Project «"+repositoryPath+"» publish disposition skipped.\n", output.standardOutput.String())
	require.Empty(testInstance, executor.labels)
}

func TestPublishCommandRejectsUnknownPolicy(testInstance *testing.T) {
	repositoryPath := createRepository(testInstance, testInstance.TempDir(), "tool", nil)

	builder := repos.PublishCommandBuilder{ReleaseSettings: repos.ReleaseSettings{CommandExecutor: &recordingCommandExecutor{}}}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	_, executionError := executeCommand(testInstance, command, repositoryPath, "--failure-policy", "retry")
	require.ErrorContains(testInstance, executionError, "unsupported failure policy")
}

func TestVersionBumpCommand(testInstance *testing.T) {
	testCases := []struct {
		name             string
		files            map[string]string
		arguments        []string
		expectedOutput   string
		expectedManifest string
	}{
		{
			name:             "bumps patch",
			files:            map[string]string{testManifestFileNameConstant: testPublishedManifestConstant},
			expectedOutput:   "Project «%s» version 1.2.4.\n",
			expectedManifest: "{\n  \"name\": \"tool\",\n  \"version\": \"1.2.4\",\n  \"publish\": true\n}\n",
		},
		{
			name:             "dry run",
			files:            map[string]string{testManifestFileNameConstant: testPublishedManifestConstant},
			arguments:        []string{"--dry-run"},
			expectedOutput:   "PLAN: Project «%s» version would become 1.2.4.\n",
			expectedManifest: testPublishedManifestConstant,
		},
		{
			name:           "new project",
			expectedOutput: "Project «%s» has no package.json.\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			repositoryPath := createRepository(subtest, subtest.TempDir(), "tool", testCase.files)
			executor := &recordingCommandExecutor{}

			builder := repos.VersionBumpCommandBuilder{ReleaseSettings: repos.ReleaseSettings{CommandExecutor: executor}}
			command, buildError := builder.Build()
			require.NoError(subtest, buildError)

			output, executionError := executeCommand(subtest, command, append([]string{repositoryPath}, testCase.arguments...)...)
			require.NoError(subtest, executionError)
			require.Equal(subtest, fmt.Sprintf(testCase.expectedOutput, repositoryPath), output.standardOutput.String())
			require.Empty(subtest, executor.labels)
			if len(testCase.expectedManifest) > 0 {
				require.Equal(subtest, testCase.expectedManifest, readFile(subtest, filepath.Join(repositoryPath, testManifestFileNameConstant)))
			}
		})
	}
}
