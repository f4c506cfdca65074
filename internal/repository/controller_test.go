package repository_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/repokeeper/internal/execshell"
	"github.com/temirov/repokeeper/internal/manifest"
	"github.com/temirov/repokeeper/internal/release"
	"github.com/temirov/repokeeper/internal/repos/filesystem"
	"github.com/temirov/repokeeper/internal/repos/shared"
	"github.com/temirov/repokeeper/internal/repository"
	"github.com/temirov/repokeeper/internal/status"
)

const (
	testConfigurationConstant = "[core]\n\trepositoryformatversion = 0\n[remote \"origin\"]\n    url = git@github.com:user/repo.git\n\tfetch = +refs/heads/*:refs/remotes/origin/*\n[remote \"mirror\"]\n\turl = https://github.com/user/repo.git\n"
	testStatusTextConstant    = "On branch feature/x\nChanges not staged for commit:\n  (use \"git add <file>...\" to update what will be committed)\n\n\tmodified:   a.txt\n\tmodified:   b.txt\n\n"
)

type staticStatusReader struct {
	text          string
	readError     error
	requestedPath string
}

func (reader *staticStatusReader) ReadStatus(executionContext context.Context, repositoryPath string) (string, error) {
	reader.requestedPath = repositoryPath
	return reader.text, reader.readError
}

type staticStatusCollector struct {
	report status.Report
}

func (collector staticStatusCollector) Collect(context.Context, string) (status.Report, error) {
	return collector.report, nil
}

type recordingCommandExecutor struct {
	labels []string
}

func (executor *recordingCommandExecutor) Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.labels = append(executor.labels, command.Label())
	return execshell.ExecutionResult{}, nil
}

func createRepository(testInstance *testing.T, configuration string) string {
	testInstance.Helper()
	repositoryPath := testInstance.TempDir()
	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryPath, ".git"), 0o755))
	if len(configuration) > 0 {
		require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryPath, ".git", "config"), []byte(configuration), 0o644))
	}
	return repositoryPath
}

func readConfiguration(testInstance *testing.T, repositoryPath string) string {
	testInstance.Helper()
	content, readError := os.ReadFile(filepath.Join(repositoryPath, ".git", "config"))
	require.NoError(testInstance, readError)
	return string(content)
}

func TestNewControllerRejectsInvalidPaths(testInstance *testing.T) {
	testCases := []struct {
		name          string
		path          string
		expectedError error
	}{
		{name: "empty", path: " ", expectedError: shared.ErrRepositoryPathEmpty},
		{name: "relative", path: "projects/tool", expectedError: shared.ErrRepositoryPathNotAbsolute},
		{name: "line_break", path: "/projects/tool\n", expectedError: shared.ErrRepositoryPathLineBreak},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, controllerError := repository.NewController(testCase.path, repository.Dependencies{})
			require.ErrorIs(testInstance, controllerError, testCase.expectedError)
		})
	}
}

func TestControllerGetOrigin(testInstance *testing.T) {
	testCases := []struct {
		name           string
		configuration  string
		expectedOrigin string
		expectError    bool
	}{
		{name: "ssh_origin", configuration: testConfigurationConstant, expectedOrigin: "git@github.com:user/repo.git"},
		{name: "https_only", configuration: "[remote \"origin\"]\n\turl = https://github.com/user/repo.git\n", expectedOrigin: ""},
		{name: "missing_configuration", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			controller, controllerError := repository.NewController(createRepository(testInstance, testCase.configuration), repository.Dependencies{})
			require.NoError(testInstance, controllerError)

			origin, originError := controller.GetOrigin()
			if testCase.expectError {
				require.ErrorIs(testInstance, originError, os.ErrNotExist)
				return
			}
			require.NoError(testInstance, originError)
			require.Equal(testInstance, testCase.expectedOrigin, origin)
		})
	}
}

func TestControllerChangeOriginHost(testInstance *testing.T) {
	testCases := []struct {
		name            string
		fromHost        string
		toHost          string
		expectedChanged bool
		expectedOrigin  string
		expectedReport  string
	}{
		{
			name:            "matching_host",
			fromHost:        "github.com",
			toHost:          "internal.example.com",
			expectedChanged: true,
			expectedOrigin:  "git@internal.example.com:user/repo.git",
			expectedReport:  "origin host changed from «github.com» to «internal.example.com».\n",
		},
		{
			name:           "non_matching_host",
			fromHost:       "gitlab.com",
			toHost:         "internal.example.com",
			expectedOrigin: "git@github.com:user/repo.git",
		},
		{
			name:            "any_host",
			fromHost:        "any",
			toHost:          "x",
			expectedChanged: true,
			expectedOrigin:  "git@x:user/repo.git",
			expectedReport:  "origin host changed from «any» to «x».\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repositoryPath := createRepository(testInstance, testConfigurationConstant)
			var reportOutput bytes.Buffer
			controller, controllerError := repository.NewController(repositoryPath, repository.Dependencies{Reporter: shared.NewWriterReporter(&reportOutput)})
			require.NoError(testInstance, controllerError)

			changed, changeError := controller.ChangeOriginHost(testCase.fromHost, testCase.toHost)
			require.NoError(testInstance, changeError)
			require.Equal(testInstance, testCase.expectedChanged, changed)

			origin, originError := controller.GetOrigin()
			require.NoError(testInstance, originError)
			require.Equal(testInstance, testCase.expectedOrigin, origin)

			if !testCase.expectedChanged {
				require.Empty(testInstance, reportOutput.String())
				require.Equal(testInstance, testConfigurationConstant, readConfiguration(testInstance, repositoryPath))
				return
			}
			require.Equal(testInstance, "Project «"+controller.Path().String()+"» "+testCase.expectedReport, reportOutput.String())
		})
	}
}

func TestControllerInverseHostChangesRestoreConfiguration(testInstance *testing.T) {
	repositoryPath := createRepository(testInstance, testConfigurationConstant)
	controller, controllerError := repository.NewController(repositoryPath, repository.Dependencies{Reporter: shared.NewWriterReporter(&bytes.Buffer{})})
	require.NoError(testInstance, controllerError)

	_, forwardError := controller.ChangeOriginHost("github.com", "internal.example.com")
	require.NoError(testInstance, forwardError)
	require.NotEqual(testInstance, testConfigurationConstant, readConfiguration(testInstance, repositoryPath))

	_, inverseError := controller.ChangeOriginHost("internal.example.com", "github.com")
	require.NoError(testInstance, inverseError)
	require.Equal(testInstance, testConfigurationConstant, readConfiguration(testInstance, repositoryPath))
}

func TestControllerChangeOriginHostLogsOriginRepository(testInstance *testing.T) {
	repositoryPath := createRepository(testInstance, testConfigurationConstant)
	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	controller, controllerError := repository.NewController(repositoryPath, repository.Dependencies{
		Reporter: shared.NewWriterReporter(&bytes.Buffer{}),
		Logger:   zap.New(observedCore),
	})
	require.NoError(testInstance, controllerError)

	changed, changeError := controller.ChangeOriginHost("github.com", "internal.example.com")
	require.NoError(testInstance, changeError)
	require.True(testInstance, changed)

	entries := observedLogs.FilterMessage("Changed origin host").All()
	require.Len(testInstance, entries, 1)
	require.Equal(testInstance, "user/repo", entries[0].ContextMap()["origin_repository"])
	require.Equal(testInstance, "github.com", entries[0].ContextMap()["from_host"])
}

func TestControllerStatusOperations(testInstance *testing.T) {
	repositoryPath := createRepository(testInstance, testConfigurationConstant)
	reader := &staticStatusReader{text: testStatusTextConstant}
	controller, controllerError := repository.NewController(repositoryPath, repository.Dependencies{StatusReader: reader})
	require.NoError(testInstance, controllerError)

	statusText, statusError := controller.GetStatus(context.Background())
	require.NoError(testInstance, statusError)
	require.Equal(testInstance, testStatusTextConstant, statusText)
	require.Equal(testInstance, controller.Path().String(), reader.requestedPath)

	report, statsError := controller.GetStats(context.Background())
	require.NoError(testInstance, statsError)
	require.Equal(testInstance, "feature/x", report.Branch)
	require.Equal(testInstance, []string{"a.txt", "b.txt"}, report.Modified)
}

func TestControllerStatusPropagatesFailures(testInstance *testing.T) {
	readFailure := errors.New("fatal: not a git repository")
	controller, controllerError := repository.NewController(createRepository(testInstance, ""), repository.Dependencies{StatusReader: &staticStatusReader{readError: readFailure}})
	require.NoError(testInstance, controllerError)

	_, statsError := controller.GetStats(context.Background())
	require.ErrorIs(testInstance, statsError, readFailure)

	unconfigured, unconfiguredError := repository.NewController(createRepository(testInstance, ""), repository.Dependencies{})
	require.NoError(testInstance, unconfiguredError)
	_, statusError := unconfigured.GetStatus(context.Background())
	require.ErrorIs(testInstance, statusError, repository.ErrStatusReaderNotConfigured)
}

func TestControllerGetStatsPrefersCollector(testInstance *testing.T) {
	collectedReport := status.NewReport()
	collectedReport.Branch = "main"
	controller, controllerError := repository.NewController(createRepository(testInstance, ""), repository.Dependencies{
		StatusReader:    &staticStatusReader{readError: errors.New("unused")},
		StatusCollector: staticStatusCollector{report: collectedReport},
	})
	require.NoError(testInstance, controllerError)

	report, statsError := controller.GetStats(context.Background())
	require.NoError(testInstance, statsError)
	require.Equal(testInstance, "main", report.Branch)
}

func TestControllerReleaseOperations(testInstance *testing.T) {
	repositoryPath := createRepository(testInstance, testConfigurationConstant)
	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryPath, manifest.FileName), []byte("{\n  \"name\": \"tool\",\n  \"version\": \"1.2.3\",\n  \"publish\": true\n}\n"), 0o644))

	executor := &recordingCommandExecutor{}
	releaser, releaserError := release.NewService(executor, manifest.NewStore(filesystem.OSFileSystem{}), nil, zap.NewNop(), release.Options{})
	require.NoError(testInstance, releaserError)
	controller, controllerError := repository.NewController(repositoryPath, repository.Dependencies{Releaser: releaser})
	require.NoError(testInstance, controllerError)

	version, versionError := controller.UpdateVersion()
	require.NoError(testInstance, versionError)
	require.Equal(testInstance, "1.2.4", version)
	require.Empty(testInstance, executor.labels)

	outcome, publishError := controller.Publish(context.Background())
	require.NoError(testInstance, publishError)
	require.Equal(testInstance, release.PublishDispositionPublished, outcome.Disposition)
	require.Equal(testInstance, []string{"npm publish ."}, executor.labels)

	pushOutcome, pushError := controller.Push(context.Background())
	require.NoError(testInstance, pushError)
	require.Equal(testInstance, "1.2.5", pushOutcome.Version)
	require.Equal(testInstance, []string{"npm publish .", "git add . --all", "git commit -m Version 1.2.5", "git push -u origin master", "npm publish ."}, executor.labels)
}

func TestControllerReleaseRequiresService(testInstance *testing.T) {
	controller, controllerError := repository.NewController(createRepository(testInstance, ""), repository.Dependencies{})
	require.NoError(testInstance, controllerError)

	_, versionError := controller.UpdateVersion()
	require.ErrorIs(testInstance, versionError, repository.ErrReleaseServiceNotConfigured)
	_, pushError := controller.Push(context.Background())
	require.ErrorIs(testInstance, pushError, repository.ErrReleaseServiceNotConfigured)
}
