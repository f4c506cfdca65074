package release_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/repokeeper/internal/release"
)

type recordingProgressReporter struct {
	announcements []string
}

func (reporter *recordingProgressReporter) Announce(message string) {
	reporter.announcements = append(reporter.announcements, message)
}

type stepRecorder struct {
	executed []string
}

func (recorder *stepRecorder) step(name string, stepError error) release.Step {
	return release.Step{
		Name:         name,
		Announcement: name + "...",
		Run: func(context.Context) error {
			recorder.executed = append(recorder.executed, name)
			return stepError
		},
	}
}

func TestParseFailurePolicy(testInstance *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expected    release.FailurePolicy
		expectError bool
	}{
		{name: "blank_defaults_to_abort", input: "", expected: release.FailurePolicyAbort},
		{name: "abort", input: "abort", expected: release.FailurePolicyAbort},
		{name: "continue_mixed_case", input: " Continue ", expected: release.FailurePolicyContinue},
		{name: "unknown", input: "retry", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			policy, parseError := release.ParseFailurePolicy(testCase.input)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expected, policy)
		})
	}
}

func TestPipelineAbortStopsAtFirstFailure(testInstance *testing.T) {
	commitFailure := errors.New("nothing to commit")
	recorder := &stepRecorder{}
	progress := &recordingProgressReporter{}
	observedCore, observedLogs := observer.New(zapcore.DebugLevel)

	pipeline := release.NewPipeline(release.FailurePolicyAbort, zap.New(observedCore), progress)
	result, runError := pipeline.Run(context.Background(), []release.Step{
		recorder.step("add", nil),
		recorder.step("commit", commitFailure),
		recorder.step("push", nil),
		recorder.step("publish", nil),
	})

	var stepFailure release.StepFailedError
	require.ErrorAs(testInstance, runError, &stepFailure)
	require.Equal(testInstance, 2, stepFailure.StepIndex)
	require.Equal(testInstance, "commit", stepFailure.StepName)
	require.ErrorIs(testInstance, runError, commitFailure)
	require.EqualError(testInstance, runError, "step 2 (commit) failed: nothing to commit")

	require.Equal(testInstance, []string{"add", "commit"}, recorder.executed)
	require.Equal(testInstance, []string{"add...", "commit..."}, progress.announcements)
	require.True(testInstance, result.Failed())
	require.Len(testInstance, result.Outcomes, 4)
	require.False(testInstance, result.Outcomes[1].Skipped)
	require.True(testInstance, result.Outcomes[2].Skipped)
	require.True(testInstance, result.Outcomes[3].Skipped)
	require.Equal(testInstance, 4, result.Outcomes[3].Index)
	require.Equal(testInstance, 1, observedLogs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestPipelineContinueRunsEveryStep(testInstance *testing.T) {
	pushFailure := errors.New("remote rejected")
	publishFailure := errors.New("registry unavailable")
	recorder := &stepRecorder{}
	observedCore, observedLogs := observer.New(zapcore.WarnLevel)

	pipeline := release.NewPipeline(release.FailurePolicyContinue, zap.New(observedCore), nil)
	result, runError := pipeline.Run(context.Background(), []release.Step{
		recorder.step("add", nil),
		recorder.step("push", pushFailure),
		recorder.step("publish", publishFailure),
		recorder.step("install", nil),
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, []string{"add", "push", "publish", "install"}, recorder.executed)
	require.True(testInstance, result.Failed())

	failures := result.Failures()
	require.Len(testInstance, failures, 2)
	require.Equal(testInstance, 2, failures[0].Index)
	require.ErrorIs(testInstance, failures[0].Error, pushFailure)
	require.Equal(testInstance, 3, failures[1].Index)
	require.ErrorIs(testInstance, failures[1].Error, publishFailure)
	require.Equal(testInstance, 2, observedLogs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestPipelineStopsOnCancelledContext(testInstance *testing.T) {
	recorder := &stepRecorder{}
	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	result, runError := release.NewPipeline(release.FailurePolicyContinue, nil, nil).Run(cancelledContext, []release.Step{
		recorder.step("add", nil),
		recorder.step("commit", nil),
	})

	require.ErrorIs(testInstance, runError, context.Canceled)
	require.Empty(testInstance, recorder.executed)
	require.Len(testInstance, result.Outcomes, 2)
	require.True(testInstance, result.Outcomes[0].Skipped)
	require.False(testInstance, result.Failed())
}

func TestPipelineSucceedsWithoutSteps(testInstance *testing.T) {
	result, runError := release.NewPipeline(release.FailurePolicyAbort, nil, nil).Run(context.Background(), nil)
	require.NoError(testInstance, runError)
	require.Empty(testInstance, result.Outcomes)
	require.False(testInstance, result.Failed())
}
