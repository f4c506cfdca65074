package release

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const (
	stepFailedTemplateConstant         = "step %d (%s) failed: %v"
	pipelineCancelledTemplateConstant  = "release cancelled before step %d (%s): %w"
	stepStartedMessageConstant         = "Running release step"
	stepFailedMessageConstant          = "Release step failed"
	stepFailureRecordedMessageConstant = "Release step failed, continuing"
	stepSkippedMessageConstant         = "Release step skipped"
	logFieldStepIndexConstant          = "step_index"
	logFieldStepNameConstant           = "step_name"
	logFieldFailurePolicyConstant      = "failure_policy"
)

// ProgressReporter displays the announcement of each step before it runs.
type ProgressReporter interface {
	Announce(message string)
}

type silentProgressReporter struct{}

func (silentProgressReporter) Announce(string) {}

// Step is one named unit of release work.
type Step struct {
	Name         string
	Announcement string
	Run          func(executionContext context.Context) error
}

// StepOutcome records what happened to a step. Index is one-based.
type StepOutcome struct {
	Index   int
	Name    string
	Error   error
	Skipped bool
}

// Result lists the outcome of every step handed to the pipeline.
type Result struct {
	Outcomes []StepOutcome
}

// Failed reports whether any step returned an error.
func (result Result) Failed() bool {
	for _, outcome := range result.Outcomes {
		if outcome.Error != nil {
			return true
		}
	}
	return false
}

// Failures returns the outcomes of failed steps.
func (result Result) Failures() []StepOutcome {
	var failures []StepOutcome
	for _, outcome := range result.Outcomes {
		if outcome.Error != nil {
			failures = append(failures, outcome)
		}
	}
	return failures
}

// StepFailedError reports the step that stopped an aborting pipeline.
type StepFailedError struct {
	StepIndex int
	StepName  string
	Cause     error
}

// Error describes the failing step.
func (failure StepFailedError) Error() string {
	return fmt.Sprintf(stepFailedTemplateConstant, failure.StepIndex, failure.StepName, failure.Cause)
}

// Unwrap exposes the step's error.
func (failure StepFailedError) Unwrap() error {
	return failure.Cause
}

// Pipeline runs steps in order under a FailurePolicy.
type Pipeline struct {
	policy   FailurePolicy
	logger   *zap.Logger
	progress ProgressReporter
}

// NewPipeline constructs a Pipeline. Nil collaborators are replaced with silent defaults.
func NewPipeline(policy FailurePolicy, logger *zap.Logger, progress ProgressReporter) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if progress == nil {
		progress = silentProgressReporter{}
	}
	if len(policy) == 0 {
		policy = FailurePolicyAbort
	}
	return &Pipeline{policy: policy, logger: logger, progress: progress}
}

// Run executes the steps. Under FailurePolicyAbort the first failure marks the remaining
// steps skipped and is returned as StepFailedError. Under FailurePolicyContinue failures
// are logged and recorded in the Result only. A cancelled context stops the run under either policy.
func (pipeline *Pipeline) Run(executionContext context.Context, steps []Step) (Result, error) {
	result := Result{Outcomes: make([]StepOutcome, 0, len(steps))}

	for stepPosition, step := range steps {
		stepIndex := stepPosition + 1
		stepFields := []zap.Field{
			zap.Int(logFieldStepIndexConstant, stepIndex),
			zap.String(logFieldStepNameConstant, step.Name),
		}

		if contextError := executionContext.Err(); contextError != nil {
			pipeline.skipRemaining(&result, steps, stepPosition)
			return result, fmt.Errorf(pipelineCancelledTemplateConstant, stepIndex, step.Name, contextError)
		}

		if len(step.Announcement) > 0 {
			pipeline.progress.Announce(step.Announcement)
		}
		pipeline.logger.Debug(stepStartedMessageConstant, stepFields...)

		stepError := step.Run(executionContext)
		result.Outcomes = append(result.Outcomes, StepOutcome{Index: stepIndex, Name: step.Name, Error: stepError})
		if stepError == nil {
			continue
		}

		if pipeline.policy.StopsOnFailure() {
			pipeline.logger.Error(stepFailedMessageConstant, append(stepFields, zap.String(logFieldFailurePolicyConstant, string(pipeline.policy)), zap.Error(stepError))...)
			pipeline.skipRemaining(&result, steps, stepPosition+1)
			return result, StepFailedError{StepIndex: stepIndex, StepName: step.Name, Cause: stepError}
		}
		pipeline.logger.Warn(stepFailureRecordedMessageConstant, append(stepFields, zap.String(logFieldFailurePolicyConstant, string(pipeline.policy)), zap.Error(stepError))...)
	}

	return result, nil
}

func (pipeline *Pipeline) skipRemaining(result *Result, steps []Step, fromPosition int) {
	for position := fromPosition; position < len(steps); position++ {
		pipeline.logger.Debug(stepSkippedMessageConstant, zap.Int(logFieldStepIndexConstant, position+1), zap.String(logFieldStepNameConstant, steps[position].Name))
		result.Outcomes = append(result.Outcomes, StepOutcome{Index: position + 1, Name: steps[position].Name, Skipped: true})
	}
}
