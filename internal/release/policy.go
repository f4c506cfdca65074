package release

import (
	"fmt"
	"strings"
)

const unsupportedFailurePolicyTemplateConstant = "unsupported failure policy %q (expected abort or continue)"

// FailurePolicy controls how a pipeline reacts to a failing step.
type FailurePolicy string

const (
	// FailurePolicyAbort stops the pipeline at the first failing step.
	FailurePolicyAbort FailurePolicy = FailurePolicy("abort")
	// FailurePolicyContinue runs every step and records failures.
	FailurePolicyContinue FailurePolicy = FailurePolicy("continue")
)

// ParseFailurePolicy normalizes a configured policy. Blank values select FailurePolicyAbort.
func ParseFailurePolicy(rawPolicy string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(rawPolicy))) {
	case "", FailurePolicyAbort:
		return FailurePolicyAbort, nil
	case FailurePolicyContinue:
		return FailurePolicyContinue, nil
	default:
		return "", fmt.Errorf(unsupportedFailurePolicyTemplateConstant, rawPolicy)
	}
}

// StopsOnFailure reports whether the first failure ends the pipeline.
func (policy FailurePolicy) StopsOnFailure() bool {
	return policy != FailurePolicyContinue
}
