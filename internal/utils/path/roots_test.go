package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/repokeeper/internal/utils/path"
)

const testHomeDirectoryConstant = "/home/tester"

func TestHomeExpanderExpand(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "bare_tilde", input: "~", expected: testHomeDirectoryConstant},
		{name: "tilde_slash", input: "~/code", expected: "/home/tester/code"},
		{name: "other_user", input: "~other/code", expected: "~other/code"},
		{name: "absolute", input: "/srv/code", expected: "/srv/code"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, expander.Expand(testCase.input))
		})
	}
}

func TestHomeExpanderLeavesInputWhenLookupFails(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New("no home")
	})
	require.Equal(testInstance, "~/code", expander.Expand("~/code"))
}

func TestRootSanitizerSanitize(testInstance *testing.T) {
	workingDirectory, workingDirectoryError := filepath.Abs(".")
	require.NoError(testInstance, workingDirectoryError)

	sanitizer := pathutils.NewRootSanitizerWithExpander(pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	}))

	testCases := []struct {
		name     string
		inputs   []string
		expected []string
	}{
		{
			name:     "blank_inputs_dropped",
			inputs:   []string{"", "  ", "\t/srv/code "},
			expected: []string{"/srv/code"},
		},
		{
			name:     "nested_and_duplicate_roots_pruned",
			inputs:   []string{"~/code/tool", "/srv", "~/code", "/srv/"},
			expected: []string{"/srv", "/home/tester/code"},
		},
		{
			name:     "sibling_prefix_retained",
			inputs:   []string{"/srv/code", "/srv/code-archive"},
			expected: []string{"/srv/code", "/srv/code-archive"},
		},
		{
			name:     "relative_resolved",
			inputs:   []string{"projects"},
			expected: []string{filepath.Join(workingDirectory, "projects")},
		},
		{
			name:   "nothing_left",
			inputs: []string{" "},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, sanitizer.Sanitize(testCase.inputs))
		})
	}
}
