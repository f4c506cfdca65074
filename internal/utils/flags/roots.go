// Package flags binds the flags shared by several repokeeper commands.
package flags

import "github.com/spf13/cobra"

const (
	// RootFlagName names the repeatable search root flag.
	RootFlagName = "root"
	// RootFlagUsage describes the search root flag.
	RootFlagUsage = "Directory to search for repositories (repeatable)"
	// DryRunFlagName names the dry-run flag.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the dry-run flag.
	DryRunFlagUsage = "Print the planned changes without performing them"
)

// BindRootFlag registers --root on the command and returns the slice it fills.
func BindRootFlag(command *cobra.Command) *[]string {
	roots := []string{}
	if command.Flags().Lookup(RootFlagName) == nil {
		command.Flags().StringSliceVar(&roots, RootFlagName, nil, RootFlagUsage)
	}
	return &roots
}

// BindDryRunFlag registers --dry-run on the command.
func BindDryRunFlag(command *cobra.Command) *bool {
	dryRun := false
	if command.Flags().Lookup(DryRunFlagName) == nil {
		command.Flags().BoolVar(&dryRun, DryRunFlagName, false, DryRunFlagUsage)
	}
	return &dryRun
}

// ResolveRoots prefers roots given on the command line over positional arguments and configured roots.
func ResolveRoots(flagRoots []string, positionalRoots []string, configuredRoots []string) []string {
	switch {
	case len(flagRoots) > 0:
		return append([]string{}, flagRoots...)
	case len(positionalRoots) > 0:
		return append([]string{}, positionalRoots...)
	default:
		return append([]string{}, configuredRoots...)
	}
}
