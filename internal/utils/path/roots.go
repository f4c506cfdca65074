package pathutils

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RootSanitizer turns user supplied search roots into absolute, non-overlapping paths.
type RootSanitizer struct {
	homeExpander *HomeExpander
}

// NewRootSanitizer constructs a RootSanitizer using the operating system home lookup.
func NewRootSanitizer() *RootSanitizer {
	return NewRootSanitizerWithExpander(nil)
}

// NewRootSanitizerWithExpander constructs a RootSanitizer with a custom home expander.
func NewRootSanitizerWithExpander(homeExpander *HomeExpander) *RootSanitizer {
	if homeExpander == nil {
		homeExpander = NewHomeExpander()
	}
	return &RootSanitizer{homeExpander: homeExpander}
}

// Sanitize trims blanks, expands ~, makes paths absolute and drops roots nested inside other roots.
// The relative order of the surviving roots is preserved.
func (sanitizer *RootSanitizer) Sanitize(candidateRoots []string) []string {
	absoluteRoots := make([]string, 0, len(candidateRoots))
	for _, candidateRoot := range candidateRoots {
		trimmedRoot := strings.TrimSpace(candidateRoot)
		if len(trimmedRoot) == 0 {
			continue
		}
		expandedRoot := sanitizer.homeExpander.Expand(trimmedRoot)
		absoluteRoot, absoluteError := filepath.Abs(expandedRoot)
		if absoluteError != nil {
			absoluteRoot = filepath.Clean(expandedRoot)
		}
		absoluteRoots = append(absoluteRoots, absoluteRoot)
	}
	return PruneNestedPaths(absoluteRoots)
}

// PruneNestedPaths removes duplicates and paths located inside another listed path.
func PruneNestedPaths(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}

	byLength := append([]string(nil), paths...)
	sort.SliceStable(byLength, func(first int, second int) bool {
		return len(byLength[first]) < len(byLength[second])
	})

	retained := make(map[string]struct{}, len(byLength))
	for _, candidate := range byLength {
		covered := false
		for parent := range retained {
			if isWithin(parent, candidate) {
				covered = true
				break
			}
		}
		if !covered {
			retained[candidate] = struct{}{}
		}
	}

	pruned := make([]string, 0, len(retained))
	for _, path := range paths {
		if _, keep := retained[path]; keep {
			pruned = append(pruned, path)
			delete(retained, path)
		}
	}
	return pruned
}

func isWithin(parent string, candidate string) bool {
	if parent == candidate {
		return true
	}
	prefix := parent
	if !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix += string(os.PathSeparator)
	}
	return strings.HasPrefix(candidate, prefix)
}
