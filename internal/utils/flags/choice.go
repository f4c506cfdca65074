package flags

import (
	"fmt"
	"strings"
)

// FormatChoiceUsage renders "`<a|B|c>` description" with the default choice upper-cased.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	renderedChoices := make([]string, 0, len(choices))
	seenChoices := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		normalizedChoice := strings.ToLower(strings.TrimSpace(choice))
		if len(normalizedChoice) == 0 {
			continue
		}
		if _, seen := seenChoices[normalizedChoice]; seen {
			continue
		}
		seenChoices[normalizedChoice] = struct{}{}
		if normalizedChoice == normalizedDefault {
			normalizedChoice = strings.ToUpper(normalizedChoice)
		}
		renderedChoices = append(renderedChoices, normalizedChoice)
	}

	placeholder := fmt.Sprintf("`<%s>`", strings.Join(renderedChoices, "|"))
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return placeholder
	}
	return placeholder + " " + trimmedDescription
}
