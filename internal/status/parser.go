package status

import "strings"

const (
	untrackedSectionMarkerConstant    = `(use "git add <file>..." to include in what will be committed)`
	stagedSectionMarkerConstant       = `(use "git restore --staged <file>..." to unstage)`
	legacyStagedSectionMarkerConstant = `(use "git reset HEAD <file>..." to unstage)`
	branchLinePrefixConstant          = "On branch "
	deletedLinePrefixConstant         = "deleted:"
	modifiedLinePrefixConstant        = "modified:"
	entryKindSeparatorConstant        = ":"
	newFileKindConstant               = "new file"
	modifiedKindConstant              = "modified"
	deletedKindConstant               = "deleted"
	lineSeparatorConstant             = "\n"
)

type parserState int

const (
	parserStateIdle parserState = iota
	parserStateCreatedSection
	parserStateStagedSection
)

// ParseStatusText converts human-readable `git status` output into a Report.
//
// Parsing is line oriented: the untracked-files hint opens a section whose
// lines are untracked paths, the unstage hint opens a section of "kind: path"
// staged entries, and a blank line closes either one. Outside sections only
// the branch line and "deleted:"/"modified:" entries are read. Anything else is
// ignored, so unfamiliar output yields a partial report rather than an error.
func ParseStatusText(statusText string) Report {
	report := NewReport()
	state := parserStateIdle

	for _, rawLine := range strings.Split(statusText, lineSeparatorConstant) {
		line := strings.TrimSpace(rawLine)

		switch state {
		case parserStateCreatedSection:
			if len(line) == 0 {
				state = parserStateIdle
				continue
			}
			report.Created = append(report.Created, line)
		case parserStateStagedSection:
			if len(line) == 0 {
				state = parserStateIdle
				continue
			}
			appendStagedEntry(&report.Added, line)
		default:
			switch {
			case line == untrackedSectionMarkerConstant:
				state = parserStateCreatedSection
			case line == stagedSectionMarkerConstant || line == legacyStagedSectionMarkerConstant:
				state = parserStateStagedSection
			case strings.HasPrefix(line, branchLinePrefixConstant):
				report.Branch = strings.TrimSpace(strings.TrimPrefix(line, branchLinePrefixConstant))
			case strings.HasPrefix(line, deletedLinePrefixConstant):
				report.Deleted = append(report.Deleted, strings.TrimSpace(strings.TrimPrefix(line, deletedLinePrefixConstant)))
			case strings.HasPrefix(line, modifiedLinePrefixConstant):
				report.Modified = append(report.Modified, strings.TrimSpace(strings.TrimPrefix(line, modifiedLinePrefixConstant)))
			}
		}
	}

	return report
}

func appendStagedEntry(changes *StagedChanges, line string) {
	kind, path, hasSeparator := strings.Cut(line, entryKindSeparatorConstant)
	if !hasSeparator {
		return
	}
	kind = strings.TrimSpace(kind)
	path = strings.TrimSpace(path)

	switch kind {
	case newFileKindConstant:
		changes.Created = append(changes.Created, path)
	case modifiedKindConstant:
		changes.Modified = append(changes.Modified, path)
	case deletedKindConstant:
		changes.Deleted = append(changes.Deleted, path)
	default:
		changes.addOther(kind, path)
	}
}
