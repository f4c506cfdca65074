package status

// Report summarizes the working tree of one repository.
type Report struct {
	Branch   string        `json:"branch" yaml:"branch"`
	Deleted  []string      `json:"deleted" yaml:"deleted"`
	Modified []string      `json:"modified" yaml:"modified"`
	Created  []string      `json:"created" yaml:"created"`
	Added    StagedChanges `json:"added" yaml:"added"`
}

// StagedChanges lists paths staged for the next commit.
type StagedChanges struct {
	Created  []string `json:"created" yaml:"created"`
	Modified []string `json:"modified" yaml:"modified"`
	Deleted  []string `json:"deleted" yaml:"deleted"`
	// Other groups staged entries of any other kind (renamed, copied, typechange) by kind.
	Other map[string][]string `json:"other,omitempty" yaml:"other,omitempty"`
}

// NewReport returns a report with empty, non-nil lists.
func NewReport() Report {
	return Report{
		Deleted:  []string{},
		Modified: []string{},
		Created:  []string{},
		Added: StagedChanges{
			Created:  []string{},
			Modified: []string{},
			Deleted:  []string{},
		},
	}
}

// StagedCount returns the number of staged paths.
func (report Report) StagedCount() int {
	count := len(report.Added.Created) + len(report.Added.Modified) + len(report.Added.Deleted)
	for _, otherPaths := range report.Added.Other {
		count += len(otherPaths)
	}
	return count
}

// ChangeCount returns the number of listed paths across all categories.
func (report Report) ChangeCount() int {
	return len(report.Deleted) + len(report.Modified) + len(report.Created) + report.StagedCount()
}

// IsClean reports whether no changes were found.
func (report Report) IsClean() bool {
	return report.ChangeCount() == 0
}

func (changes *StagedChanges) addOther(kind string, path string) {
	if changes.Other == nil {
		changes.Other = map[string][]string{}
	}
	changes.Other[kind] = append(changes.Other[kind], path)
}
