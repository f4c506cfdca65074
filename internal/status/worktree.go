package status

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"
)

const (
	renamedKindConstant                  = "renamed"
	copiedKindConstant                   = "copied"
	unmergedKindConstant                 = "unmerged"
	worktreeOpenFailedTemplateConstant   = "unable to open repository %s: %w"
	worktreeStatusFailedTemplateConstant = "unable to read worktree status of %s: %w"
	worktreeFallbackMessageConstant      = "falling back to git status output"
	logFieldRepositoryPathConstant       = "repository_path"
)

// WorktreeCollector builds reports from go-git's structured worktree status.
type WorktreeCollector struct {
	fallback Collector
	logger   *zap.Logger
}

// NewWorktreeCollector constructs a WorktreeCollector. A nil fallback disables falling back.
func NewWorktreeCollector(fallback Collector, logger *zap.Logger) *WorktreeCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorktreeCollector{fallback: fallback, logger: logger}
}

// Collect maps the staging and worktree codes of every changed path into a Report.
func (collector *WorktreeCollector) Collect(executionContext context.Context, repositoryPath string) (Report, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return Report{}, contextError
	}

	repository, openError := git.PlainOpen(repositoryPath)
	if openError != nil {
		if collector.fallback != nil {
			collector.logger.Debug(worktreeFallbackMessageConstant, zap.String(logFieldRepositoryPathConstant, repositoryPath), zap.Error(openError))
			return collector.fallback.Collect(executionContext, repositoryPath)
		}
		return Report{}, fmt.Errorf(worktreeOpenFailedTemplateConstant, repositoryPath, openError)
	}

	worktree, worktreeError := repository.Worktree()
	if worktreeError != nil {
		return Report{}, fmt.Errorf(worktreeStatusFailedTemplateConstant, repositoryPath, worktreeError)
	}
	worktreeStatus, statusError := worktree.Status()
	if statusError != nil {
		return Report{}, fmt.Errorf(worktreeStatusFailedTemplateConstant, repositoryPath, statusError)
	}

	report := NewReport()
	report.Branch = currentBranch(repository)

	changedPaths := make([]string, 0, len(worktreeStatus))
	for changedPath := range worktreeStatus {
		changedPaths = append(changedPaths, changedPath)
	}
	sort.Strings(changedPaths)

	for _, changedPath := range changedPaths {
		fileStatus := worktreeStatus[changedPath]

		switch fileStatus.Staging {
		case git.Added:
			report.Added.Created = append(report.Added.Created, changedPath)
		case git.Modified:
			report.Added.Modified = append(report.Added.Modified, changedPath)
		case git.Deleted:
			report.Added.Deleted = append(report.Added.Deleted, changedPath)
		case git.Renamed:
			report.Added.addOther(renamedKindConstant, changedPath)
		case git.Copied:
			report.Added.addOther(copiedKindConstant, changedPath)
		case git.UpdatedButUnmerged:
			report.Added.addOther(unmergedKindConstant, changedPath)
		}

		switch fileStatus.Worktree {
		case git.Untracked:
			report.Created = append(report.Created, changedPath)
		case git.Modified:
			report.Modified = append(report.Modified, changedPath)
		case git.Deleted:
			report.Deleted = append(report.Deleted, changedPath)
		}
	}

	return report, nil
}

// currentBranch returns the short branch name HEAD points to, including unborn branches.
func currentBranch(repository *git.Repository) string {
	headReference, referenceError := repository.Reference(plumbing.HEAD, false)
	if referenceError != nil {
		return ""
	}
	if headReference.Type() == plumbing.SymbolicReference && headReference.Target().IsBranch() {
		return headReference.Target().Short()
	}
	return ""
}
