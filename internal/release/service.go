package release

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repokeeper/internal/execshell"
	"github.com/temirov/repokeeper/internal/manifest"
	"github.com/temirov/repokeeper/internal/repos/shared"
)

const (
	commitMessageTemplateConstant       = "Version %s"
	updatingVersionAnnouncementTemplate = "Updating version %s..."
	commitMessageAnnouncementTemplate   = "Commit message: «%s»."
	pushingAnnouncementConstant         = "Pushing..."
	publishingAnnouncementConstant      = "Publishing..."
	removingAnnouncementConstant        = "Removing..."
	installingAnnouncementConstant      = "Installing..."
	gitAddCommandConstant               = "add"
	gitAddCurrentDirectoryConstant      = "."
	gitAddAllFlagConstant               = "--all"
	gitCommitCommandConstant            = "commit"
	gitCommitMessageFlagConstant        = "-m"
	gitPushCommandConstant              = "push"
	gitPushUpstreamFlagConstant         = "-u"
	packagePublishCommandConstant       = "publish"
	packagePublishTargetConstant        = "."
	globalScopeConstant                 = "global"
	globalRemoveCommandConstant         = "remove"
	globalAddCommandConstant            = "add"
	versionBumpErrorTemplateConstant    = "unable to bump version in %s: %w"
	manifestLoadErrorTemplateConstant   = "unable to load manifest in %s: %w"
	releaseStartedMessageConstant       = "Releasing repository"
	versionUpdatedMessageConstant       = "Updated manifest version"
	publishResolvedMessageConstant      = "Resolved publish disposition"
	logFieldRepositoryConstant          = "repository"
	logFieldVersionConstant             = "version"
	logFieldDispositionConstant         = "disposition"
	missingExecutorMessageConstant      = "release service requires a command executor"
	missingManifestStoreMessageConstant = "release service requires a manifest store"
)

// ErrCommandExecutorNotConfigured indicates the service was constructed without an executor.
var ErrCommandExecutorNotConfigured = errors.New(missingExecutorMessageConstant)

// ErrManifestStoreNotConfigured indicates the service was constructed without a manifest store.
var ErrManifestStoreNotConfigured = errors.New(missingManifestStoreMessageConstant)

// PublishDisposition summarizes what publishing did for a repository.
type PublishDisposition string

const (
	// PublishDispositionNewProject marks a repository without a manifest.
	PublishDispositionNewProject PublishDisposition = PublishDisposition(manifest.NewProjectMarker)
	// PublishDispositionDisabled marks a manifest whose publish member is falsy.
	PublishDispositionDisabled PublishDisposition = PublishDisposition("skipped")
	// PublishDispositionPublished marks a package published without a global reinstall.
	PublishDispositionPublished PublishDisposition = PublishDisposition("published")
	// PublishDispositionUpgraded marks a package published and reinstalled globally.
	PublishDispositionUpgraded PublishDisposition = PublishDisposition("upgraded")
)

// Options configures the commands a release runs.
type Options struct {
	RemoteName       string
	BranchName       string
	FailurePolicy    FailurePolicy
	PackageManager   string
	GlobalManager    string
	PrivilegeCommand string
}

// Outcome reports the result of a push or publish.
type Outcome struct {
	Version     string
	Disposition PublishDisposition
	Steps       Result
}

// Plan describes what a push or publish would do without doing it.
type Plan struct {
	Version     string
	Disposition PublishDisposition
	Steps       []string
}

// Service runs the release workflow for one repository at a time.
type Service struct {
	executor  shared.CommandExecutor
	manifests *manifest.Store
	progress  ProgressReporter
	logger    *zap.Logger
	options   Options
}

// NewService constructs a Service, filling blank options with the standard command names.
func NewService(executor shared.CommandExecutor, manifests *manifest.Store, progress ProgressReporter, logger *zap.Logger, options Options) (*Service, error) {
	if executor == nil {
		return nil, ErrCommandExecutorNotConfigured
	}
	if manifests == nil {
		return nil, ErrManifestStoreNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if progress == nil {
		progress = silentProgressReporter{}
	}
	return &Service{executor: executor, manifests: manifests, progress: progress, logger: logger, options: normalizeOptions(options)}, nil
}

// UpdateVersion bumps the manifest patch version. It returns manifest.NewProjectMarker without a manifest.
func (service *Service) UpdateVersion(repositoryPath shared.RepositoryPath) (string, error) {
	nextVersion, bumpError := service.manifests.BumpPatchVersion(repositoryPath.String())
	if bumpError != nil {
		return "", fmt.Errorf(versionBumpErrorTemplateConstant, repositoryPath, bumpError)
	}
	service.logger.Info(versionUpdatedMessageConstant, zap.String(logFieldRepositoryConstant, repositoryPath.String()), zap.String(logFieldVersionConstant, nextVersion))
	return nextVersion, nil
}

// Push bumps the version, then stages, commits and pushes every change before publishing.
// A failed bump is returned without running any command.
func (service *Service) Push(executionContext context.Context, repositoryPath shared.RepositoryPath) (Outcome, error) {
	service.logger.Info(releaseStartedMessageConstant, zap.String(logFieldRepositoryConstant, repositoryPath.String()))

	nextVersion, versionError := service.UpdateVersion(repositoryPath)
	if versionError != nil {
		return Outcome{}, versionError
	}
	service.progress.Announce(fmt.Sprintf(updatingVersionAnnouncementTemplate, nextVersion))

	disposition, publishSteps, publishError := service.publishSteps(repositoryPath)
	if publishError != nil {
		return Outcome{Version: nextVersion}, publishError
	}

	steps := append(service.pushSteps(repositoryPath, nextVersion), publishSteps...)
	result, runError := NewPipeline(service.options.FailurePolicy, service.logger, service.progress).Run(executionContext, steps)
	return Outcome{Version: nextVersion, Disposition: disposition, Steps: result}, runError
}

// Publish publishes the package when its manifest enables publishing and reinstalls it
// globally when the manifest enables upgrades.
func (service *Service) Publish(executionContext context.Context, repositoryPath shared.RepositoryPath) (Outcome, error) {
	disposition, steps, publishError := service.publishSteps(repositoryPath)
	if publishError != nil {
		return Outcome{}, publishError
	}
	service.logger.Info(publishResolvedMessageConstant, zap.String(logFieldRepositoryConstant, repositoryPath.String()), zap.String(logFieldDispositionConstant, string(disposition)))
	if len(steps) == 0 {
		return Outcome{Disposition: disposition}, nil
	}
	result, runError := NewPipeline(service.options.FailurePolicy, service.logger, service.progress).Run(executionContext, steps)
	return Outcome{Disposition: disposition, Steps: result}, runError
}

// PlanPush computes the next version and the commands Push would run without writing or executing anything.
func (service *Service) PlanPush(repositoryPath shared.RepositoryPath) (Plan, error) {
	nextVersion, planError := service.manifests.NextPatchVersion(repositoryPath.String())
	if planError != nil {
		return Plan{}, fmt.Errorf(versionBumpErrorTemplateConstant, repositoryPath, planError)
	}
	disposition, publishSteps, publishError := service.publishSteps(repositoryPath)
	if publishError != nil {
		return Plan{}, publishError
	}
	steps := append(service.pushSteps(repositoryPath, nextVersion), publishSteps...)
	return Plan{Version: nextVersion, Disposition: disposition, Steps: stepNames(steps)}, nil
}

// PlanPublish lists the commands Publish would run.
func (service *Service) PlanPublish(repositoryPath shared.RepositoryPath) (Plan, error) {
	disposition, steps, publishError := service.publishSteps(repositoryPath)
	if publishError != nil {
		return Plan{}, publishError
	}
	return Plan{Disposition: disposition, Steps: stepNames(steps)}, nil
}

func (service *Service) pushSteps(repositoryPath shared.RepositoryPath, version string) []Step {
	commitMessage := fmt.Sprintf(commitMessageTemplateConstant, version)
	return []Step{
		service.commandStep(repositoryPath, "", execshell.CommandGit, gitAddCommandConstant, gitAddCurrentDirectoryConstant, gitAddAllFlagConstant),
		service.commandStep(repositoryPath, fmt.Sprintf(commitMessageAnnouncementTemplate, commitMessage), execshell.CommandGit, gitCommitCommandConstant, gitCommitMessageFlagConstant, commitMessage),
		service.commandStep(repositoryPath, pushingAnnouncementConstant, execshell.CommandGit, gitPushCommandConstant, gitPushUpstreamFlagConstant, service.options.RemoteName, service.options.BranchName),
	}
}

func (service *Service) publishSteps(repositoryPath shared.RepositoryPath) (PublishDisposition, []Step, error) {
	loadedManifest, exists, loadError := service.manifests.Load(repositoryPath.String())
	if loadError != nil {
		return "", nil, fmt.Errorf(manifestLoadErrorTemplateConstant, repositoryPath, loadError)
	}
	if !exists {
		return PublishDispositionNewProject, nil, nil
	}
	if !loadedManifest.PublishEnabled() {
		return PublishDispositionDisabled, nil, nil
	}

	steps := []Step{
		service.commandStep(repositoryPath, publishingAnnouncementConstant, execshell.CommandName(service.options.PackageManager), packagePublishCommandConstant, packagePublishTargetConstant),
	}
	if !loadedManifest.UpgradeEnabled() {
		return PublishDispositionPublished, steps, nil
	}

	privilegeCommand := execshell.CommandName(service.options.PrivilegeCommand)
	steps = append(steps,
		service.commandStep(repositoryPath, removingAnnouncementConstant, privilegeCommand, service.options.GlobalManager, globalScopeConstant, globalRemoveCommandConstant, loadedManifest.Name),
		service.commandStep(repositoryPath, installingAnnouncementConstant, privilegeCommand, service.options.GlobalManager, globalScopeConstant, globalAddCommandConstant, loadedManifest.Name),
	)
	return PublishDispositionUpgraded, steps, nil
}

func (service *Service) commandStep(repositoryPath shared.RepositoryPath, announcement string, commandName execshell.CommandName, arguments ...string) Step {
	command := execshell.ShellCommand{
		Name: commandName,
		Details: execshell.CommandDetails{
			Arguments:        arguments,
			WorkingDirectory: repositoryPath.String(),
			InheritStreams:   true,
		},
	}
	return Step{
		Name:         command.Label(),
		Announcement: announcement,
		Run: func(executionContext context.Context) error {
			_, executionError := service.executor.Execute(executionContext, command)
			return executionError
		},
	}
}

func stepNames(steps []Step) []string {
	names := make([]string, 0, len(steps))
	for _, step := range steps {
		names = append(names, step.Name)
	}
	return names
}

func normalizeOptions(options Options) Options {
	options.RemoteName = valueOrDefault(options.RemoteName, shared.OriginRemoteNameConstant)
	options.BranchName = valueOrDefault(options.BranchName, shared.DefaultReleaseBranchConstant)
	options.PackageManager = valueOrDefault(options.PackageManager, string(execshell.CommandNPM))
	options.GlobalManager = valueOrDefault(options.GlobalManager, string(execshell.CommandYarn))
	options.PrivilegeCommand = valueOrDefault(options.PrivilegeCommand, string(execshell.CommandSudo))
	if len(options.FailurePolicy) == 0 {
		options.FailurePolicy = FailurePolicyAbort
	}
	return options
}

func valueOrDefault(value string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}
