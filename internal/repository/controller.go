package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/repokeeper/internal/gitrepo"
	"github.com/temirov/repokeeper/internal/release"
	"github.com/temirov/repokeeper/internal/repos/dependencies"
	"github.com/temirov/repokeeper/internal/repos/shared"
	"github.com/temirov/repokeeper/internal/status"
)

const (
	hostChangedTemplateConstant          = "Project «%s» origin host changed from «%s» to «%s».\n"
	originHostChangedMessageConstant     = "Changed origin host"
	missingStatusReaderMessageConstant   = "repository controller requires a status reader"
	missingReleaseServiceMessageConstant = "repository controller requires a release service"
	repositoryPathErrorTemplateConstant  = "invalid repository path %q: %w"
	logFieldRepositoryConstant           = "repository"
	logFieldFromHostConstant             = "from_host"
	logFieldToHostConstant               = "to_host"
	logFieldOriginRepositoryConstant     = "origin_repository"
)

// ErrStatusReaderNotConfigured indicates a status operation was requested without a status reader.
var ErrStatusReaderNotConfigured = errors.New(missingStatusReaderMessageConstant)

// ErrReleaseServiceNotConfigured indicates a release operation was requested without a release service.
var ErrReleaseServiceNotConfigured = errors.New(missingReleaseServiceMessageConstant)

// Dependencies holds the collaborators shared by controllers.
// StatusCollector is optional; GetStats parses GetStatus output when it is nil.
type Dependencies struct {
	FileSystem      shared.FileSystem
	StatusReader    status.Reader
	StatusCollector status.Collector
	Releaser        *release.Service
	Reporter        shared.Reporter
	Logger          *zap.Logger
}

// Controller performs operations on one repository.
type Controller struct {
	path         shared.RepositoryPath
	configFile   *gitrepo.ConfigFile
	dependencies Dependencies
}

// NewController validates the repository path and binds the collaborators.
func NewController(repositoryPath string, controllerDependencies Dependencies) (*Controller, error) {
	validatedPath, pathError := shared.NewRepositoryPath(repositoryPath)
	if pathError != nil {
		return nil, fmt.Errorf(repositoryPathErrorTemplateConstant, repositoryPath, pathError)
	}
	controllerDependencies.FileSystem = dependencies.ResolveFileSystem(controllerDependencies.FileSystem)
	if controllerDependencies.Reporter == nil {
		controllerDependencies.Reporter = shared.NewWriterReporter(nil)
	}
	if controllerDependencies.Logger == nil {
		controllerDependencies.Logger = zap.NewNop()
	}
	return &Controller{
		path:         validatedPath,
		configFile:   gitrepo.NewConfigFile(controllerDependencies.FileSystem, validatedPath.String()),
		dependencies: controllerDependencies,
	}, nil
}

// Path returns the repository path.
func (controller *Controller) Path() shared.RepositoryPath {
	return controller.path
}

// GetOrigin returns the first ssh origin URL in .git/config, or an empty string.
func (controller *Controller) GetOrigin() (string, error) {
	return controller.configFile.Origin()
}

// GetStatus returns the raw output of git status.
func (controller *Controller) GetStatus(executionContext context.Context) (string, error) {
	if controller.dependencies.StatusReader == nil {
		return "", ErrStatusReaderNotConfigured
	}
	return controller.dependencies.StatusReader.ReadStatus(executionContext, controller.path.String())
}

// GetStats returns the structured status report.
func (controller *Controller) GetStats(executionContext context.Context) (status.Report, error) {
	if controller.dependencies.StatusCollector != nil {
		return controller.dependencies.StatusCollector.Collect(executionContext, controller.path.String())
	}
	statusText, statusError := controller.GetStatus(executionContext)
	if statusError != nil {
		return status.Report{}, statusError
	}
	return status.ParseStatusText(statusText), nil
}

// ChangeOriginHost rewrites git@from: to git@to: in the origin line and reports whether the file changed.
func (controller *Controller) ChangeOriginHost(fromHost string, toHost string) (bool, error) {
	change, changeError := controller.configFile.ChangeOriginHost(fromHost, toHost)
	if changeError != nil || !change.Changed {
		return false, changeError
	}
	controller.dependencies.Logger.Info(originHostChangedMessageConstant,
		zap.String(logFieldRepositoryConstant, controller.path.String()),
		zap.String(logFieldFromHostConstant, change.FromHost),
		zap.String(logFieldToHostConstant, change.ToHost),
		zap.String(logFieldOriginRepositoryConstant, change.Repository),
	)
	controller.dependencies.Reporter.Printf(hostChangedTemplateConstant, controller.path.String(), fromHost, toHost)
	return true, nil
}

// PlanOriginHostChange reports what ChangeOriginHost would do without writing.
func (controller *Controller) PlanOriginHostChange(fromHost string, toHost string) (gitrepo.HostChange, error) {
	return controller.configFile.PlanOriginHostChange(fromHost, toHost)
}

// UpdateVersion bumps the manifest patch version and returns it, or "new" without a manifest.
func (controller *Controller) UpdateVersion() (string, error) {
	if controller.dependencies.Releaser == nil {
		return "", ErrReleaseServiceNotConfigured
	}
	return controller.dependencies.Releaser.UpdateVersion(controller.path)
}

// Push releases the repository: version bump, add, commit, push and publish.
func (controller *Controller) Push(executionContext context.Context) (release.Outcome, error) {
	if controller.dependencies.Releaser == nil {
		return release.Outcome{}, ErrReleaseServiceNotConfigured
	}
	return controller.dependencies.Releaser.Push(executionContext, controller.path)
}

// Publish publishes the package when its manifest asks for it.
func (controller *Controller) Publish(executionContext context.Context) (release.Outcome, error) {
	if controller.dependencies.Releaser == nil {
		return release.Outcome{}, ErrReleaseServiceNotConfigured
	}
	return controller.dependencies.Releaser.Publish(executionContext, controller.path)
}

// PlanPush lists the next version and commands Push would run.
func (controller *Controller) PlanPush() (release.Plan, error) {
	if controller.dependencies.Releaser == nil {
		return release.Plan{}, ErrReleaseServiceNotConfigured
	}
	return controller.dependencies.Releaser.PlanPush(controller.path)
}

// PlanPublish lists the commands Publish would run.
func (controller *Controller) PlanPublish() (release.Plan, error) {
	if controller.dependencies.Releaser == nil {
		return release.Plan{}, ErrReleaseServiceNotConfigured
	}
	return controller.dependencies.Releaser.PlanPublish(controller.path)
}
