package repos

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/temirov/repokeeper/internal/manifest"
	"github.com/temirov/repokeeper/internal/release"
	"github.com/temirov/repokeeper/internal/repos/dependencies"
	"github.com/temirov/repokeeper/internal/repos/shared"
	"github.com/temirov/repokeeper/internal/repository"
	"github.com/temirov/repokeeper/internal/ui"
	flagutils "github.com/temirov/repokeeper/internal/utils/flags"
)

const (
	releaseUseConstant                  = "repo-release [repository ...]"
	releaseShortDescriptionConstant     = "Bump the version, commit, push and publish repositories"
	releaseLongDescriptionConstant      = "repo-release increments the patch version in package.json, stages every change, commits it as \"Version <version>\", pushes to the configured remote and branch, and publishes the package when its manifest enables publishing. Repositories default to the current directory."
	publishUseConstant                  = "repo-publish [repository ...]"
	publishShortDescriptionConstant     = "Publish packages whose manifest enables publishing"
	publishLongDescriptionConstant      = "repo-publish runs the package publish command when package.json sets \"publish\", then removes and reinstalls the package globally when it also sets \"upgrade\". Repositories default to the current directory."
	versionBumpUseConstant              = "repo-version-bump [repository ...]"
	versionBumpShortDescriptionConstant = "Increment the patch version in package.json"
	versionBumpLongDescriptionConstant  = "repo-version-bump increments the patch component of the package.json version and rewrites the manifest. Repositories without a manifest are reported as new."
	remoteFlagNameConstant              = "remote"
	remoteFlagUsageConstant             = "Remote to push to"
	branchFlagNameConstant              = "branch"
	branchFlagUsageConstant             = "Branch to push"
	failurePolicyFlagNameConstant       = "failure-policy"
	failurePolicyFlagUsageConstant      = "how a failing step affects the remaining steps"
	releasePlanTemplateConstant         = "PLAN: Project «%s» would be released as version %s.\n"
	publishPlanTemplateConstant         = "PLAN: Project «%s» publish disposition %s.\n"
	planStepTemplateConstant            = "  %s\n"
	releaseFailuresTemplateConstant     = "Project «%s» finished with %d failed step(s).\n"
	versionUpdatedTemplateConstant      = "Project «%s» version %s.\n"
	versionPlanTemplateConstant         = "PLAN: Project «%s» version would become %s.\n"
	newProjectTemplateConstant          = "Project «%s» has no %s.\n"
)

// ReleaseSettings carries the collaborators shared by the release commands. Nil fields get defaults.
type ReleaseSettings struct {
	CommandSettings
	CommandExecutor  shared.CommandExecutor
	FileSystem       shared.FileSystem
	ProgressReporter release.ProgressReporter
}

type releaseFlagValues struct {
	dryRun        *bool
	remote        string
	branch        string
	failurePolicy string
}

func (settings ReleaseSettings) bindReleaseFlags(command *cobra.Command, includePushFlags bool) *releaseFlagValues {
	flagValues := &releaseFlagValues{dryRun: flagutils.BindDryRunFlag(command)}
	if includePushFlags {
		command.Flags().StringVar(&flagValues.remote, remoteFlagNameConstant, "", remoteFlagUsageConstant)
		command.Flags().StringVar(&flagValues.branch, branchFlagNameConstant, "", branchFlagUsageConstant)
	}
	command.Flags().StringVar(&flagValues.failurePolicy, failurePolicyFlagNameConstant, "", flagutils.FormatChoiceUsage(string(release.FailurePolicyAbort), []string{string(release.FailurePolicyAbort), string(release.FailurePolicyContinue)}, failurePolicyFlagUsageConstant))
	return flagValues
}

func (settings ReleaseSettings) resolveReleaseConfiguration(command *cobra.Command, flagValues *releaseFlagValues) ReleaseConfiguration {
	configuration := settings.configuration().Release
	if flagValues == nil {
		return configuration
	}
	if command.Flags().Changed(remoteFlagNameConstant) {
		configuration.RemoteName = valueOrDefault(flagValues.remote, configuration.RemoteName)
	}
	if command.Flags().Changed(branchFlagNameConstant) {
		configuration.BranchName = valueOrDefault(flagValues.branch, configuration.BranchName)
	}
	if command.Flags().Changed(failurePolicyFlagNameConstant) {
		configuration.FailurePolicy = flagValues.failurePolicy
	}
	configuration.DryRun = resolveDryRun(command, flagValues.dryRun, configuration.DryRun)
	return configuration
}

// controllers builds one controller per repository path sharing a single release service.
func (settings ReleaseSettings) controllers(command *cobra.Command, configuration ReleaseConfiguration, arguments []string) ([]*repository.Controller, error) {
	failurePolicy, policyError := release.ParseFailurePolicy(configuration.FailurePolicy)
	if policyError != nil {
		return nil, policyError
	}

	logger := settings.logger()
	commandExecutor := settings.CommandExecutor
	if commandExecutor == nil {
		shellExecutor, executorError := settings.shellExecutor()
		if executorError != nil {
			return nil, executorError
		}
		commandExecutor = shellExecutor
	}
	progressReporter := settings.ProgressReporter
	if progressReporter == nil {
		progressReporter = ui.NewProgressPrinter(command.OutOrStdout())
	}
	fileSystem := dependencies.ResolveFileSystem(settings.FileSystem)

	releaser, serviceError := release.NewService(commandExecutor, manifest.NewStore(fileSystem), progressReporter, logger, release.Options{
		RemoteName:       configuration.RemoteName,
		BranchName:       configuration.BranchName,
		FailurePolicy:    failurePolicy,
		PackageManager:   configuration.PackageManager,
		GlobalManager:    configuration.GlobalManager,
		PrivilegeCommand: configuration.PrivilegeCommand,
	})
	if serviceError != nil {
		return nil, serviceError
	}

	repositoryPaths := resolveRepositoryPaths(arguments)
	controllers := make([]*repository.Controller, 0, len(repositoryPaths))
	for _, repositoryPath := range repositoryPaths {
		controller, controllerError := repository.NewController(repositoryPath, repository.Dependencies{
			FileSystem: fileSystem,
			Releaser:   releaser,
			Reporter:   shared.NewWriterReporter(command.OutOrStdout()),
			Logger:     logger,
		})
		if controllerError != nil {
			return nil, controllerError
		}
		controllers = append(controllers, controller)
	}
	return controllers, nil
}

// ReleaseCommandBuilder assembles the repo-release command.
type ReleaseCommandBuilder struct {
	ReleaseSettings
}

// Build constructs the repo-release command.
func (builder *ReleaseCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   releaseUseConstant,
		Short: releaseShortDescriptionConstant,
		Long:  releaseLongDescriptionConstant,
	}
	flagValues := builder.bindReleaseFlags(command, true)
	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, flagValues, arguments)
	}
	return command, nil
}

func (builder *ReleaseCommandBuilder) run(command *cobra.Command, flagValues *releaseFlagValues, arguments []string) error {
	configuration := builder.resolveReleaseConfiguration(command, flagValues)
	controllers, controllersError := builder.controllers(command, configuration, arguments)
	if controllersError != nil {
		return controllersError
	}

	for _, controller := range controllers {
		if configuration.DryRun {
			plan, planError := controller.PlanPush()
			if planError != nil {
				return planError
			}
			fmt.Fprintf(command.OutOrStdout(), releasePlanTemplateConstant, controller.Path(), plan.Version)
			printPlanSteps(command.OutOrStdout(), plan.Steps)
			continue
		}

		outcome, pushError := controller.Push(command.Context())
		if pushError != nil {
			return pushError
		}
		reportFailedSteps(command.ErrOrStderr(), controller.Path(), outcome.Steps)
	}
	return nil
}

// PublishCommandBuilder assembles the repo-publish command.
type PublishCommandBuilder struct {
	ReleaseSettings
}

// Build constructs the repo-publish command.
func (builder *PublishCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   publishUseConstant,
		Short: publishShortDescriptionConstant,
		Long:  publishLongDescriptionConstant,
	}
	flagValues := builder.bindReleaseFlags(command, false)
	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, flagValues, arguments)
	}
	return command, nil
}

func (builder *PublishCommandBuilder) run(command *cobra.Command, flagValues *releaseFlagValues, arguments []string) error {
	configuration := builder.resolveReleaseConfiguration(command, flagValues)
	controllers, controllersError := builder.controllers(command, configuration, arguments)
	if controllersError != nil {
		return controllersError
	}

	for _, controller := range controllers {
		if configuration.DryRun {
			plan, planError := controller.PlanPublish()
			if planError != nil {
				return planError
			}
			fmt.Fprintf(command.OutOrStdout(), publishPlanTemplateConstant, controller.Path(), plan.Disposition)
			printPlanSteps(command.OutOrStdout(), plan.Steps)
			continue
		}

		outcome, publishError := controller.Publish(command.Context())
		if publishError != nil {
			return publishError
		}
		reportFailedSteps(command.ErrOrStderr(), controller.Path(), outcome.Steps)
	}
	return nil
}

// VersionBumpCommandBuilder assembles the repo-version-bump command.
type VersionBumpCommandBuilder struct {
	ReleaseSettings
}

// Build constructs the repo-version-bump command.
func (builder *VersionBumpCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   versionBumpUseConstant,
		Short: versionBumpShortDescriptionConstant,
		Long:  versionBumpLongDescriptionConstant,
	}
	dryRunFlag := flagutils.BindDryRunFlag(command)
	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, dryRunFlag, arguments)
	}
	return command, nil
}

func (builder *VersionBumpCommandBuilder) run(command *cobra.Command, dryRunFlag *bool, arguments []string) error {
	configuration := builder.configuration().Release
	dryRun := resolveDryRun(command, dryRunFlag, configuration.DryRun)
	controllers, controllersError := builder.controllers(command, configuration, arguments)
	if controllersError != nil {
		return controllersError
	}

	output := command.OutOrStdout()
	for _, controller := range controllers {
		if dryRun {
			plan, planError := controller.PlanPush()
			if planError != nil {
				return planError
			}
			if plan.Version == manifest.NewProjectMarker {
				fmt.Fprintf(output, newProjectTemplateConstant, controller.Path(), manifest.FileName)
				continue
			}
			fmt.Fprintf(output, versionPlanTemplateConstant, controller.Path(), plan.Version)
			continue
		}

		version, versionError := controller.UpdateVersion()
		if versionError != nil {
			return versionError
		}
		if version == manifest.NewProjectMarker {
			fmt.Fprintf(output, newProjectTemplateConstant, controller.Path(), manifest.FileName)
			continue
		}
		fmt.Fprintf(output, versionUpdatedTemplateConstant, controller.Path(), version)
	}
	return nil
}

func printPlanSteps(writer io.Writer, steps []string) {
	for _, step := range steps {
		fmt.Fprintf(writer, planStepTemplateConstant, step)
	}
}

func reportFailedSteps(writer io.Writer, repositoryPath shared.RepositoryPath, result release.Result) {
	failures := result.Failures()
	if len(failures) == 0 {
		return
	}
	fmt.Fprintf(writer, releaseFailuresTemplateConstant, repositoryPath, len(failures))
}
