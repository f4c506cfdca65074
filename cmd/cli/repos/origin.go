package repos

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repokeeper/internal/gitrepo"
	"github.com/temirov/repokeeper/internal/repos/shared"
	"github.com/temirov/repokeeper/internal/repository"
	flagutils "github.com/temirov/repokeeper/internal/utils/flags"
)

const (
	originUseConstant                 = "repo-origin-host [root ...]"
	originShortDescriptionConstant    = "Rewrite the host of ssh origin remotes"
	originLongDescriptionConstant     = "repo-origin-host replaces git@<from>: with git@<to>: in the origin URL of every repository under the roots. Use \"any\" as the source host to rewrite origins regardless of their current host."
	originFromFlagNameConstant        = "from"
	originFromFlagUsageConstant       = "Current origin host, or \"" + gitrepo.AnyHostConstant + "\""
	originToFlagNameConstant          = "to"
	originToFlagUsageConstant         = "Replacement origin host"
	missingOriginHostsMessageConstant = "both --from and --to hosts are required"
	originPlanTemplateConstant        = "PLAN: Project «%s» origin «%s» host would change from «%s» to «%s».\n"
	originSummaryMessageConstant      = "Origin host rewrite finished"
	logFieldChangedCountConstant      = "changed_count"
	logFieldDryRunConstant            = "dry_run"
)

// OriginHostCommandBuilder assembles the repo-origin-host command.
type OriginHostCommandBuilder struct {
	CommandSettings
	Discoverer shared.RepositoryDiscoverer
	FileSystem shared.FileSystem
}

type originFlagValues struct {
	roots    *[]string
	dryRun   *bool
	fromHost string
	toHost   string
}

// Build constructs the repo-origin-host command.
func (builder *OriginHostCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   originUseConstant,
		Short: originShortDescriptionConstant,
		Long:  originLongDescriptionConstant,
	}

	flagValues := &originFlagValues{
		roots:  flagutils.BindRootFlag(command),
		dryRun: flagutils.BindDryRunFlag(command),
	}
	command.Flags().StringVar(&flagValues.fromHost, originFromFlagNameConstant, "", originFromFlagUsageConstant)
	command.Flags().StringVar(&flagValues.toHost, originToFlagNameConstant, "", originToFlagUsageConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, flagValues, arguments)
	}
	return command, nil
}

func (builder *OriginHostCommandBuilder) run(command *cobra.Command, flagValues *originFlagValues, arguments []string) error {
	configuration := builder.configuration().Origin
	if command.Flags().Changed(originFromFlagNameConstant) {
		configuration.FromHost = flagValues.fromHost
	}
	if command.Flags().Changed(originToFlagNameConstant) {
		configuration.ToHost = flagValues.toHost
	}
	configuration.FromHost = strings.TrimSpace(configuration.FromHost)
	configuration.ToHost = strings.TrimSpace(configuration.ToHost)
	if len(configuration.FromHost) == 0 || len(configuration.ToHost) == 0 {
		_ = command.Help()
		return errors.New(missingOriginHostsMessageConstant)
	}
	dryRun := resolveDryRun(command, flagValues.dryRun, configuration.DryRun)

	roots, rootsError := requireRepositoryRoots(command, *flagValues.roots, arguments, configuration.RepositoryRoots)
	if rootsError != nil {
		return rootsError
	}
	repositories, discoveryError := builder.discoverRepositories(builder.Discoverer, roots)
	if discoveryError != nil {
		return discoveryError
	}

	output := command.OutOrStdout()
	changedCount := 0
	for _, repositoryPath := range repositories {
		controller, controllerError := repository.NewController(repositoryPath, repository.Dependencies{
			FileSystem: builder.FileSystem,
			Reporter:   shared.NewWriterReporter(output),
			Logger:     builder.logger(),
		})
		if controllerError != nil {
			return controllerError
		}

		if dryRun {
			change, planError := controller.PlanOriginHostChange(configuration.FromHost, configuration.ToHost)
			if planError != nil {
				return planError
			}
			if change.Changed {
				changedCount++
				fmt.Fprintf(output, originPlanTemplateConstant, repositoryPath, change.Repository, configuration.FromHost, configuration.ToHost)
			}
			continue
		}

		changed, changeError := controller.ChangeOriginHost(configuration.FromHost, configuration.ToHost)
		if changeError != nil {
			return changeError
		}
		if changed {
			changedCount++
		}
	}

	builder.logger().Info(originSummaryMessageConstant,
		zap.Int(logFieldChangedCountConstant, changedCount),
		zap.Int(logFieldRepositoryCountConstant, len(repositories)),
		zap.Bool(logFieldDryRunConstant, dryRun),
	)
	return nil
}
