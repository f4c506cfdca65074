package repos

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/temirov/repokeeper/internal/repos/shared"
	"github.com/temirov/repokeeper/internal/repository"
	"github.com/temirov/repokeeper/internal/status"
	flagutils "github.com/temirov/repokeeper/internal/utils/flags"
)

const (
	statusUseConstant                       = "repo-status [root ...]"
	statusShortDescriptionConstant          = "Summarize the working tree of every repository under the roots"
	statusLongDescriptionConstant           = "repo-status discovers repositories under the roots and reports the branch together with deleted, modified, untracked and staged paths of each."
	statusFormatFlagNameConstant            = "format"
	statusFormatFlagUsageConstant           = "output format"
	statusSourceFlagNameConstant            = "source"
	statusSourceFlagUsageConstant           = "how the status is read"
	statusDirtyOnlyFlagNameConstant         = "dirty-only"
	statusDirtyOnlyFlagUsageConstant        = "Only report repositories with changes"
	statusConcurrencyFlagNameConstant       = "concurrency"
	statusConcurrencyFlagUsageConstant      = "Number of repositories inspected in parallel"
	statusCleanLineTemplateConstant         = "%s (%s): clean\n"
	statusDirtyLineTemplateConstant         = "%s (%s): %d modified, %d deleted, %d untracked, %d staged\n"
	statusNoBranchLabelConstant             = "no branch"
	statusIndentationConstant               = "  "
	statusYAMLIndentationConstant           = 2
	unsupportedStatusFormatTemplateConstant = "unsupported status format %q (expected text, json or yaml)"
	statusCollectedMessageConstant          = "Collected repository status"
	logFieldRepositoryPathConstant          = "repository_path"
	logFieldChangeCountConstant             = "change_count"
)

type statusFormat string

const (
	statusFormatText statusFormat = statusFormat("text")
	statusFormatJSON statusFormat = statusFormat("json")
	statusFormatYAML statusFormat = statusFormat("yaml")
)

func parseStatusFormat(rawFormat string) (statusFormat, error) {
	switch statusFormat(strings.ToLower(strings.TrimSpace(rawFormat))) {
	case statusFormatText, "":
		return statusFormatText, nil
	case statusFormatJSON:
		return statusFormatJSON, nil
	case statusFormatYAML:
		return statusFormatYAML, nil
	default:
		return "", fmt.Errorf(unsupportedStatusFormatTemplateConstant, rawFormat)
	}
}

// RepositoryStatus pairs a repository path with its status report.
type RepositoryStatus struct {
	Path   string        `json:"path" yaml:"path"`
	Status status.Report `json:"status" yaml:"status"`
}

// StatusCommandBuilder assembles the repo-status command.
type StatusCommandBuilder struct {
	CommandSettings
	Discoverer  shared.RepositoryDiscoverer
	GitExecutor shared.GitExecutor
}

type statusFlagValues struct {
	roots       *[]string
	format      string
	source      string
	dirtyOnly   bool
	concurrency int
}

// Build constructs the repo-status command.
func (builder *StatusCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   statusUseConstant,
		Short: statusShortDescriptionConstant,
		Long:  statusLongDescriptionConstant,
	}

	flagValues := &statusFlagValues{roots: flagutils.BindRootFlag(command)}
	command.Flags().StringVar(&flagValues.format, statusFormatFlagNameConstant, "", flagutils.FormatChoiceUsage(string(statusFormatText), []string{string(statusFormatText), string(statusFormatJSON), string(statusFormatYAML)}, statusFormatFlagUsageConstant))
	command.Flags().StringVar(&flagValues.source, statusSourceFlagNameConstant, "", flagutils.FormatChoiceUsage(string(status.SourceText), []string{string(status.SourceText), string(status.SourceWorktree)}, statusSourceFlagUsageConstant))
	command.Flags().BoolVar(&flagValues.dirtyOnly, statusDirtyOnlyFlagNameConstant, false, statusDirtyOnlyFlagUsageConstant)
	command.Flags().IntVar(&flagValues.concurrency, statusConcurrencyFlagNameConstant, 0, statusConcurrencyFlagUsageConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, flagValues, arguments)
	}
	return command, nil
}

func (builder *StatusCommandBuilder) run(command *cobra.Command, flagValues *statusFlagValues, arguments []string) error {
	configuration := builder.configuration().Status
	if command.Flags().Changed(statusFormatFlagNameConstant) {
		configuration.Format = flagValues.format
	}
	if command.Flags().Changed(statusSourceFlagNameConstant) {
		configuration.Source = flagValues.source
	}
	if command.Flags().Changed(statusDirtyOnlyFlagNameConstant) {
		configuration.DirtyOnly = flagValues.dirtyOnly
	}
	if command.Flags().Changed(statusConcurrencyFlagNameConstant) && flagValues.concurrency > 0 {
		configuration.Concurrency = flagValues.concurrency
	}

	outputFormat, formatError := parseStatusFormat(configuration.Format)
	if formatError != nil {
		return formatError
	}
	source, sourceError := status.ParseSource(configuration.Source)
	if sourceError != nil {
		return sourceError
	}

	roots, rootsError := requireRepositoryRoots(command, *flagValues.roots, arguments, configuration.RepositoryRoots)
	if rootsError != nil {
		return rootsError
	}
	repositories, discoveryError := builder.discoverRepositories(builder.Discoverer, roots)
	if discoveryError != nil {
		return discoveryError
	}

	statuses, collectError := builder.collect(command, repositories, source, configuration.Concurrency)
	if collectError != nil {
		return collectError
	}

	if configuration.DirtyOnly {
		dirtyStatuses := make([]RepositoryStatus, 0, len(statuses))
		for _, repositoryStatus := range statuses {
			if !repositoryStatus.Status.IsClean() {
				dirtyStatuses = append(dirtyStatuses, repositoryStatus)
			}
		}
		statuses = dirtyStatuses
	}

	return renderStatuses(command.OutOrStdout(), outputFormat, statuses)
}

func (builder *StatusCommandBuilder) collect(command *cobra.Command, repositories []string, source status.Source, concurrency int) ([]RepositoryStatus, error) {
	logger := builder.logger()
	gitExecutor := builder.GitExecutor
	if gitExecutor == nil {
		shellExecutor, executorError := builder.shellExecutor()
		if executorError != nil {
			return nil, executorError
		}
		gitExecutor = shellExecutor
	}

	textCollector, collectorError := status.NewTextCollector(gitExecutor)
	if collectorError != nil {
		return nil, collectorError
	}
	var collector status.Collector = textCollector
	if source == status.SourceWorktree {
		collector = status.NewWorktreeCollector(textCollector, logger)
	}

	statuses := make([]RepositoryStatus, len(repositories))
	group, groupContext := errgroup.WithContext(command.Context())
	group.SetLimit(concurrency)

	for repositoryIndex, repositoryPath := range repositories {
		group.Go(func() error {
			controller, controllerError := repository.NewController(repositoryPath, repository.Dependencies{
				StatusReader:    textCollector,
				StatusCollector: collector,
				Logger:          logger,
			})
			if controllerError != nil {
				return controllerError
			}
			report, statsError := controller.GetStats(groupContext)
			if statsError != nil {
				return statsError
			}
			logger.Debug(statusCollectedMessageConstant, zap.String(logFieldRepositoryPathConstant, repositoryPath), zap.Int(logFieldChangeCountConstant, report.ChangeCount()))
			statuses[repositoryIndex] = RepositoryStatus{Path: repositoryPath, Status: report}
			return nil
		})
	}

	if waitError := group.Wait(); waitError != nil {
		return nil, waitError
	}
	return statuses, nil
}

func renderStatuses(writer io.Writer, outputFormat statusFormat, statuses []RepositoryStatus) error {
	switch outputFormat {
	case statusFormatJSON:
		encoded, encodeError := json.Marshal(statuses, jsontext.WithIndent(statusIndentationConstant))
		if encodeError != nil {
			return encodeError
		}
		_, writeError := fmt.Fprintln(writer, string(encoded))
		return writeError
	case statusFormatYAML:
		encoder := yaml.NewEncoder(writer)
		encoder.SetIndent(statusYAMLIndentationConstant)
		if encodeError := encoder.Encode(statuses); encodeError != nil {
			return encodeError
		}
		return encoder.Close()
	default:
		for _, repositoryStatus := range statuses {
			branch := repositoryStatus.Status.Branch
			if len(branch) == 0 {
				branch = statusNoBranchLabelConstant
			}
			report := repositoryStatus.Status
			if report.IsClean() {
				fmt.Fprintf(writer, statusCleanLineTemplateConstant, repositoryStatus.Path, branch)
				continue
			}
			fmt.Fprintf(writer, statusDirtyLineTemplateConstant, repositoryStatus.Path, branch, len(report.Modified), len(report.Deleted), len(report.Created), report.StagedCount())
		}
		return nil
	}
}
