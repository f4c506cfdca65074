package repos

import (
	"strings"

	"github.com/temirov/repokeeper/internal/release"
	"github.com/temirov/repokeeper/internal/repos/discovery"
	"github.com/temirov/repokeeper/internal/repos/shared"
	"github.com/temirov/repokeeper/internal/status"
)

const (
	defaultRepositoryRootConstant          = "."
	defaultStatusConcurrencyConstant       = 4
	discoveryConfigurationKeyConstant      = "discovery"
	listConfigurationKeyConstant           = "list"
	statusConfigurationKeyConstant         = "status"
	originConfigurationKeyConstant         = "origin"
	releaseConfigurationKeyConstant        = "release"
	configurationRootsKeyConstant          = "roots"
	configurationDryRunKeyConstant         = "dry_run"
	configurationExcludeKeyConstant        = "exclude"
	configurationSkipUnreadableKeyConstant = "skip_unreadable"
	configurationFormatKeyConstant         = "format"
	configurationSourceKeyConstant         = "source"
	configurationDirtyOnlyKeyConstant      = "dirty_only"
	configurationConcurrencyKeyConstant    = "concurrency"
	configurationFromKeyConstant           = "from"
	configurationToKeyConstant             = "to"
	configurationRemoteKeyConstant         = "remote"
	configurationBranchKeyConstant         = "branch"
	configurationFailurePolicyKeyConstant  = "failure_policy"
	configurationPackageManagerKeyConstant = "package_manager"
	configurationGlobalManagerKeyConstant  = "global_manager"
	configurationPrivilegeKeyConstant      = "privilege_command"
	configurationKeySeparatorConstant      = "."
	defaultPackageManagerConstant          = "npm"
	defaultGlobalManagerConstant           = "yarn"
	defaultPrivilegeCommandConstant        = "sudo"
)

// ToolsConfiguration captures repository command configuration sections.
type ToolsConfiguration struct {
	Discovery DiscoveryConfiguration `mapstructure:"discovery"`
	List      ListConfiguration      `mapstructure:"list"`
	Status    StatusConfiguration    `mapstructure:"status"`
	Origin    OriginConfiguration    `mapstructure:"origin"`
	Release   ReleaseConfiguration   `mapstructure:"release"`
}

// DiscoveryConfiguration controls the repository scan shared by every root-based command.
type DiscoveryConfiguration struct {
	ExcludedDirectoryNames []string `mapstructure:"exclude"`
	SkipUnreadable         bool     `mapstructure:"skip_unreadable"`
}

// ListConfiguration describes configuration values for repo-list.
type ListConfiguration struct {
	RepositoryRoots []string `mapstructure:"roots"`
}

// StatusConfiguration describes configuration values for repo-status.
type StatusConfiguration struct {
	RepositoryRoots []string `mapstructure:"roots"`
	Format          string   `mapstructure:"format"`
	Source          string   `mapstructure:"source"`
	DirtyOnly       bool     `mapstructure:"dirty_only"`
	Concurrency     int      `mapstructure:"concurrency"`
}

// OriginConfiguration describes configuration values for repo-origin-host.
type OriginConfiguration struct {
	RepositoryRoots []string `mapstructure:"roots"`
	FromHost        string   `mapstructure:"from"`
	ToHost          string   `mapstructure:"to"`
	DryRun          bool     `mapstructure:"dry_run"`
}

// ReleaseConfiguration describes configuration values shared by repo-release, repo-publish and repo-version-bump.
type ReleaseConfiguration struct {
	RemoteName       string `mapstructure:"remote"`
	BranchName       string `mapstructure:"branch"`
	FailurePolicy    string `mapstructure:"failure_policy"`
	DryRun           bool   `mapstructure:"dry_run"`
	PackageManager   string `mapstructure:"package_manager"`
	GlobalManager    string `mapstructure:"global_manager"`
	PrivilegeCommand string `mapstructure:"privilege_command"`
}

// DefaultToolsConfiguration returns baseline configuration values for repository commands.
func DefaultToolsConfiguration() ToolsConfiguration {
	return ToolsConfiguration{
		Discovery: DiscoveryConfiguration{
			ExcludedDirectoryNames: discovery.DefaultExcludedDirectoryNames(),
		},
		List: ListConfiguration{
			RepositoryRoots: []string{defaultRepositoryRootConstant},
		},
		Status: StatusConfiguration{
			RepositoryRoots: []string{defaultRepositoryRootConstant},
			Format:          string(statusFormatText),
			Source:          string(status.SourceText),
			Concurrency:     defaultStatusConcurrencyConstant,
		},
		Origin: OriginConfiguration{
			RepositoryRoots: []string{defaultRepositoryRootConstant},
		},
		Release: ReleaseConfiguration{
			RemoteName:       shared.OriginRemoteNameConstant,
			BranchName:       shared.DefaultReleaseBranchConstant,
			FailurePolicy:    string(release.FailurePolicyAbort),
			PackageManager:   defaultPackageManagerConstant,
			GlobalManager:    defaultGlobalManagerConstant,
			PrivilegeCommand: defaultPrivilegeCommandConstant,
		},
	}
}

// DefaultConfigurationValues produces Viper defaults for repository commands.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultToolsConfiguration()
	key := func(section string, name string) string {
		return strings.Join([]string{rootKey, section, name}, configurationKeySeparatorConstant)
	}
	return map[string]any{
		key(discoveryConfigurationKeyConstant, configurationExcludeKeyConstant):        defaults.Discovery.ExcludedDirectoryNames,
		key(discoveryConfigurationKeyConstant, configurationSkipUnreadableKeyConstant): defaults.Discovery.SkipUnreadable,
		key(listConfigurationKeyConstant, configurationRootsKeyConstant):               defaults.List.RepositoryRoots,
		key(statusConfigurationKeyConstant, configurationRootsKeyConstant):             defaults.Status.RepositoryRoots,
		key(statusConfigurationKeyConstant, configurationFormatKeyConstant):            defaults.Status.Format,
		key(statusConfigurationKeyConstant, configurationSourceKeyConstant):            defaults.Status.Source,
		key(statusConfigurationKeyConstant, configurationDirtyOnlyKeyConstant):         defaults.Status.DirtyOnly,
		key(statusConfigurationKeyConstant, configurationConcurrencyKeyConstant):       defaults.Status.Concurrency,
		key(originConfigurationKeyConstant, configurationRootsKeyConstant):             defaults.Origin.RepositoryRoots,
		key(originConfigurationKeyConstant, configurationFromKeyConstant):              defaults.Origin.FromHost,
		key(originConfigurationKeyConstant, configurationToKeyConstant):                defaults.Origin.ToHost,
		key(originConfigurationKeyConstant, configurationDryRunKeyConstant):            defaults.Origin.DryRun,
		key(releaseConfigurationKeyConstant, configurationRemoteKeyConstant):           defaults.Release.RemoteName,
		key(releaseConfigurationKeyConstant, configurationBranchKeyConstant):           defaults.Release.BranchName,
		key(releaseConfigurationKeyConstant, configurationFailurePolicyKeyConstant):    defaults.Release.FailurePolicy,
		key(releaseConfigurationKeyConstant, configurationDryRunKeyConstant):           defaults.Release.DryRun,
		key(releaseConfigurationKeyConstant, configurationPackageManagerKeyConstant):   defaults.Release.PackageManager,
		key(releaseConfigurationKeyConstant, configurationGlobalManagerKeyConstant):    defaults.Release.GlobalManager,
		key(releaseConfigurationKeyConstant, configurationPrivilegeKeyConstant):        defaults.Release.PrivilegeCommand,
	}
}

// sanitize normalizes configuration values, restoring defaults for blank entries.
func (configuration ToolsConfiguration) sanitize() ToolsConfiguration {
	defaults := DefaultToolsConfiguration()
	sanitized := configuration

	if sanitized.Discovery.ExcludedDirectoryNames == nil {
		sanitized.Discovery.ExcludedDirectoryNames = defaults.Discovery.ExcludedDirectoryNames
	}
	sanitized.Discovery.ExcludedDirectoryNames = trimValues(sanitized.Discovery.ExcludedDirectoryNames)

	sanitized.List.RepositoryRoots = trimValues(configuration.List.RepositoryRoots)
	sanitized.Status.RepositoryRoots = trimValues(configuration.Status.RepositoryRoots)
	sanitized.Status.Format = valueOrDefault(configuration.Status.Format, defaults.Status.Format)
	sanitized.Status.Source = valueOrDefault(configuration.Status.Source, defaults.Status.Source)
	if sanitized.Status.Concurrency <= 0 {
		sanitized.Status.Concurrency = defaults.Status.Concurrency
	}

	sanitized.Origin.RepositoryRoots = trimValues(configuration.Origin.RepositoryRoots)
	sanitized.Origin.FromHost = strings.TrimSpace(configuration.Origin.FromHost)
	sanitized.Origin.ToHost = strings.TrimSpace(configuration.Origin.ToHost)

	sanitized.Release.RemoteName = valueOrDefault(configuration.Release.RemoteName, defaults.Release.RemoteName)
	sanitized.Release.BranchName = valueOrDefault(configuration.Release.BranchName, defaults.Release.BranchName)
	sanitized.Release.FailurePolicy = valueOrDefault(configuration.Release.FailurePolicy, defaults.Release.FailurePolicy)
	sanitized.Release.PackageManager = valueOrDefault(configuration.Release.PackageManager, defaults.Release.PackageManager)
	sanitized.Release.GlobalManager = valueOrDefault(configuration.Release.GlobalManager, defaults.Release.GlobalManager)
	sanitized.Release.PrivilegeCommand = valueOrDefault(configuration.Release.PrivilegeCommand, defaults.Release.PrivilegeCommand)
	return sanitized
}

func trimValues(rawValues []string) []string {
	trimmed := make([]string, 0, len(rawValues))
	for _, rawValue := range rawValues {
		candidate := strings.TrimSpace(rawValue)
		if len(candidate) == 0 {
			continue
		}
		trimmed = append(trimmed, candidate)
	}
	return trimmed
}

func valueOrDefault(value string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}
