package repos

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repokeeper/internal/execshell"
	"github.com/temirov/repokeeper/internal/repos/dependencies"
	"github.com/temirov/repokeeper/internal/repos/discovery"
	"github.com/temirov/repokeeper/internal/repos/shared"
	"github.com/temirov/repokeeper/internal/ui"
	flagutils "github.com/temirov/repokeeper/internal/utils/flags"
	pathutils "github.com/temirov/repokeeper/internal/utils/path"
)

const (
	missingRepositoryRootsErrorMessageConstant = "no repository roots provided; specify --root or configure defaults"
	discoveryFailedTemplateConstant            = "unable to discover repositories: %w"
	repositoriesDiscoveredMessageConstant      = "Discovered repositories"
	logFieldRootsConstant                      = "roots"
	logFieldRepositoryCountConstant            = "repository_count"
)

var repositoryRootSanitizer = pathutils.NewRootSanitizer()

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandSettings carries the providers every repository command reads when it runs.
type CommandSettings struct {
	LoggerProvider               LoggerProvider
	ConsoleLoggerProvider        LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() ToolsConfiguration
}

func (settings CommandSettings) logger() *zap.Logger {
	return resolveLogger(settings.LoggerProvider)
}

func (settings CommandSettings) configuration() ToolsConfiguration {
	if settings.ConfigurationProvider == nil {
		return DefaultToolsConfiguration()
	}
	return settings.ConfigurationProvider().sanitize()
}

// commandObserver renders command lifecycle events on the console logger when console logging is enabled.
func (settings CommandSettings) commandObserver() execshell.CommandEventObserver {
	if settings.HumanReadableLoggingProvider == nil || !settings.HumanReadableLoggingProvider() {
		return nil
	}
	return ui.NewConsoleCommandEventLogger(resolveLogger(settings.ConsoleLoggerProvider))
}

func (settings CommandSettings) shellExecutor() (*execshell.ShellExecutor, error) {
	return dependencies.ResolveShellExecutor(nil, settings.logger(), settings.commandObserver())
}

func (settings CommandSettings) discoverRepositories(existing shared.RepositoryDiscoverer, roots []string) ([]string, error) {
	configuration := settings.configuration()
	logger := settings.logger()
	discoverer := dependencies.ResolveRepositoryDiscoverer(existing, logger, discovery.Options{
		ExcludedDirectoryNames: configuration.Discovery.ExcludedDirectoryNames,
		SkipUnreadable:         configuration.Discovery.SkipUnreadable,
	})

	repositories, discoveryError := discoverer.DiscoverRepositories(roots)
	if discoveryError != nil {
		return nil, fmt.Errorf(discoveryFailedTemplateConstant, discoveryError)
	}
	logger.Debug(repositoriesDiscoveredMessageConstant, zap.Strings(logFieldRootsConstant, roots), zap.Int(logFieldRepositoryCountConstant, len(repositories)))
	return repositories, nil
}

func requireRepositoryRoots(command *cobra.Command, flagRoots []string, arguments []string, configuredRoots []string) ([]string, error) {
	resolvedRoots := repositoryRootSanitizer.Sanitize(flagutils.ResolveRoots(flagRoots, arguments, configuredRoots))
	if len(resolvedRoots) > 0 {
		return resolvedRoots, nil
	}

	if command != nil {
		_ = command.Help()
	}

	return nil, errors.New(missingRepositoryRootsErrorMessageConstant)
}

// resolveRepositoryPaths turns positional arguments into repository paths, defaulting to the working directory.
// Nested paths are kept because each names a repository rather than a search root.
func resolveRepositoryPaths(arguments []string) []string {
	candidates := trimValues(arguments)
	if len(candidates) == 0 {
		candidates = []string{defaultRepositoryRootConstant}
	}
	resolved := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		resolved = append(resolved, repositoryRootSanitizer.Sanitize([]string{candidate})...)
	}
	return resolved
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveDryRun(command *cobra.Command, dryRunFlag *bool, configured bool) bool {
	if command != nil && command.Flags().Changed(flagutils.DryRunFlagName) && dryRunFlag != nil {
		return *dryRunFlag
	}
	return configured
}
