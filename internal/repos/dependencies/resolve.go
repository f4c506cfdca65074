package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/repokeeper/internal/execshell"
	"github.com/temirov/repokeeper/internal/repos/discovery"
	"github.com/temirov/repokeeper/internal/repos/filesystem"
	"github.com/temirov/repokeeper/internal/repos/shared"
)

// ResolveRepositoryDiscoverer returns the provided discoverer or a filesystem-backed default.
func ResolveRepositoryDiscoverer(existing shared.RepositoryDiscoverer, logger *zap.Logger, options discovery.Options) shared.RepositoryDiscoverer {
	if existing != nil {
		return existing
	}
	return discovery.NewFilesystemRepositoryDiscovererWithOptions(logger, options)
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveShellExecutor returns the provided executor or constructs an OS-backed one reporting to the observer.
func ResolveShellExecutor(existing *execshell.ShellExecutor, logger *zap.Logger, observer execshell.CommandEventObserver) (*execshell.ShellExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	return execshell.NewShellExecutorWithObserver(logger, execshell.NewOSCommandRunner(), observer)
}
