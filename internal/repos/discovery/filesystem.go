package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

const (
	gitMetadataDirectoryNameConstant            = ".git"
	rootInaccessibleErrorTemplateConstant       = "repository root %s is not accessible: %w"
	rootNotDirectoryErrorTemplateConstant       = "repository root %s: %w"
	scanFailedErrorTemplateConstant             = "scan of %s failed: %w"
	skippedUnreadableDirectoryMessageConstant   = "skipping unreadable directory"
	skippedNonCanonicalDirectoryMessageConstant = "skipping directory whose real path differs"
	discoveryCompletedMessageConstant           = "repository discovery completed"
	logFieldPathConstant                        = "path"
	logFieldRootConstant                        = "root"
	logFieldRepositoryCountConstant             = "repository_count"
	nodeModulesDirectoryNameConstant            = "node_modules"
	cacheDirectoryNameConstant                  = ".cache"
	localDirectoryNameConstant                  = ".local"
	configurationDirectoryNameConstant          = ".config"
)

// ErrRootNotDirectory indicates a search root exists but is not a directory.
var ErrRootNotDirectory = errors.New("not a directory")

// DefaultExcludedDirectoryNames lists directory names that are never descended into.
func DefaultExcludedDirectoryNames() []string {
	return []string{
		nodeModulesDirectoryNameConstant,
		cacheDirectoryNameConstant,
		localDirectoryNameConstant,
		configurationDirectoryNameConstant,
	}
}

// Options tunes the filesystem walk.
type Options struct {
	// ExcludedDirectoryNames replaces the default denylist when non-nil.
	ExcludedDirectoryNames []string
	// SkipUnreadable logs and skips unreadable directories instead of failing the scan.
	SkipUnreadable bool
}

// FilesystemRepositoryDiscoverer locates git working copies beneath search roots.
//
// A repository is reported when a real directory named .git is found; the
// reported path is its parent. Symbolic links are never followed and
// directories whose resolved real path differs from their nominal path are
// skipped, so cycles cannot occur. Results are sorted and not de-duplicated.
type FilesystemRepositoryDiscoverer struct {
	logger                 *zap.Logger
	excludedDirectoryNames map[string]struct{}
	skipUnreadable         bool
}

// NewFilesystemRepositoryDiscoverer constructs a discoverer with the default denylist.
func NewFilesystemRepositoryDiscoverer() *FilesystemRepositoryDiscoverer {
	return NewFilesystemRepositoryDiscovererWithOptions(nil, Options{})
}

// NewFilesystemRepositoryDiscovererWithOptions constructs a discoverer with explicit options.
func NewFilesystemRepositoryDiscovererWithOptions(logger *zap.Logger, options Options) *FilesystemRepositoryDiscoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	excludedNames := options.ExcludedDirectoryNames
	if excludedNames == nil {
		excludedNames = DefaultExcludedDirectoryNames()
	}
	excludedSet := make(map[string]struct{}, len(excludedNames))
	for _, excludedName := range excludedNames {
		excludedSet[excludedName] = struct{}{}
	}
	return &FilesystemRepositoryDiscoverer{
		logger:                 logger,
		excludedDirectoryNames: excludedSet,
		skipUnreadable:         options.SkipUnreadable,
	}
}

// DiscoverRepositories walks every root and returns the sorted repository paths.
func (discoverer *FilesystemRepositoryDiscoverer) DiscoverRepositories(roots []string) ([]string, error) {
	repositories := []string{}
	for _, root := range roots {
		rootRepositories, scanError := discoverer.scanRoot(root)
		if scanError != nil {
			return nil, scanError
		}
		repositories = append(repositories, rootRepositories...)
	}

	sort.Strings(repositories)
	discoverer.logger.Debug(discoveryCompletedMessageConstant, zap.Strings(logFieldRootConstant, roots), zap.Int(logFieldRepositoryCountConstant, len(repositories)))
	return repositories, nil
}

func (discoverer *FilesystemRepositoryDiscoverer) scanRoot(root string) ([]string, error) {
	absoluteRoot, absoluteError := filepath.Abs(root)
	if absoluteError != nil {
		return nil, fmt.Errorf(rootInaccessibleErrorTemplateConstant, root, absoluteError)
	}
	rootInfo, statError := os.Stat(absoluteRoot)
	if statError != nil {
		return nil, fmt.Errorf(rootInaccessibleErrorTemplateConstant, root, statError)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf(rootNotDirectoryErrorTemplateConstant, root, ErrRootNotDirectory)
	}

	// The walk runs over the real tree; reported paths keep the root as the caller wrote it.
	resolvedRoot, resolveError := filepath.EvalSymlinks(absoluteRoot)
	if resolveError != nil {
		return nil, fmt.Errorf(rootInaccessibleErrorTemplateConstant, root, resolveError)
	}

	var repositories []string
	walkError := filepath.WalkDir(resolvedRoot, func(path string, entry fs.DirEntry, entryError error) error {
		if entryError != nil {
			if discoverer.skipUnreadable && path != resolvedRoot {
				discoverer.logger.Warn(skippedUnreadableDirectoryMessageConstant, zap.String(logFieldPathConstant, path), zap.Error(entryError))
				return fs.SkipDir
			}
			return entryError
		}
		if path == resolvedRoot || !entry.IsDir() {
			return nil
		}
		if _, excluded := discoverer.excludedDirectoryNames[entry.Name()]; excluded {
			return fs.SkipDir
		}
		if !isCanonicalDirectory(path) {
			discoverer.logger.Debug(skippedNonCanonicalDirectoryMessageConstant, zap.String(logFieldPathConstant, path))
			return fs.SkipDir
		}
		if entry.Name() == gitMetadataDirectoryNameConstant {
			repositoryPath := filepath.Dir(path)
			relativePath, relativeError := filepath.Rel(resolvedRoot, repositoryPath)
			if relativeError != nil {
				return relativeError
			}
			repositories = append(repositories, filepath.Join(absoluteRoot, relativePath))
			return fs.SkipDir
		}
		return nil
	})
	if walkError != nil {
		return nil, fmt.Errorf(scanFailedErrorTemplateConstant, root, walkError)
	}
	return repositories, nil
}

func isCanonicalDirectory(path string) bool {
	resolvedPath, resolveError := filepath.EvalSymlinks(path)
	if resolveError != nil {
		return false
	}
	return resolvedPath == path
}
