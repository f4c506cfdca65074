package gitrepo

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/temirov/repokeeper/internal/repos/shared"
)

const (
	// AnyHostConstant matches an origin regardless of its current host.
	AnyHostConstant = "any"

	gitDirectoryNameConstant                = ".git"
	configurationFileNameConstant           = "config"
	originLinePrefixConstant                = "url = git@"
	urlAssignmentPrefixConstant             = "url ="
	hostMarkerTemplateConstant              = "git@%s:"
	lineSeparatorConstant                   = "\n"
	configurationReadErrorTemplateConstant  = "unable to read %s: %w"
	configurationWriteErrorTemplateConstant = "unable to write %s: %w"
	configurationStatErrorTemplateConstant  = "unable to inspect %s: %w"
)

// OriginLine locates the first line whose trimmed form starts with "url = git@".
// It returns the line index and the origin value after "url =".
func OriginLine(configurationText string) (int, string, bool) {
	for lineIndex, line := range strings.Split(configurationText, lineSeparatorConstant) {
		trimmedLine := strings.TrimSpace(line)
		if strings.HasPrefix(trimmedLine, originLinePrefixConstant) {
			return lineIndex, strings.TrimSpace(strings.TrimPrefix(trimmedLine, urlAssignmentPrefixConstant)), true
		}
	}
	return -1, "", false
}

// HostChange describes a planned or applied origin host rewrite.
type HostChange struct {
	Changed        bool
	FromHost       string
	ToHost         string
	PreviousOrigin string
	Origin         string
	// Repository is the owner/repository name of the origin, empty when the origin does not parse.
	Repository    string
	rewrittenText string
}

// RewriteOriginHost replaces git@from: with git@to: inside the origin line only.
// With from set to "any" the current host of the origin is replaced.
func RewriteOriginHost(configurationText string, fromHost string, toHost string) HostChange {
	lineIndex, origin, found := OriginLine(configurationText)
	if !found {
		return HostChange{FromHost: fromHost, ToHost: toHost}
	}

	parsedOrigin, parseError := ParseOriginURL(origin)
	repositoryName := ""
	if parseError == nil {
		repositoryName = parsedOrigin.FullName()
	}

	effectiveFromHost := fromHost
	if fromHost == AnyHostConstant {
		if parseError != nil {
			return HostChange{FromHost: fromHost, ToHost: toHost, PreviousOrigin: origin, Origin: origin}
		}
		effectiveFromHost = parsedOrigin.Host
	}

	lines := strings.Split(configurationText, lineSeparatorConstant)
	fromMarker := fmt.Sprintf(hostMarkerTemplateConstant, effectiveFromHost)
	toMarker := fmt.Sprintf(hostMarkerTemplateConstant, toHost)
	if !strings.Contains(lines[lineIndex], fromMarker) || fromMarker == toMarker {
		return HostChange{FromHost: effectiveFromHost, ToHost: toHost, PreviousOrigin: origin, Origin: origin, Repository: repositoryName}
	}

	lines[lineIndex] = strings.Replace(lines[lineIndex], fromMarker, toMarker, 1)
	rewrittenText := strings.Join(lines, lineSeparatorConstant)
	_, rewrittenOrigin, _ := OriginLine(rewrittenText)
	return HostChange{
		Changed:        true,
		FromHost:       effectiveFromHost,
		ToHost:         toHost,
		PreviousOrigin: origin,
		Origin:         rewrittenOrigin,
		Repository:     repositoryName,
		rewrittenText:  rewrittenText,
	}
}

// ConfigFile is the .git/config file of one repository.
type ConfigFile struct {
	fileSystem shared.FileSystem
	path       string
}

// NewConfigFile binds the config file of the repository rooted at repositoryPath.
func NewConfigFile(fileSystem shared.FileSystem, repositoryPath string) *ConfigFile {
	return &ConfigFile{
		fileSystem: fileSystem,
		path:       filepath.Join(repositoryPath, gitDirectoryNameConstant, configurationFileNameConstant),
	}
}

// Path returns the config file location.
func (configFile *ConfigFile) Path() string {
	return configFile.path
}

// Origin returns the ssh origin URL, or an empty string when none is configured.
func (configFile *ConfigFile) Origin() (string, error) {
	configurationText, readError := configFile.read()
	if readError != nil {
		return "", readError
	}
	_, origin, _ := OriginLine(configurationText)
	return origin, nil
}

// PlanOriginHostChange computes the rewrite without touching the file.
func (configFile *ConfigFile) PlanOriginHostChange(fromHost string, toHost string) (HostChange, error) {
	configurationText, readError := configFile.read()
	if readError != nil {
		return HostChange{}, readError
	}
	return RewriteOriginHost(configurationText, fromHost, toHost), nil
}

// ChangeOriginHost rewrites the origin host in place when it matches.
func (configFile *ConfigFile) ChangeOriginHost(fromHost string, toHost string) (HostChange, error) {
	change, planError := configFile.PlanOriginHostChange(fromHost, toHost)
	if planError != nil || !change.Changed {
		return change, planError
	}

	fileInfo, statError := configFile.fileSystem.Stat(configFile.path)
	if statError != nil {
		return HostChange{}, fmt.Errorf(configurationStatErrorTemplateConstant, configFile.path, statError)
	}
	if writeError := configFile.fileSystem.WriteFile(configFile.path, []byte(change.rewrittenText), fileInfo.Mode().Perm()); writeError != nil {
		return HostChange{}, fmt.Errorf(configurationWriteErrorTemplateConstant, configFile.path, writeError)
	}
	return change, nil
}

func (configFile *ConfigFile) read() (string, error) {
	content, readError := configFile.fileSystem.ReadFile(configFile.path)
	if readError != nil {
		return "", fmt.Errorf(configurationReadErrorTemplateConstant, configFile.path, readError)
	}
	return string(content), nil
}
