package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshSchemePrefixConstant             = "ssh://"
	userHostDelimiterConstant           = "@"
	scpPathDelimiterConstant            = ":"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	requiredValueMessageConstant        = "value required"
	invalidRemoteURLMessageConstant     = "not an ssh remote url"
)

// OriginURL is the structured form of an ssh origin such as git@github.com:owner/repo.git.
type OriginURL struct {
	Host string
	Path string
	// Owner and Repository are populated when Path has exactly two segments.
	Owner      string
	Repository string
}

// FullName returns owner/repository, or the path without the .git suffix when no owner is known.
func (origin OriginURL) FullName() string {
	if len(origin.Owner) > 0 {
		return origin.Owner + pathSeparatorConstant + origin.Repository
	}
	return strings.TrimSuffix(origin.Path, gitSuffixConstant)
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseOriginURL parses scp-like (user@host:path) and ssh:// remotes.
func ParseOriginURL(remote string) (OriginURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return OriginURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	pathDelimiter := scpPathDelimiterConstant
	if strings.HasPrefix(trimmedRemote, sshSchemePrefixConstant) {
		trimmedRemote = strings.TrimPrefix(trimmedRemote, sshSchemePrefixConstant)
		pathDelimiter = pathSeparatorConstant
	}

	userName, hostAndPath, hasUser := strings.Cut(trimmedRemote, userHostDelimiterConstant)
	if !hasUser || len(userName) == 0 {
		return OriginURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
	host, path, hasPath := strings.Cut(hostAndPath, pathDelimiter)
	if !hasPath || len(host) == 0 || len(path) == 0 {
		return OriginURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}

	origin := OriginURL{Host: host, Path: path}
	segments := strings.Split(strings.Trim(path, pathSeparatorConstant), pathSeparatorConstant)
	if len(segments) == 2 {
		repository := strings.TrimSuffix(segments[1], gitSuffixConstant)
		if len(segments[0]) > 0 && len(repository) > 0 {
			origin.Owner = segments[0]
			origin.Repository = repository
		}
	}
	return origin, nil
}
