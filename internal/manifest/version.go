package manifest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

const (
	versionComponentSeparatorConstant = "."
	semverPrefixConstant              = "v"
	malformedVersionTemplateConstant  = "malformed version %q: expected major.minor.patch"
)

// MalformedVersionError reports a manifest version that is not plain major.minor.patch.
type MalformedVersionError struct {
	Value string
}

// Error describes the rejected value.
func (versionError MalformedVersionError) Error() string {
	return fmt.Sprintf(malformedVersionTemplateConstant, versionError.Value)
}

// Version is a three-part numeric version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion accepts exactly major.minor.patch without prerelease or build suffixes.
// A patch that cannot be incremented is rejected.
func ParseVersion(rawVersion string) (Version, error) {
	prefixedVersion := semverPrefixConstant + rawVersion
	if !semver.IsValid(prefixedVersion) || len(semver.Prerelease(prefixedVersion)) > 0 || semver.Canonical(prefixedVersion) != prefixedVersion {
		return Version{}, MalformedVersionError{Value: rawVersion}
	}

	components := strings.Split(rawVersion, versionComponentSeparatorConstant)
	numbers := make([]int, 0, len(components))
	for _, component := range components {
		number, conversionError := strconv.Atoi(component)
		if conversionError != nil {
			return Version{}, MalformedVersionError{Value: rawVersion}
		}
		numbers = append(numbers, number)
	}
	if numbers[2] == math.MaxInt {
		return Version{}, MalformedVersionError{Value: rawVersion}
	}
	return Version{Major: numbers[0], Minor: numbers[1], Patch: numbers[2]}, nil
}

// NextPatch returns the version with the patch component incremented.
func (version Version) NextPatch() Version {
	version.Patch++
	return version
}

// String renders major.minor.patch.
func (version Version) String() string {
	return fmt.Sprintf("%d.%d.%d", version.Major, version.Minor, version.Patch)
}
