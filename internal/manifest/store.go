package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/temirov/repokeeper/internal/repos/shared"
)

const (
	// FileName is the manifest file looked up in each repository.
	FileName = "package.json"
	// NewProjectMarker is returned instead of a version when a repository has no manifest.
	NewProjectMarker = "new"

	versionMemberNameConstant          = "version"
	indentationConstant                = "  "
	trailingNewlineConstant            = "\n"
	manifestReadErrorTemplateConstant  = "unable to read %s: %w"
	manifestParseErrorTemplateConstant = "unable to parse %s: %w"
	manifestWriteErrorTemplateConstant = "unable to write %s: %w"
	manifestStatErrorTemplateConstant  = "unable to inspect %s: %w"
)

// ErrManifestNotObject indicates the manifest's top-level value is not a JSON object.
var ErrManifestNotObject = errors.New("manifest is not a JSON object")

// Store reads and rewrites package.json files.
type Store struct {
	fileSystem shared.FileSystem
}

// NewStore constructs a Store over the provided file system.
func NewStore(fileSystem shared.FileSystem) *Store {
	return &Store{fileSystem: fileSystem}
}

// Path returns the manifest location inside the repository.
func (store *Store) Path(repositoryPath string) string {
	return filepath.Join(repositoryPath, FileName)
}

// Load reads the manifest. The boolean is false when the repository has none.
func (store *Store) Load(repositoryPath string) (Manifest, bool, error) {
	content, exists, readError := store.read(repositoryPath)
	if readError != nil || !exists {
		return Manifest{}, exists, readError
	}
	decoded, decodeError := Decode(content)
	if decodeError != nil {
		return Manifest{}, true, fmt.Errorf(manifestParseErrorTemplateConstant, store.Path(repositoryPath), decodeError)
	}
	return decoded, true, nil
}

// NextPatchVersion computes the bumped version without writing. It returns NewProjectMarker without a manifest.
func (store *Store) NextPatchVersion(repositoryPath string) (string, error) {
	loaded, exists, loadError := store.Load(repositoryPath)
	if loadError != nil {
		return "", loadError
	}
	if !exists {
		return NewProjectMarker, nil
	}
	currentVersion, parseError := ParseVersion(loaded.Version)
	if parseError != nil {
		return "", parseError
	}
	return currentVersion.NextPatch().String(), nil
}

// BumpPatchVersion increments the patch version and rewrites the manifest.
// It returns NewProjectMarker and writes nothing when the repository has no manifest.
func (store *Store) BumpPatchVersion(repositoryPath string) (string, error) {
	nextVersion, planError := store.NextPatchVersion(repositoryPath)
	if planError != nil || nextVersion == NewProjectMarker {
		return nextVersion, planError
	}

	manifestPath := store.Path(repositoryPath)
	content, _, readError := store.read(repositoryPath)
	if readError != nil {
		return "", readError
	}
	rewrittenContent, rewriteError := RewriteVersion(content, nextVersion)
	if rewriteError != nil {
		return "", fmt.Errorf(manifestParseErrorTemplateConstant, manifestPath, rewriteError)
	}

	fileInfo, statError := store.fileSystem.Stat(manifestPath)
	if statError != nil {
		return "", fmt.Errorf(manifestStatErrorTemplateConstant, manifestPath, statError)
	}
	if writeError := store.fileSystem.WriteFile(manifestPath, rewrittenContent, fileInfo.Mode().Perm()); writeError != nil {
		return "", fmt.Errorf(manifestWriteErrorTemplateConstant, manifestPath, writeError)
	}
	return nextVersion, nil
}

func (store *Store) read(repositoryPath string) ([]byte, bool, error) {
	manifestPath := store.Path(repositoryPath)
	content, readError := store.fileSystem.ReadFile(manifestPath)
	if errors.Is(readError, fs.ErrNotExist) {
		return nil, false, nil
	}
	if readError != nil {
		return nil, false, fmt.Errorf(manifestReadErrorTemplateConstant, manifestPath, readError)
	}
	return content, true, nil
}

// RewriteVersion re-emits the manifest with two-space indentation and the top-level
// "version" member replaced, keeping member order. A trailing newline is kept only if present.
func RewriteVersion(content []byte, version string) ([]byte, error) {
	decoder := jsontext.NewDecoder(bytes.NewReader(content))
	var output bytes.Buffer
	encoder := jsontext.NewEncoder(&output, jsontext.WithIndent(indentationConstant), jsontext.SpaceAfterColon(true))

	openingToken, readError := decoder.ReadToken()
	if readError != nil {
		return nil, readError
	}
	if openingToken.Kind() != '{' {
		return nil, ErrManifestNotObject
	}
	if writeError := encoder.WriteToken(openingToken); writeError != nil {
		return nil, writeError
	}

	for decoder.PeekKind() != '}' {
		nameToken, nameError := decoder.ReadToken()
		if nameError != nil {
			return nil, nameError
		}
		memberName := nameToken.String()
		if writeError := encoder.WriteToken(nameToken); writeError != nil {
			return nil, writeError
		}

		memberValue, valueError := decoder.ReadValue()
		if valueError != nil {
			return nil, valueError
		}
		if memberName == versionMemberNameConstant {
			if writeError := encoder.WriteToken(jsontext.String(version)); writeError != nil {
				return nil, writeError
			}
			continue
		}
		if writeError := encoder.WriteValue(memberValue); writeError != nil {
			return nil, writeError
		}
	}

	closingToken, closeError := decoder.ReadToken()
	if closeError != nil {
		return nil, closeError
	}
	if writeError := encoder.WriteToken(closingToken); writeError != nil {
		return nil, writeError
	}

	rewritten := output.Bytes()
	if !bytes.HasSuffix(content, []byte(trailingNewlineConstant)) {
		rewritten = bytes.TrimSuffix(rewritten, []byte(trailingNewlineConstant))
	}
	return rewritten, nil
}
