package manifest

import (
	"strconv"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Manifest holds the package.json members used by the release workflow.
type Manifest struct {
	Name    string         `json:"name"`
	Version string         `json:"version"`
	Publish jsontext.Value `json:"publish"`
	Upgrade jsontext.Value `json:"upgrade"`
}

// PublishEnabled reports whether "publish" is truthy.
func (manifest Manifest) PublishEnabled() bool {
	return truthy(manifest.Publish)
}

// UpgradeEnabled reports whether "upgrade" is truthy.
func (manifest Manifest) UpgradeEnabled() bool {
	return truthy(manifest.Upgrade)
}

// Decode parses manifest content.
func Decode(content []byte) (Manifest, error) {
	var decoded Manifest
	if decodeError := json.Unmarshal(content, &decoded); decodeError != nil {
		return Manifest{}, decodeError
	}
	return decoded, nil
}

// truthy applies JavaScript truthiness to a raw JSON value; absent members are false.
func truthy(value jsontext.Value) bool {
	if len(value) == 0 {
		return false
	}
	switch value.Kind() {
	case 't', '{', '[':
		return true
	case '"':
		var decoded string
		if decodeError := json.Unmarshal(value, &decoded); decodeError != nil {
			return false
		}
		return len(decoded) > 0
	case '0':
		number, parseError := strconv.ParseFloat(string(value), 64)
		return parseError == nil && number != 0
	default:
		return false
	}
}
