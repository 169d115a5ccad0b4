package license

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
)

// manifestFile is the wrapped manifest form: `licenses: [...]`.
type manifestFile struct {
	Licenses []License `yaml:"licenses"`
}

// LoadManifest reads a license manifest. Both a bare YAML list and a document
// with a top-level `licenses` key are accepted.
func LoadManifest(path string) ([]License, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "cannot read license manifest").
			WithContext("path", path).
			Build()
	}
	licenses, err := ParseManifest(data)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid license manifest").
			WithContext("path", path).
			Build()
	}
	return licenses, nil
}

// ParseManifest decodes manifest bytes.
func ParseManifest(data []byte) ([]License, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var licenses []License
	if trimmed[0] == '-' {
		if err := yaml.Unmarshal(trimmed, &licenses); err != nil {
			return nil, fmt.Errorf("decode license list: %w", err)
		}
	} else {
		var mf manifestFile
		if err := yaml.Unmarshal(trimmed, &mf); err != nil {
			return nil, fmt.Errorf("decode license manifest: %w", err)
		}
		licenses = mf.Licenses
	}

	for i, l := range licenses {
		if strings.TrimSpace(l.Name) == "" && strings.TrimSpace(l.Text) == "" {
			return nil, fmt.Errorf("license entry %d has neither name nor text", i+1)
		}
	}
	return licenses, nil
}

// Resolve returns the inline licenses followed by those of the manifest, if any.
func Resolve(inline []License, manifestPath string) ([]License, error) {
	out := make([]License, 0, len(inline))
	out = append(out, inline...)
	if manifestPath == "" {
		return out, nil
	}
	fromManifest, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	return append(out, fromManifest...), nil
}
