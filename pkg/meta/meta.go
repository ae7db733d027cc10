// Package meta loads the package description file (info.json) that names
// and versions the packages being built.
package meta

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"github.com/arc-language/debpack/pkg/core"
)

const (
	// DefaultVersion is used when the info file has no version
	DefaultVersion = "0.0.0-0"
	// DefaultDescription is used when the info file has no description
	DefaultDescription = "sample package"
)

var (
	// Debian package name: lower case alphanumerics and + . -, at least two characters
	namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9+.-]+$`)
	// Debian version: [epoch:]upstream[-revision], starting with a digit
	versionPattern = regexp.MustCompile(`^[0-9][A-Za-z0-9.+~:-]*$`)
)

// PackageInfo describes the package being built. Treat it as read-only once loaded.
type PackageInfo struct {
	Name         string `json:"name" yaml:"name" toml:"name"`
	Version      string `json:"version" yaml:"version" toml:"version"`
	Description  string `json:"description" yaml:"description" toml:"description"`
	Dependencies string `json:"dependencies,omitempty" yaml:"dependencies,omitempty" toml:"dependencies,omitempty"`
}

// Load reads and validates an info file. The format follows the extension:
// .yaml/.yml and .toml are supported, anything else is read as JSON.
func Load(path string) (*PackageInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.Fail(core.ErrMalformedMetadata, err, "path", path)
	}

	doc, err := decode(path, data)
	if err != nil {
		return nil, core.Fail(core.ErrMalformedMetadata, err, "path", path)
	}

	info, err := FromMap(doc)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return info, nil
}

// Parse reads an info document of the given format ("json", "yaml" or "toml")
func Parse(format string, data []byte) (*PackageInfo, error) {
	doc, err := decode("info."+format, data)
	if err != nil {
		return nil, core.Fail(core.ErrMalformedMetadata, err)
	}
	return FromMap(doc)
}

func decode(path string, data []byte) (map[string]any, error) {
	var doc map[string]any

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, fmt.Errorf("parsing toml: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parsing json: %w", err)
		}
		if dec.More() {
			return nil, errors.New("parsing json: trailing data after document")
		}
	}

	if doc == nil {
		return nil, errors.New("document is empty or not an object")
	}
	return doc, nil
}

// FromMap builds a PackageInfo from a decoded document, applying defaults
func FromMap(doc map[string]any) (*PackageInfo, error) {
	info := &PackageInfo{}

	var err error
	if info.Name, err = stringField(doc, "name"); err != nil {
		return nil, err
	}
	if info.Version, err = stringField(doc, "version"); err != nil {
		return nil, err
	}
	if info.Description, err = stringField(doc, "description"); err != nil {
		return nil, err
	}
	if info.Dependencies, err = dependencies(doc); err != nil {
		return nil, err
	}

	if info.Name == "" {
		return nil, core.Fail(core.ErrMissingRequiredField, errors.New("name not specified in the information file"), "field", "name")
	}
	if info.Version == "" {
		info.Version = DefaultVersion
	}
	if info.Description == "" {
		info.Description = DefaultDescription
	}

	if err := info.Validate(); err != nil {
		return nil, err
	}
	return info, nil
}

// Validate checks that every field can be written into a root directory name
// and a control file. Name and version follow Debian's syntax; dependencies
// must be a single line; the description may span lines but holds no other
// control characters.
func (p *PackageInfo) Validate() error {
	if !namePattern.MatchString(p.Name) {
		return core.Fail(core.ErrMalformedMetadata,
			fmt.Errorf("name %q: want lower case letters, digits, '+', '-' or '.', starting with a letter or digit", p.Name),
			"field", "name")
	}
	if !versionPattern.MatchString(p.Version) || strings.Contains(p.Version, "..") {
		return core.Fail(core.ErrMalformedMetadata,
			fmt.Errorf("version %q: want a Debian version starting with a digit", p.Version),
			"field", "version")
	}
	if hasControl(p.Dependencies, false) {
		return core.Fail(core.ErrMalformedMetadata,
			fmt.Errorf("dependencies %q: control characters are not allowed", p.Dependencies),
			"field", "dependencies")
	}
	if hasControl(p.Description, true) {
		return core.Fail(core.ErrMalformedMetadata,
			fmt.Errorf("description %q: control characters are not allowed", p.Description),
			"field", "description")
	}
	return nil
}

func hasControl(s string, allowNewline bool) bool {
	for _, r := range s {
		if r == '\n' && allowNewline {
			continue
		}
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

func stringField(doc map[string]any, key string) (string, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return "", nil
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), nil
	default:
		return "", core.Fail(core.ErrMalformedMetadata, fmt.Errorf("%s: expected a string, got %T", key, v), "field", key)
	}
}

// dependencies accepts either a ready dependency expression or a list of them
func dependencies(doc map[string]any) (string, error) {
	v, ok := doc["dependencies"]
	if !ok || v == nil {
		return "", nil
	}

	switch deps := v.(type) {
	case string:
		return strings.TrimSpace(deps), nil
	case []any:
		parts := make([]string, 0, len(deps))
		for i, d := range deps {
			s, ok := d.(string)
			if !ok {
				return "", core.Fail(core.ErrMalformedMetadata, fmt.Errorf("dependencies[%d]: expected a string, got %T", i, d), "field", "dependencies")
			}
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", "), nil
	default:
		return "", core.Fail(core.ErrMalformedMetadata, fmt.Errorf("dependencies: expected a string or list, got %T", v), "field", "dependencies")
	}
}
