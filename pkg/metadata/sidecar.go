package metadata

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Suffix is the default sidecar marker appended to an asset's file name
const Suffix = ".meta"

// Sidecar holds the fields of a .meta file that packaging cares about.
// The raw file is kept separately by callers and re-emitted verbatim.
type Sidecar struct {
	GUID scalar `yaml:"guid"`
}

// scalar keeps the literal text of a YAML scalar, so hex guids made only of
// digits are not reinterpreted as numbers.
type scalar string

func (s *scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar value", node.Line)
	}
	*s = scalar(node.Value)
	return nil
}

// ParseError represents a sidecar parsing error
type ParseError struct {
	Line    int
	Field   string
	Message string
}

func (e ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s - %s", e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("%s - %s", e.Field, e.Message)
}

// ParseSidecar extracts the guid from the content of a .meta file
func ParseSidecar(data []byte) (*Sidecar, error) {
	var sc Sidecar
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, ParseError{Field: "guid", Message: err.Error()}
	}

	guid := strings.TrimSpace(string(sc.GUID))
	if guid == "" {
		return nil, ParseError{Field: "guid", Message: "missing mandatory field"}
	}

	// The guid becomes an archive directory name
	if guid == "." || guid == ".." || strings.ContainsAny(guid, `/\`) {
		return nil, ParseError{Field: "guid", Message: fmt.Sprintf("invalid identifier %q", guid)}
	}

	sc.GUID = scalar(guid)
	return &sc, nil
}

// Identifier returns the parsed guid
func (s *Sidecar) Identifier() string {
	return string(s.GUID)
}

// PathFor returns the sidecar path for an entry path and suffix
func PathFor(entryPath, suffix string) string {
	if suffix == "" {
		suffix = Suffix
	}
	return entryPath + suffix
}

// IsSidecar reports whether name is a sidecar file name
func IsSidecar(name, suffix string) bool {
	if suffix == "" {
		suffix = Suffix
	}
	return strings.HasSuffix(name, suffix)
}
