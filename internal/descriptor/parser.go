package descriptor

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Parse decodes a descriptor document. Both a mapping with a plugins key and
// a bare sequence of plugins are accepted. JSON input parses as YAML.
func Parse(data []byte) (*File, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing plugin descriptors: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("parsing plugin descriptors: document is empty")
	}

	doc := root.Content[0]
	var f File
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&f.Plugins); err != nil {
			return nil, fmt.Errorf("parsing plugin list: %w", err)
		}
	case yaml.MappingNode:
		if err := doc.Decode(&f); err != nil {
			return nil, fmt.Errorf("parsing plugin descriptors: %w", err)
		}
	default:
		return nil, fmt.Errorf("parsing plugin descriptors: expected a mapping or a list")
	}
	return &f, nil
}

// ParseFile reads and decodes the descriptor document at path.
func ParseFile(path string) (*File, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// LoadFile validates the document at path against the schema and decodes it.
// Schema violations are reported as a single error listing every issue.
func LoadFile(path string) (*File, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	result, err := Validate(data)
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("invalid plugin descriptors in %s: %s", path, result.Summary())
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// readFile reads a file and returns a descriptive error on failure.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plugin descriptors %s: %w", path, err)
	}
	return data, nil
}
