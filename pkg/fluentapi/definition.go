package fluentapi

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Definition is the file form of an API: where it lives and its endpoint
// tree. YAML and JSON are both accepted.
type Definition struct {
	BaseURL   string        `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
	Prefix    string        `json:"prefix,omitempty"  yaml:"prefix,omitempty"`
	Endpoints []Declaration `json:"endpoints"         yaml:"endpoints"`
}

// ParseDefinition decodes a definition and validates every declaration in it.
func ParseDefinition(data []byte) (*Definition, error) {
	var definition Definition

	err := yaml.Unmarshal(data, &definition)
	if err != nil {
		return nil, fmt.Errorf("parsing API definition: %w", err)
	}

	for _, declaration := range definition.Endpoints {
		err := declaration.ValidateTree()
		if err != nil {
			return nil, err
		}
	}

	return &definition, nil
}

// LoadDefinition reads and parses a definition file.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading API definition: %w", err)
	}

	return ParseDefinition(data)
}
