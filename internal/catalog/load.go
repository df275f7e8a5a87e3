package catalog

import (
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed data/catalog.yaml
var defaultData []byte

type document struct {
	Categories []Category `yaml:"categories"`
	Units      []Unit     `yaml:"units"`
}

// Parse decodes a YAML catalog document and validates it.
func Parse(data []byte) (*Store, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	return New(doc.Categories, doc.Units)
}

// Read parses a YAML catalog document from r.
func Read(r io.Reader) (*Store, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("catalog: read: %w", err)
	}
	return Parse(data)
}

// Default returns the catalog shipped with the binary.
func Default() (*Store, error) {
	return Parse(defaultData)
}
