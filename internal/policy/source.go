package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source supplies the raw configuration tree on every reload.
type Source interface {
	Load() (map[string]any, error)
}

// Tree is an in-memory Source.
type Tree map[string]any

func (t Tree) Load() (map[string]any, error) {
	return t, nil
}

// YAMLFile is a Source reading a YAML document from disk.
type YAMLFile string

func (f YAMLFile) Load() (map[string]any, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", string(f), err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a YAML policy document. An empty document yields an
// empty tree.
func ParseYAML(data []byte) (map[string]any, error) {
	tree := map[string]any{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	return tree, nil
}
