package namecodec

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TableFile represents a YAML encoding table
//
//	encodings:
//	  - cp866
//	  - utf-8
type TableFile struct {
	Encodings []string `yaml:"encodings"`
}

// LoadTable reads the ordered encoding names from a YAML file
func LoadTable(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read encoding table: %w", err)
	}

	var table TableFile
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse encoding table %s: %w", path, err)
	}

	if len(table.Encodings) == 0 {
		return nil, fmt.Errorf("encoding table %s lists no encodings", path)
	}

	return table.Encodings, nil
}

// Load builds a chain from a YAML table when path is set, otherwise from names
func Load(path string, names []string) (*Manager, error) {
	if path != "" {
		var err error
		names, err = LoadTable(path)
		if err != nil {
			return nil, err
		}
	}
	return NewManagerFromNames(names)
}
