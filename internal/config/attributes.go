package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AttributesFile represents the root structure of an attributes file:
//
//	attributes:
//	  - "java.lang:type=Memory[HeapMemoryUsage.used,HeapMemoryUsage.max]"
//	  - "java.lang:type=Threading[ThreadCount]"
type AttributesFile struct {
	Attributes []string `yaml:"attributes"`
}

// LoadAttributeTokens reads attribute list tokens from the specified YAML file.
// The tokens use the same grammar as command-line attribute arguments.
func LoadAttributeTokens(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("attributes file path is required")
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("attributes file not found: %s", path)
	}

	// Read file content
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attributes file: %w", err)
	}

	// Parse YAML
	var file AttributesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse attributes file: %w", err)
	}

	if len(file.Attributes) == 0 {
		return nil, fmt.Errorf("no attributes defined in file: %s", path)
	}

	for i, token := range file.Attributes {
		if token == "" {
			return nil, fmt.Errorf("attribute at index %d is empty", i)
		}
	}

	return file.Attributes, nil
}
