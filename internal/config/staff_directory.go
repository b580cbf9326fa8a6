package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// StaffDirectoryFile is the YAML layout of a staff allow-list seed file:
//
//	staff:
//	  - Jane Doe
//	  - John Smith
type StaffDirectoryFile struct {
	Staff []string `yaml:"staff"`
}

// LoadStaffDirectory reads the names listed in a staff directory seed file.
// Blank entries are dropped; names are otherwise kept as written.
func LoadStaffDirectory(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open staff directory file: %w", err)
	}
	defer file.Close()

	var doc StaffDirectoryFile
	if err := yaml.NewDecoder(file).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode staff directory file: %w", err)
	}

	names := make([]string, 0, len(doc.Staff))
	for _, name := range doc.Staff {
		if strings.TrimSpace(name) == "" {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
