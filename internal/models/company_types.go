package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CompanyTypeMapping translates the public slugs used in URLs and forms
// (startup, sme, ...) to the display names the record store filters on
// (Startup, SME, ...).
type CompanyTypeMapping struct {
	Types map[string]string `yaml:"company_types"`
}

// LoadCompanyTypeMapping reads and parses the mapping file.
func LoadCompanyTypeMapping(path string) (*CompanyTypeMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read company type mapping: %w", err)
	}

	var mapping CompanyTypeMapping
	if err := yaml.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("failed to unmarshal company type mapping: %w", err)
	}
	if len(mapping.Types) == 0 {
		return nil, fmt.Errorf("company type mapping %s is empty", path)
	}

	return &mapping, nil
}

// Resolve maps a public slug to its record store name. Unknown slugs fall
// through unchanged so records addressed by display name still resolve.
func (m *CompanyTypeMapping) Resolve(slug string) (string, bool) {
	if name, ok := m.Types[slug]; ok {
		return name, true
	}
	for _, name := range m.Types {
		if name == slug {
			return name, true
		}
	}
	return "", false
}
