package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxLimit is the hard cap on the number of results per query, applied
// regardless of caller input.
const MaxLimit = 20

// QueryDefaults carries the paging defaults the query builder applies
// when a caller supplies no value. It is constructed once at startup and
// never mutated afterwards.
type QueryDefaults struct {
	Limit  int `yaml:"limit"`
	Offset int `yaml:"offset"`
}

// DefaultQueryDefaults returns the built-in paging defaults.
func DefaultQueryDefaults() QueryDefaults {
	return QueryDefaults{Limit: MaxLimit, Offset: 0}
}

// LoadQueryDefaults loads query defaults from the given path. An empty
// path yields the built-in defaults. Values missing from the file keep
// their built-in value.
func LoadQueryDefaults(path string) (QueryDefaults, error) {
	d := DefaultQueryDefaults()
	if path == "" {
		return d, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return d, fmt.Errorf("failed to read defaults file: %v", err)
	}
	if err := yaml.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("invalid defaults file: %v", err)
	}

	if err := ValidateQueryDefaults(d); err != nil {
		return d, err
	}
	return d, nil
}

// ValidateQueryDefaults checks the consistency of loaded query defaults.
func ValidateQueryDefaults(d QueryDefaults) error {
	var errs []string

	if d.Limit < 1 || d.Limit > MaxLimit {
		errs = append(errs, fmt.Sprintf("limit must be between 1 and %d", MaxLimit))
	}
	if d.Offset < 0 {
		errs = append(errs, "offset must be >= 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("defaults validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
