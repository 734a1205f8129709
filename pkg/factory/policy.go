package factory

import (
	"strings"

	"github.com/arthur-debert/tasklines/pkg/errors"
)

// Policy selects how the factory reacts to invalid parameters
type Policy int

const (
	// Strict returns the validation error to the caller
	Strict Policy = iota + 1
	// Lenient substitutes the nearest valid parameter and records it
	Lenient
)

func (p Policy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Lenient:
		return "lenient"
	default:
		return "invalid"
	}
}

// ParsePolicy converts a configuration value into a Policy
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	}
	return 0, errors.Newf(errors.ErrConfigInvalid, "unknown factory policy %q", s).
		WithDetail("allowed", []string{"strict", "lenient"})
}
