// Package naming validates identifiers against the engine's naming rules.
package naming

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MaxLength is the longest accepted resource name (DNS label limit).
const MaxLength = 63

// ErrInvalidName is returned when an identifier fails the format rules.
var ErrInvalidName = errors.New("invalid name")

var dnsSubdomain = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?(\.[a-z0-9]([-a-z0-9]*[a-z0-9])?)*$`)

// Validate checks name against the lowercase RFC 1123 subdomain format.
func Validate(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if len(name) > MaxLength {
		return fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidName, name, MaxLength)
	}
	if !dnsSubdomain.MatchString(name) {
		return fmt.Errorf("%w: %q must consist of lower case alphanumeric characters, '-' or '.', "+
			"and must start and end with an alphanumeric character", ErrInvalidName, name)
	}
	return nil
}

// ValidateGenerateName checks a generate-name prefix. The engine appends a
// random suffix, so a trailing '-' or '.' is accepted.
func ValidateGenerateName(prefix string) error {
	trimmed := strings.TrimRight(prefix, "-.")
	if trimmed == "" {
		return fmt.Errorf("%w: generate name %q has no alphanumeric prefix", ErrInvalidName, prefix)
	}
	return Validate(trimmed)
}

// Resolve validates the (name, generateName) pair used by top-level objects.
// At least one of them must be set; both are validated when present.
func Resolve(name, generateName string) error {
	if name == "" && generateName == "" {
		return fmt.Errorf("%w: one of name or generate name is required", ErrInvalidName)
	}
	if name != "" {
		if err := Validate(name); err != nil {
			return err
		}
	}
	if generateName != "" {
		if err := ValidateGenerateName(generateName); err != nil {
			return err
		}
	}
	return nil
}
