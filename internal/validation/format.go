package validation

import (
	"fmt"
	"strings"
)

// FormatValidValues joins string-like values for error messages.
func FormatValidValues[T ~string](values []T) string {
	formatted := make([]string, 0, len(values))
	for _, value := range values {
		formatted = append(formatted, string(value))
	}
	return strings.Join(formatted, ", ")
}

// FormatInvalidValueError wraps err with the rejected value and the accepted ones.
func FormatInvalidValueError[T ~string](err error, value T, valid []T) error {
	return fmt.Errorf("%w: %q (valid: %s)", err, string(value), FormatValidValues(valid))
}
