package task

import (
	"errors"
	"strings"

	internalstrings "github.com/amonks/pv/internal/strings"
)

// MinTextLength is the minimum number of characters in trimmed task text.
const MinTextLength = 10

var (
	// ErrEmpty is returned when task text is empty or only whitespace.
	ErrEmpty = errors.New("text must not be empty")

	// ErrTooShort is returned when trimmed task text is shorter than MinTextLength.
	ErrTooShort = errors.New("text must be at least 10 characters")

	// ErrOnlyDigits is returned when trimmed task text is made only of digits.
	ErrOnlyDigits = errors.New("text must not be only numbers")

	// ErrDuplicate is returned when the text matches another task, ignoring case.
	ErrDuplicate = errors.New("duplicate text")
)

// Validate checks text against the task text rules, first match wins:
// empty, too short, only digits, duplicate. The duplicate check covers every
// local task except ignoreID and every external task.
func Validate(text string, ignoreID int64, local, external []Task) error {
	if internalstrings.IsBlank(text) {
		return ErrEmpty
	}
	normalized := NormalizeText(text)
	if internalstrings.RuneCount(normalized) < MinTextLength {
		return ErrTooShort
	}
	if internalstrings.IsDigits(normalized) {
		return ErrOnlyDigits
	}

	key := internalstrings.NormalizeLowerTrimSpace(normalized)
	for _, t := range local {
		if t.ID == ignoreID {
			continue
		}
		if internalstrings.NormalizeLowerTrimSpace(t.Text) == key {
			return ErrDuplicate
		}
	}
	for _, t := range external {
		if internalstrings.NormalizeLowerTrimSpace(t.Text) == key {
			return ErrDuplicate
		}
	}
	return nil
}

// NormalizeText returns text as it is stored: surrounding whitespace removed.
func NormalizeText(text string) string {
	return strings.TrimSpace(text)
}

// IsValidationError reports whether err came from Validate.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmpty) ||
		errors.Is(err, ErrTooShort) ||
		errors.Is(err, ErrOnlyDigits) ||
		errors.Is(err, ErrDuplicate)
}
