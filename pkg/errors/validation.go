package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIDLength bounds student, rule and layout identifiers.
const maxIDLength = 128

// ValidateID validates a student, rule or layout identifier.
// IDs end up in cache keys, file names and HTTP payloads, so the rules are
// conservative:
//   - No empty IDs
//   - No control characters or null bytes
//   - No path separators
//   - Maximum length of 128 characters
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "%s id cannot be empty", kind)
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "%s id too long (max %d characters)", kind, maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s id %q contains control characters", kind, id)
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "%s id %q cannot contain path separators", kind, id)
	}

	return nil
}

// seatKeyRegex matches the "row-col" form used by layout stores.
var seatKeyRegex = regexp.MustCompile(`^[0-9]+-[0-9]+$`)

// ValidateSeatKey checks that key has the "row-col" form with non-negative
// decimal coordinates.
func ValidateSeatKey(key string) error {
	if !seatKeyRegex.MatchString(key) {
		return New(ErrCodeInvalidSeatKey, "malformed seat key %q (want \"row-col\")", key)
	}
	return nil
}

// ValidateGrid checks that grid dimensions are positive and bounded.
func ValidateGrid(rows, cols int) error {
	const maxDim = 1000
	if rows <= 0 || cols <= 0 {
		return New(ErrCodeInvalidLayout, "grid must have positive dimensions, got %dx%d", rows, cols)
	}
	if rows > maxDim || cols > maxDim {
		return New(ErrCodeInvalidLayout, "grid too large (max %dx%d), got %dx%d", maxDim, maxDim, rows, cols)
	}
	return nil
}

// ValidateFilename validates an input or output filename for safety.
// Only the base name is checked; directories are the caller's concern.
func ValidateFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "filename cannot be empty")
	}
	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "filename contains invalid characters")
		}
	}
	return nil
}

// ValidateFormat checks that format is one of the allowed output formats.
func ValidateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
}
