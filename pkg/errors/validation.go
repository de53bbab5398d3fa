package errors

import (
	"strings"
	"unicode"
)

// maxSegmentNameLength bounds segment names so they stay usable as file
// names and redis/badger keys.
const maxSegmentNameLength = 128

// ValidateSegmentName validates a persisted segment name such as
// "ext_wheelchair". Segment names become file names in a file directory and
// key suffixes in key-value backends, so the rules are conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - No leading dot (hidden files, temp files used for atomic writes)
//   - Maximum length of 128 characters
func ValidateSegmentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "segment name cannot be empty")
	}

	if len(name) > maxSegmentNameLength {
		return New(ErrCodeInvalidInput, "segment name too long (max %d characters)", maxSegmentNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "segment name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "segment name cannot contain path separators")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "segment name cannot contain path traversal sequences (..)")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidInput, "segment name cannot start with a dot")
	}

	return nil
}
