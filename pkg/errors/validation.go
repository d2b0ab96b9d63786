package errors

import (
	"strings"
	"unicode"
)

// ValidateOutputPath validates a file path that rendered output will be written to.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must not name a directory (trailing separator)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidPath, "output path names a directory: %q", path)
	}

	return nil
}

// ValidateSequenceInput performs cheap sanity checks on raw sequence text
// received from a user-facing surface before it reaches the structure model.
// Alphabet membership is left to the structure model.
func ValidateSequenceInput(seq string, maxLen int) error {
	if strings.TrimSpace(seq) == "" {
		return New(ErrCodeInvalidInput, "sequence cannot be empty")
	}
	if maxLen > 0 && len(seq) > maxLen {
		return New(ErrCodeInvalidInput, "sequence too long (%d > %d)", len(seq), maxLen)
	}
	return nil
}
