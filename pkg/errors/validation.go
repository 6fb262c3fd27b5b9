package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePersonID validates a person identifier from a dataset row.
// It rejects ids that could be used for path traversal or injection when the
// id flows into cache keys, file names, or URLs.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidatePersonID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidPerson, "person id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidPerson, "person id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPerson, "person id contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidPerson, "person id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateDatasetPath validates a local dataset file path for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidateDatasetPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidDataset, "dataset path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidDataset, "dataset path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidDataset, "dataset path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidDataset, "dataset path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidDataset, "dataset path cannot contain backslashes")
	}

	return nil
}

// ValidateDatasetURL validates a remote dataset URL.
// It ensures the URL has a safe scheme (http or https).
func ValidateDatasetURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// formatNames are the artifact formats the render pipeline can produce.
var formatNames = map[string]bool{
	"dot": true,
	"svg": true,
	"png": true,
}

// ValidateFormat validates a render output format name.
func ValidateFormat(format string) error {
	if !formatNames[format] {
		return New(ErrCodeInvalidFormat, "unsupported format: %q (expected dot, svg, or png)", format)
	}
	return nil
}

// genderNames are the recognized gender values in dataset rows.
var genderNames = map[string]bool{
	"":       true, // optional column
	"male":   true,
	"female": true,
	"other":  true,
}

// ValidateGender validates a gender column value after lowercasing.
func ValidateGender(gender string) error {
	if !genderNames[strings.ToLower(strings.TrimSpace(gender))] {
		return New(ErrCodeInvalidRow, "unrecognized gender: %q", gender)
	}
	return nil
}

// isoDateRegex matches calendar dates in ISO 8601 form (YYYY-MM-DD).
var isoDateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateDate validates a date column value. Empty dates are allowed;
// non-empty ones must be ISO 8601 calendar dates.
func ValidateDate(date string) error {
	if date == "" {
		return nil
	}
	if !isoDateRegex.MatchString(date) {
		return New(ErrCodeInvalidRow, "invalid date: %q (expected YYYY-MM-DD)", date)
	}
	return nil
}
