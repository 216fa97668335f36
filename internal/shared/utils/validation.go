package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Size limits (in bytes)
const (
	MaxBodySize    = 1 * 1024 * 1024 // 1MB - maximum request body
	MaxFileSize    = 256 * 1024      // 256KB - virtual file content
	MaxCommandSize = 4 * 1024        // 4KB - one terminal line
	MaxLogMessage  = 16 * 1024       // 16KB - one UI log message
)

// String length limits
const (
	MaxIDLength   = 128
	MaxPathLength = 1024
	MaxIDCount    = 256
	MaxLogEntries = 200
)

// SafeIDPattern allows alphanumeric, hyphens, underscores
var SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil
	}

	if !utf8.ValidString(value) {
		return fmt.Errorf("%s is not valid UTF-8", fieldName)
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	// Check for null bytes (security issue)
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateID validates an ID field
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}

	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", fieldName)
	}

	return nil
}

// ValidateIDs validates a list of IDs such as a desktop order
func ValidateIDs(ids []string, fieldName string) error {
	if len(ids) > MaxIDCount {
		return fmt.Errorf("%s has too many entries (maximum %d)", fieldName, MaxIDCount)
	}
	for i, id := range ids {
		if err := ValidateID(id, fmt.Sprintf("%s[%d]", fieldName, i), true); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePath validates a virtual filesystem path. Relative paths and
// "~" are allowed; they are resolved later against the cwd.
func ValidatePath(path, fieldName string, required bool) error {
	if err := ValidateString(path, fieldName, 1, MaxPathLength, required); err != nil {
		return err
	}
	if strings.ContainsAny(path, "\r\n") {
		return fmt.Errorf("%s must not contain line breaks", fieldName)
	}
	return nil
}

// ValidateContent validates file content written through the API
func ValidateContent(content string) error {
	if len(content) > MaxFileSize {
		return fmt.Errorf("content size %d bytes exceeds maximum %d bytes", len(content), MaxFileSize)
	}
	if !utf8.ValidString(content) {
		return fmt.Errorf("content is not valid UTF-8")
	}
	return nil
}

// ValidateCommand validates one terminal command line. Empty lines are
// allowed and produce a fresh prompt.
func ValidateCommand(line string) error {
	if len(line) > MaxCommandSize {
		return fmt.Errorf("command exceeds maximum %d bytes", MaxCommandSize)
	}
	if strings.ContainsAny(line, "\x00\n") {
		return fmt.Errorf("command contains invalid characters")
	}
	return nil
}
