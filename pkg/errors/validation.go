package errors

import (
	"net/url"
	"strings"
	"unicode"
)

const maxIDLength = 256

// ValidateWorkflowID validates a workflow identifier before it is
// interpolated into an API path.
//
// The rules are conservative:
//   - No empty IDs
//   - No control characters or whitespace
//   - No path separators, traversal sequences or URL delimiters
//   - Maximum length of 256 characters
func ValidateWorkflowID(id string) error {
	return validateID(ErrCodeInvalidWorkflowID, "workflow id", id)
}

// ValidateTaskID applies the [ValidateWorkflowID] rules to a task identifier.
func ValidateTaskID(id string) error {
	return validateID(ErrCodeInvalidInput, "task id", id)
}

func validateID(code Code, kind, id string) error {
	if id == "" {
		return New(code, "%s cannot be empty", kind)
	}
	if len(id) > maxIDLength {
		return New(code, "%s too long (max %d characters)", kind, maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(code, "%s contains invalid characters", kind)
		}
	}
	for _, pattern := range []string{"/", "\\", "..", "?", "#"} {
		if strings.Contains(id, pattern) {
			return New(code, "%s contains invalid characters: %q", kind, pattern)
		}
	}
	return nil
}

// ValidateEventID validates a numeric event identifier.
func ValidateEventID(id int64) error {
	if id <= 0 {
		return New(ErrCodeInvalidInput, "event id must be positive, got %d", id)
	}
	return nil
}

// ValidateURL validates an API base URL. It must use http or https and name
// a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL must include a host")
	}
	return nil
}

// ValidatePath validates a relative output path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidInput, "path cannot contain path traversal sequences (..)")
	}
	return nil
}
