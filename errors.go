// errors.go: Typed failure taxonomy for the sliceguard core
//
// Every recoverable failure in the core is one of four coded kinds, so the
// boundary layer can map it to a wire-level label without inspecting
// free-form messages. Anything outside the four kinds is unclassified and
// surfaces with full detail instead of being shoehorned into a category.

package sliceguard

import (
	"fmt"
	"strings"

	"github.com/agilira/go-errors"
)

// Error codes for the four recoverable failure kinds.
const (
	ErrCodeAccessDenied   = "SLICEGUARD_ACCESS_DENIED"
	ErrCodeNotFound       = "SLICEGUARD_NOT_FOUND"
	ErrCodeParseFailure   = "SLICEGUARD_PARSE_ERROR"
	ErrCodeProcessFailure = "SLICEGUARD_CLI_ERROR"

	// Configuration validation codes (startup-time only, never crosses the
	// operation boundary).
	ErrCodeInvalidConfig = "SLICEGUARD_INVALID_CONFIG"
)

// Wire-level labels the protocol layer prepends to user-facing messages.
const (
	LabelForbidden     = "[403 Forbidden]"
	LabelNotFound      = "[404 Not Found]"
	LabelParseError    = "[Parse Error]"
	LabelCLIError      = "[CLI Error]"
	LabelInternalError = "[Internal Error]"
)

// stderrCap bounds captured process output embedded in errors and results.
const stderrCap = 2000

// accessDenied builds an AccessDenied error with a formatted message.
func accessDenied(format string, args ...interface{}) error {
	return errors.New(ErrCodeAccessDenied, fmt.Sprintf(format, args...))
}

// notFound builds a NotFound error for a missing filesystem entry.
func notFound(path string) error {
	return errors.New(ErrCodeNotFound, fmt.Sprintf("no such file or directory: %s", path)).
		WithContext("path", path)
}

// parseFailure wraps a parser error with the human label of its source.
func parseFailure(err error, label string) error {
	return errors.Wrap(err, ErrCodeParseFailure, fmt.Sprintf("malformed document: %s", label)).
		WithContext("source", label)
}

// CodeOf extracts the sliceguard error code from an error.
// Handles the go-errors format: [CODE]: Message. Returns "" for nil or
// uncoded errors.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}

	errStr := err.Error()
	if len(errStr) > 3 && errStr[0] == '[' {
		if idx := strings.IndexByte(errStr, ']'); idx > 1 {
			code := errStr[1:idx]
			if strings.HasPrefix(code, "SLICEGUARD_") {
				return code
			}
		}
	}
	return ""
}

// IsAccessDenied reports whether err is a sandbox or validation rejection.
func IsAccessDenied(err error) bool { return CodeOf(err) == ErrCodeAccessDenied }

// IsNotFound reports whether err represents a missing file or directory.
func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeNotFound }

// IsParseFailure reports whether err came from a strict document parse.
func IsParseFailure(err error) bool { return CodeOf(err) == ErrCodeParseFailure }

// IsProcessFailure reports whether err came from the subprocess runner.
func IsProcessFailure(err error) bool { return CodeOf(err) == ErrCodeProcessFailure }

// WireLabel maps an error to the textual prefix the protocol layer uses.
// Unclassified errors (including programming errors and unexpected I/O
// failures) fall through to the internal-error label so operators can tell
// policy rejections from bugs.
func WireLabel(err error) string {
	switch CodeOf(err) {
	case ErrCodeAccessDenied:
		return LabelForbidden
	case ErrCodeNotFound:
		return LabelNotFound
	case ErrCodeParseFailure:
		return LabelParseError
	case ErrCodeProcessFailure:
		return LabelCLIError
	default:
		return LabelInternalError
	}
}

// truncateOutput caps captured process output at stderrCap characters.
func truncateOutput(s string) string {
	if len(s) > stderrCap {
		return s[:stderrCap]
	}
	return s
}
