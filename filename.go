// filename.go: Leaf-name allowlist validation
//
// A second, independent gate in front of the sandbox: even if a caller
// constructs the final path differently from the one the sandbox checked, a
// leaf name that passed ValidateName cannot carry traversal sequences or
// shell metacharacters. The two layers fail independently on purpose.

package sliceguard

import (
	"fmt"
	"regexp"

	"github.com/agilira/go-errors"
)

// namePattern is the exact accepted character class: ASCII letters, digits,
// underscore, hyphen, period and space, with the first character restricted
// to letters, digits, underscore or hyphen so names cannot start with a dot.
// Path separators, `..` and shell metacharacters ($, backtick, ;) are
// excluded by construction.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9_\-. ]*$`)

// ValidateName accepts a user-controlled filename leaf or rejects it with
// AccessDenied. Apply it before the name is joined into any path.
func ValidateName(name string) error {
	if name == "" {
		return errors.New(ErrCodeAccessDenied, "access denied: empty filename")
	}
	if !namePattern.MatchString(name) {
		return errors.New(ErrCodeAccessDenied,
			fmt.Sprintf("access denied: filename %q contains characters outside [A-Za-z0-9_-. ]", name)).
			WithContext("filename", name)
	}
	return nil
}
