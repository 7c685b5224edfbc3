// errors_test.go: Taxonomy classification and wire-label mapping tests

package sliceguard

import (
	"fmt"
	"testing"

	"github.com/agilira/go-errors"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain error", fmt.Errorf("boom"), ""},
		{"access denied", errors.New(ErrCodeAccessDenied, "nope"), ErrCodeAccessDenied},
		{"not found", notFound("/x/y"), ErrCodeNotFound},
		{"parse failure", parseFailure(fmt.Errorf("bad json"), "/x/y.json"), ErrCodeParseFailure},
		{"process failure", errors.New(ErrCodeProcessFailure, "exit 1"), ErrCodeProcessFailure},
		{"foreign coded error", errors.New("OTHER_CODE", "other"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWireLabel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"access denied", errors.New(ErrCodeAccessDenied, "nope"), LabelForbidden},
		{"not found", notFound("/x"), LabelNotFound},
		{"parse failure", parseFailure(fmt.Errorf("bad"), "x"), LabelParseError},
		{"process failure", errors.New(ErrCodeProcessFailure, "exit"), LabelCLIError},
		{"unclassified", fmt.Errorf("unexpected"), LabelInternalError},
		{"nil", nil, LabelInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WireLabel(tt.err); got != tt.want {
				t.Errorf("WireLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindPredicates(t *testing.T) {
	denied := errors.New(ErrCodeAccessDenied, "no")
	if !IsAccessDenied(denied) || IsNotFound(denied) || IsParseFailure(denied) || IsProcessFailure(denied) {
		t.Error("AccessDenied error misclassified")
	}

	missing := notFound("/gone")
	if !IsNotFound(missing) || IsAccessDenied(missing) {
		t.Error("NotFound error misclassified")
	}
}

func TestTruncateOutput(t *testing.T) {
	short := "hello"
	if truncateOutput(short) != short {
		t.Error("short output should pass through unchanged")
	}

	long := make([]byte, stderrCap+500)
	for i := range long {
		long[i] = 'x'
	}
	if got := truncateOutput(string(long)); len(got) != stderrCap {
		t.Errorf("truncated length = %d, want %d", len(got), stderrCap)
	}
}
