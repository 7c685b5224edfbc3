// filename_test.go: Leaf-name allowlist tests

package sliceguard

import "testing"

func TestValidateNameAccepts(t *testing.T) {
	names := []string{
		"benchy",
		"voron-350",
		"petg_black",
		"profile v2.1",
		"0.2mm draft",
		"a",
		"X1-Carbon 0.4 nozzle.json",
	}

	for _, name := range names {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) = %v, want nil", name, err)
		}
	}
}

func TestValidateNameRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"forward slash", "a/b"},
		{"backslash", `a\b`},
		{"traversal", ".."},
		{"hidden traversal", "..name"},
		{"leading dot", ".profile"},
		{"leading space", " profile"},
		{"dollar", "a$b"},
		{"backtick", "a`b"},
		{"semicolon", "a;b"},
		{"pipe", "a|b"},
		{"newline", "a\nb"},
		{"null byte", "a\x00b"},
		{"non-ascii", "prüfil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if err == nil {
				t.Fatalf("ValidateName(%q) should have failed", tt.input)
			}
			if !IsAccessDenied(err) {
				t.Errorf("expected AccessDenied, got code %q", CodeOf(err))
			}
		})
	}
}
