// sandbox.go: Two-root path confinement for all file and process operations
//
// The sandbox is the single trust boundary for paths: every file operation
// and every path handed to the slicer binary goes through Resolve first.
// Resolution is purely lexical; it never touches the filesystem, so a
// rejected path is rejected before anything observable happens.

package sliceguard

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agilira/go-errors"
)

// SandboxedPath is an absolute, normalized path proven to live under one of
// the sandbox roots. Only Sandbox.Resolve constructs values of this type;
// SafeFS and the slicer runner refuse anything else.
type SandboxedPath string

// String returns the underlying absolute path.
func (p SandboxedPath) String() string { return string(p) }

// Sandbox confines paths to exactly two allowed roots: the work directory
// (models, generated G-code, the tuning history log) and the settings
// directory (profile documents). Both are fixed at construction and
// immutable afterwards.
type Sandbox struct {
	workRoot     string
	settingsRoot string
}

// NewSandbox creates a sandbox over the given work and settings roots.
// Both must be absolute; they are cleaned once here so containment checks
// never re-normalize them.
func NewSandbox(workRoot, settingsRoot string) (*Sandbox, error) {
	if !filepath.IsAbs(workRoot) {
		return nil, errors.New(ErrCodeInvalidConfig, "work root must be an absolute path").
			WithContext("work_root", workRoot)
	}
	if !filepath.IsAbs(settingsRoot) {
		return nil, errors.New(ErrCodeInvalidConfig, "settings root must be an absolute path").
			WithContext("settings_root", settingsRoot)
	}

	return &Sandbox{
		workRoot:     filepath.Clean(workRoot),
		settingsRoot: filepath.Clean(settingsRoot),
	}, nil
}

// WorkRoot returns the work directory root.
func (s *Sandbox) WorkRoot() string { return s.workRoot }

// SettingsRoot returns the settings directory root.
func (s *Sandbox) SettingsRoot() string { return s.settingsRoot }

// Roots returns both allowed roots, work root first.
func (s *Sandbox) Roots() []string { return []string{s.workRoot, s.settingsRoot} }

// Resolve normalizes raw to an absolute path and accepts it only if it is a
// descendant of (or equal to) one of the two roots. Relative inputs resolve
// against the work root, never the process working directory, so resolution
// is deterministic. The AccessDenied message carries the raw input, the
// resolved form, and both permitted roots for the audit trail.
func (s *Sandbox) Resolve(raw string) (SandboxedPath, error) {
	if raw == "" {
		return "", accessDenied("access denied: empty path (permitted roots: %s, %s)",
			s.workRoot, s.settingsRoot)
	}

	candidate := raw
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(s.workRoot, candidate)
	}
	candidate = filepath.Clean(candidate)

	if s.contains(candidate) {
		return SandboxedPath(candidate), nil
	}

	msg := fmt.Sprintf("access denied: %q resolves to %q which is outside the permitted roots (%s, %s)",
		raw, candidate, s.workRoot, s.settingsRoot)
	return "", errors.New(ErrCodeAccessDenied, msg).
		WithContext("raw_path", raw).
		WithContext("resolved_path", candidate).
		WithContext("permitted_roots", s.Roots())
}

// contains reports whether candidate (already absolute and cleaned) lies
// under either root. The relative-path form guards both `..` escapes and
// volume-rooted escapes on platforms where Rel can produce an absolute or
// differently-rooted result.
func (s *Sandbox) contains(candidate string) bool {
	for _, root := range s.Roots() {
		rel, err := filepath.Rel(root, candidate)
		if err != nil {
			continue
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if filepath.IsAbs(rel) {
			continue
		}
		return true
	}
	return false
}
