// fsio.go: Sandboxed whole-file I/O
//
// SafeFS is the only way the core touches the filesystem. Every operation
// takes a raw path string and runs it through the sandbox exactly once; no
// operation accepts a pre-sandboxed path, which rules out a class of
// double-normalization bugs. Absence maps to NotFound; any other I/O
// failure propagates unclassified so operators can tell policy rejections
// from real faults.

package sliceguard

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// SafeFS performs whole-file reads and writes confined to the sandbox
// roots. Rejected paths are recorded to the audit log as security events
// when an audit logger is attached.
type SafeFS struct {
	sandbox *Sandbox
	audit   *AuditLogger
}

// NewSafeFS creates a sandboxed filesystem facade. The audit logger may be
// nil; rejections are then simply returned, not recorded.
func NewSafeFS(sandbox *Sandbox, audit *AuditLogger) *SafeFS {
	return &SafeFS{sandbox: sandbox, audit: audit}
}

// Sandbox exposes the underlying sandbox for callers that need to resolve
// paths destined for the slicer argv.
func (f *SafeFS) Sandbox() *Sandbox { return f.sandbox }

// resolve sandboxes a raw path, auditing rejections.
func (f *SafeFS) resolve(raw string) (SandboxedPath, error) {
	p, err := f.sandbox.Resolve(raw)
	if err != nil {
		if f.audit != nil {
			f.audit.LogSecurityEvent("path_rejected", "rejected path outside sandbox roots",
				map[string]interface{}{
					"rejected_path": raw,
					"reason":        err.Error(),
				})
		}
		return "", err
	}
	return p, nil
}

// ReadFile reads the entire file at path. A missing entry is NotFound;
// other failures propagate unmodified.
func (f *SafeFS) ReadFile(path string) ([]byte, error) {
	p, err := f.resolve(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p.String())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(p.String())
		}
		return nil, err
	}
	return data, nil
}

// WriteFile creates or overwrites the file at path with data. The write is
// atomic: data lands in a temp file in the same directory which is then
// renamed over the target, so a failure mid-write never leaves a truncated
// document behind.
func (f *SafeFS) WriteFile(path string, data []byte) error {
	p, err := f.resolve(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(p.String())
	base := filepath.Base(p.String())
	tempPath := filepath.Join(dir, "."+base+".tmp."+fmt.Sprintf("%d", time.Now().UnixNano()))

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tempPath, p.String()); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}

// ListDir returns the leaf names of the entries in the directory at path.
// A missing directory is NotFound; callers that want "no entries yet"
// semantics match on NotFound themselves and substitute an empty list.
func (f *SafeFS) ListDir(path string) ([]string, error) {
	p, err := f.resolve(path)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(p.String())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(p.String())
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

// Exists reports whether path names an existing entry. It never fails: a
// sandbox rejection or any access error collapses to false.
func (f *SafeFS) Exists(path string) bool {
	p, err := f.resolve(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(p.String())
	return err == nil
}

// Stat returns file metadata for path, with the same NotFound mapping as
// ReadFile.
func (f *SafeFS) Stat(path string) (fs.FileInfo, error) {
	p, err := f.resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(p.String())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(p.String())
		}
		return nil, err
	}
	return info, nil
}

// MkdirAll creates the directory at path along with any missing parents.
// Used when preparing category directories and slice output locations.
func (f *SafeFS) MkdirAll(path string) error {
	p, err := f.resolve(path)
	if err != nil {
		return err
	}
	return os.MkdirAll(p.String(), 0755)
}
