// fsio_test.go: Sandboxed file I/O tests

package sliceguard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestFS(t *testing.T) *SafeFS {
	t.Helper()
	work := filepath.Join(t.TempDir(), "work")
	settings := filepath.Join(t.TempDir(), "settings")
	if err := os.MkdirAll(work, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(settings, 0755); err != nil {
		t.Fatal(err)
	}
	sb, err := NewSandbox(work, settings)
	if err != nil {
		t.Fatal(err)
	}
	return NewSafeFS(sb, nil)
}

func TestReadFileNotFound(t *testing.T) {
	fs := newTestFS(t)

	_, err := fs.ReadFile(filepath.Join(fs.Sandbox().WorkRoot(), "missing.gcode"))
	if err == nil {
		t.Fatal("expected NotFound")
	}
	if !IsNotFound(err) {
		t.Errorf("expected NotFound, got code %q: %v", CodeOf(err), err)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	fs := newTestFS(t)
	path := filepath.Join(fs.Sandbox().WorkRoot(), "note.txt")
	content := []byte("line one\nline two\n")

	if err := fs.WriteFile(path, content); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("round trip mismatch: %q != %q", got, content)
	}
}

func TestWriteFileOverwrites(t *testing.T) {
	fs := newTestFS(t)
	path := filepath.Join(fs.Sandbox().WorkRoot(), "file.txt")

	if err := fs.WriteFile(path, []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := fs.WriteFile(path, []byte("second")); err != nil {
		t.Fatal(err)
	}

	got, err := fs.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q, want %q", got, "second")
	}
}

func TestWriteFileLeavesNoTempFiles(t *testing.T) {
	fs := newTestFS(t)
	path := filepath.Join(fs.Sandbox().WorkRoot(), "clean.json")

	if err := fs.WriteFile(path, []byte(`{}`)); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(fs.Sandbox().WorkRoot())
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp.") {
			t.Errorf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestWriteFileRejectsEscape(t *testing.T) {
	fs := newTestFS(t)

	err := fs.WriteFile("/tmp/outside-roots.txt", []byte("nope"))
	if err == nil {
		t.Fatal("expected AccessDenied")
	}
	if !IsAccessDenied(err) {
		t.Errorf("expected AccessDenied, got code %q", CodeOf(err))
	}
}

func TestListDir(t *testing.T) {
	fs := newTestFS(t)
	dir := filepath.Join(fs.Sandbox().SettingsRoot(), "machine")
	if err := fs.MkdirAll(dir); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.json", "b.json"} {
		if err := fs.WriteFile(filepath.Join(dir, name), []byte(`{}`)); err != nil {
			t.Fatal(err)
		}
	}

	names, err := fs.ListDir(dir)
	if err != nil {
		t.Fatalf("ListDir failed: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("len(names) = %d, want 2", len(names))
	}
}

func TestListDirNotFound(t *testing.T) {
	fs := newTestFS(t)

	_, err := fs.ListDir(filepath.Join(fs.Sandbox().SettingsRoot(), "absent"))
	if err == nil {
		t.Fatal("expected NotFound")
	}
	if !IsNotFound(err) {
		t.Errorf("expected NotFound, got code %q", CodeOf(err))
	}
}

func TestExistsNeverFails(t *testing.T) {
	fs := newTestFS(t)

	if fs.Exists("/etc/passwd") {
		t.Error("Exists must be false for out-of-sandbox paths")
	}
	if fs.Exists(filepath.Join(fs.Sandbox().WorkRoot(), "ghost")) {
		t.Error("Exists must be false for missing entries")
	}

	path := filepath.Join(fs.Sandbox().WorkRoot(), "real.txt")
	if err := fs.WriteFile(path, []byte("x")); err != nil {
		t.Fatal(err)
	}
	if !fs.Exists(path) {
		t.Error("Exists must be true for written files")
	}
}

func TestStat(t *testing.T) {
	fs := newTestFS(t)
	path := filepath.Join(fs.Sandbox().WorkRoot(), "sized.bin")
	if err := fs.WriteFile(path, []byte("12345")); err != nil {
		t.Fatal(err)
	}

	info, err := fs.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 5 {
		t.Errorf("size = %d, want 5", info.Size())
	}

	if _, err := fs.Stat(filepath.Join(fs.Sandbox().WorkRoot(), "nope")); !IsNotFound(err) {
		t.Errorf("expected NotFound, got %v", err)
	}
}
