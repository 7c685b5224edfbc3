// service_test.go: End-to-end operation surface tests

package sliceguard

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	base := t.TempDir()
	work := filepath.Join(base, "work")
	settings := filepath.Join(base, "settings")
	for _, dir := range []string{work, settings} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}

	svc, err := NewService(&Config{
		WorkDir:      work,
		SettingsDir:  settings,
		SlicerBinary: writeFakeSlicer(t, base),
		SliceTimeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestNewServiceRejectsInvalidConfig(t *testing.T) {
	_, err := NewService(&Config{WorkDir: "relative"})
	if err == nil {
		t.Fatal("invalid config accepted")
	}
	if CodeOf(err) != ErrCodeInvalidConfig {
		t.Errorf("code = %q, want %q", CodeOf(err), ErrCodeInvalidConfig)
	}
}

func TestSliceEndToEnd(t *testing.T) {
	svc := newTestService(t)

	model := filepath.Join(svc.Sandbox().WorkRoot(), "benchy.stl")
	if err := svc.FS().WriteFile(model, []byte("solid benchy")); err != nil {
		t.Fatal(err)
	}
	if err := svc.Profiles().SaveProfile(CategoryProcess, "draft",
		[]byte(`{"layer_height": 0.28}`)); err != nil {
		t.Fatal(err)
	}

	outcome, err := svc.Slice(context.Background(), SliceJob{
		Model:          "benchy.stl",
		ProcessProfile: "draft",
	})
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}

	if outcome.JobID == "" {
		t.Error("outcome missing job id")
	}
	if !strings.HasSuffix(outcome.OutputPath, ".gcode") {
		t.Errorf("default output path = %q, want .gcode", outcome.OutputPath)
	}
	if !strings.Contains(outcome.OutputPath, svc.Sandbox().WorkRoot()) {
		t.Errorf("output escaped work root: %q", outcome.OutputPath)
	}

	argv := outcome.Result.Stdout
	if !strings.Contains(argv, "--input "+model) {
		t.Errorf("argv missing model: %s", argv)
	}
	wantProfile := filepath.Join(svc.Sandbox().SettingsRoot(), "process", "draft.json")
	if !strings.Contains(argv, "--process-settings "+wantProfile) {
		t.Errorf("argv missing profile path: %s", argv)
	}
}

func TestSliceMissingModel(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Slice(context.Background(), SliceJob{Model: "ghost.stl"})
	if !IsNotFound(err) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestSliceMissingProfile(t *testing.T) {
	svc := newTestService(t)
	model := filepath.Join(svc.Sandbox().WorkRoot(), "cube.stl")
	if err := svc.FS().WriteFile(model, []byte("solid cube")); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Slice(context.Background(), SliceJob{
		Model:           "cube.stl",
		FilamentProfile: "no-such-filament",
	})
	if !IsNotFound(err) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestSliceRejectsEscapingModelPath(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Slice(context.Background(), SliceJob{Model: "../../etc/passwd"})
	if !IsAccessDenied(err) {
		t.Errorf("expected AccessDenied, got %v", err)
	}
}

func TestSliceRejectsBadProfileName(t *testing.T) {
	svc := newTestService(t)
	model := filepath.Join(svc.Sandbox().WorkRoot(), "cube.stl")
	if err := svc.FS().WriteFile(model, []byte("solid cube")); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Slice(context.Background(), SliceJob{
		Model:          "cube.stl",
		ProcessProfile: "../machine/evil",
	})
	if !IsAccessDenied(err) {
		t.Errorf("expected AccessDenied, got %v", err)
	}
}

func TestSliceAuditTrail(t *testing.T) {
	svc := newTestService(t)
	model := filepath.Join(svc.Sandbox().WorkRoot(), "part.stl")
	if err := svc.FS().WriteFile(model, []byte("solid part")); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Slice(context.Background(), SliceJob{Model: "part.stl"}); err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	if err := svc.Audit().Flush(); err != nil {
		t.Fatal(err)
	}

	logPath := filepath.Join(svc.Sandbox().WorkRoot(), HistoryLogName)
	events := readAuditLines(t, logPath)

	var sawCompleted bool
	for _, event := range events {
		if event.Action == "slice_completed" {
			sawCompleted = true
			if event.Details["job_id"] == "" {
				t.Error("slice_completed entry missing job_id")
			}
		}
	}
	if !sawCompleted {
		t.Errorf("no slice_completed entry in history: %+v", events)
	}
}

func TestInspectGcode(t *testing.T) {
	svc := newTestService(t)
	path := filepath.Join(svc.Sandbox().WorkRoot(), "out.gcode")
	body := "G1 X0 Y0\n; filament used [g] = 37.5\n; total layers count = 150\n"
	if err := svc.FS().WriteFile(path, []byte(body)); err != nil {
		t.Fatal(err)
	}

	meta, err := svc.InspectGcode("out.gcode")
	if err != nil {
		t.Fatalf("InspectGcode failed: %v", err)
	}
	if meta.FilamentUsedG != 37.5 || meta.LayerCount != 150 {
		t.Errorf("metadata = %+v", meta)
	}

	if _, err := svc.InspectGcode("missing.gcode"); !IsNotFound(err) {
		t.Errorf("expected NotFound, got %v", err)
	}
	if _, err := svc.InspectGcode("/etc/passwd"); !IsAccessDenied(err) {
		t.Errorf("expected AccessDenied, got %v", err)
	}
}

func TestServiceAuditDisabled(t *testing.T) {
	base := t.TempDir()
	work := filepath.Join(base, "work")
	settings := filepath.Join(base, "settings")
	for _, dir := range []string{work, settings} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}

	svc, err := NewService(&Config{
		WorkDir:       work,
		SettingsDir:   settings,
		SlicerBinary:  writeFakeSlicer(t, base),
		AuditDisabled: true,
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	defer svc.Close()

	if svc.Audit() != nil {
		t.Error("audit logger created despite AuditDisabled")
	}
	// Operations still work without an audit log.
	if err := svc.Profiles().SaveProfile(CategoryMachine, "mk4", []byte(`{}`)); err != nil {
		t.Errorf("SaveProfile failed without audit: %v", err)
	}
}
