// service.go: The operation surface an automated caller drives
//
// One Service instance owns the sandbox, the safe filesystem, the profile
// store, the slicer runner and the audit log. The protocol layer above it
// dispatches named operations here after schema validation; everything
// below this point is the access-control core.

package sliceguard

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agilira/go-errors"
	"github.com/google/uuid"
)

// Service wires the core components together.
type Service struct {
	config  *Config
	sandbox *Sandbox
	fs      *SafeFS
	store   *ProfileStore
	runner  *SlicerRunner
	audit   *AuditLogger
}

// NewService builds the full core from a validated configuration. The
// audit logger is created unless disabled; audit initialization failure is
// fatal here (at startup) but audit write failures never are.
func NewService(config *Config) (*Service, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	sandbox, err := NewSandbox(config.WorkDir, config.SettingsDir)
	if err != nil {
		return nil, err
	}

	var audit *AuditLogger
	if !config.AuditDisabled {
		audit, err = NewAuditLogger(config.AuditConfigFor())
		if err != nil {
			return nil, err
		}
	}

	fs := NewSafeFS(sandbox, audit)
	return &Service{
		config:  config,
		sandbox: sandbox,
		fs:      fs,
		store:   NewProfileStore(fs, audit),
		runner:  NewSlicerRunner(config.SlicerBinary, config.SliceTimeout),
		audit:   audit,
	}, nil
}

// Close flushes and releases the audit log.
func (s *Service) Close() error {
	if s.audit != nil {
		return s.audit.Close()
	}
	return nil
}

// Config returns the effective (defaulted) configuration.
func (s *Service) Config() *Config { return s.config }

// Sandbox returns the path sandbox.
func (s *Service) Sandbox() *Sandbox { return s.sandbox }

// Profiles returns the profile store.
func (s *Service) Profiles() *ProfileStore { return s.store }

// FS returns the sandboxed filesystem.
func (s *Service) FS() *SafeFS { return s.fs }

// Runner returns the slicer runner.
func (s *Service) Runner() *SlicerRunner { return s.runner }

// Audit returns the audit logger; may be nil when disabled.
func (s *Service) Audit() *AuditLogger { return s.audit }

// SliceJob names the inputs of one slice invocation. Model and Output are
// paths (relative paths resolve against the work root); the profile fields
// are profile names within their fixed categories and may be empty.
type SliceJob struct {
	Model           string
	Output          string
	MachineProfile  string
	FilamentProfile string
	ProcessProfile  string
}

// SliceOutcome reports a completed slice.
type SliceOutcome struct {
	JobID      string    `json:"job_id"`
	OutputPath string    `json:"output_path"`
	Result     RunResult `json:"result"`
}

// Slice validates and resolves every path in the job, invokes the slicer
// and records the outcome. All failures surface as one of the four coded
// kinds; the audit write is best-effort.
func (s *Service) Slice(ctx context.Context, job SliceJob) (*SliceOutcome, error) {
	jobID := uuid.NewString()

	model, err := s.sandbox.Resolve(job.Model)
	if err != nil {
		return nil, err
	}
	if !s.fs.Exists(model.String()) {
		return nil, notFound(model.String())
	}

	output := job.Output
	if output == "" {
		base := strings.TrimSuffix(filepath.Base(model.String()), filepath.Ext(model.String()))
		output = filepath.Join(s.sandbox.WorkRoot(), fmt.Sprintf("%s_%s.gcode", base, jobID[:8]))
	}
	outputPath, err := s.sandbox.Resolve(output)
	if err != nil {
		return nil, err
	}

	req := SliceRequest{Input: model, Output: outputPath}
	if req.MachineSettings, err = s.resolveProfileArg(CategoryMachine, job.MachineProfile); err != nil {
		return nil, err
	}
	if req.FilamentSettings, err = s.resolveProfileArg(CategoryFilament, job.FilamentProfile); err != nil {
		return nil, err
	}
	if req.ProcessSettings, err = s.resolveProfileArg(CategoryProcess, job.ProcessProfile); err != nil {
		return nil, err
	}

	result, runErr := s.runner.Slice(ctx, req)

	if s.audit != nil {
		details := map[string]interface{}{
			"job_id": jobID,
			"model":  model.String(),
			"output": outputPath.String(),
		}
		if runErr != nil {
			details["error"] = runErr.Error()
			s.audit.Log(AuditWarn, "slice_failed", model.String(), details)
		} else {
			details["exit_code"] = result.ExitCode
			s.audit.Log(AuditInfo, "slice_completed", model.String(), details)
		}
	}

	if runErr != nil {
		return nil, runErr
	}
	return &SliceOutcome{JobID: jobID, OutputPath: outputPath.String(), Result: result}, nil
}

// resolveProfileArg turns an optional profile name into a sandboxed
// settings path for the slicer argv. An empty name yields an empty path.
// The named profile must exist.
func (s *Service) resolveProfileArg(category, name string) (SandboxedPath, error) {
	if name == "" {
		return "", nil
	}
	if err := ValidateName(name); err != nil {
		return "", err
	}

	path := filepath.Join(s.sandbox.SettingsRoot(), category,
		strings.TrimSuffix(name, ".json")+".json")
	resolved, err := s.sandbox.Resolve(path)
	if err != nil {
		return "", err
	}
	if !s.fs.Exists(resolved.String()) {
		return "", errors.New(ErrCodeNotFound,
			fmt.Sprintf("profile %q not found in category %q", name, category)).
			WithContext("category", category).
			WithContext("name", name)
	}
	return resolved, nil
}

// InspectGcode reads a generated G-code file through the sandbox and
// extracts its trailing metadata block.
func (s *Service) InspectGcode(path string) (GcodeMetadata, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return GcodeMetadata{}, err
	}
	return ExtractGcodeMetadata(string(data)), nil
}
