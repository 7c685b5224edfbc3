// audit.go: Best-effort tuning history for mutating operations
//
// Every profile mutation and slice invocation is recorded as one immutable
// entry. The log is write-only from the core's perspective and strictly
// best-effort: a failure to persist an entry can never block the operation
// that produced it.

package sliceguard

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/agilira/go-timecache"
)

// AuditLevel represents the severity of audit events.
type AuditLevel int

const (
	AuditInfo AuditLevel = iota
	AuditWarn
	AuditCritical
	AuditSecurity
)

func (al AuditLevel) String() string {
	switch al {
	case AuditInfo:
		return "INFO"
	case AuditWarn:
		return "WARN"
	case AuditCritical:
		return "CRITICAL"
	case AuditSecurity:
		return "SECURITY"
	default:
		return "UNKNOWN"
	}
}

// AuditEvent is a single immutable history entry, persisted as one JSON
// object per line.
type AuditEvent struct {
	Timestamp   time.Time              `json:"timestamp"`
	Level       AuditLevel             `json:"level"`
	Action      string                 `json:"action"`
	Component   string                 `json:"component"`
	FilePath    string                 `json:"file_path,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
	ProcessID   int                    `json:"process_id"`
	ProcessName string                 `json:"process_name"`
	Checksum    string                 `json:"checksum"`
}

// AuditConfig configures the history log.
type AuditConfig struct {
	Enabled       bool          `json:"enabled"`
	OutputFile    string        `json:"output_file"`
	MinLevel      AuditLevel    `json:"min_level"`
	BufferSize    int           `json:"buffer_size"`
	FlushInterval time.Duration `json:"flush_interval"`
}

// HistoryLogName is the leaf name of the tuning history inside the work
// root.
const HistoryLogName = "tuning_history.log"

// DefaultAuditConfig returns the standard configuration: a line-oriented
// JSON log at <workRoot>/tuning_history.log. Pass OutputFile with a .db
// extension to select the queryable SQLite backend instead.
func DefaultAuditConfig(workRoot string) AuditConfig {
	return AuditConfig{
		Enabled:       true,
		OutputFile:    filepath.Join(workRoot, HistoryLogName),
		MinLevel:      AuditInfo,
		BufferSize:    64,
		FlushInterval: time.Second,
	}
}

// AuditLogger buffers history entries and hands them to a storage backend
// (JSONL or SQLite). All persistence failures are swallowed; the audit
// trail is the one deliberately tolerant path in the core.
type AuditLogger struct {
	config      AuditConfig
	backend     auditBackend
	buffer      []AuditEvent
	bufferMu    sync.Mutex
	flushTicker *time.Ticker
	stopCh      chan struct{}
	closeMu     sync.Mutex
	closed      bool
	processID   int
	processName string
}

// NewAuditLogger creates a logger with the backend selected from config:
// a .db output file selects SQLite, anything else the JSONL file backend.
func NewAuditLogger(config AuditConfig) (*AuditLogger, error) {
	backend, err := createAuditBackend(config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audit backend: %w", err)
	}

	logger := &AuditLogger{
		config:      config,
		backend:     backend,
		buffer:      make([]AuditEvent, 0, config.BufferSize),
		stopCh:      make(chan struct{}),
		processID:   os.Getpid(),
		processName: "sliceguard",
	}

	if config.FlushInterval > 0 {
		logger.flushTicker = time.NewTicker(config.FlushInterval)
		go logger.flushLoop()
	}

	return logger, nil
}

// Log buffers an audit event. Safe to call on a nil logger.
func (al *AuditLogger) Log(level AuditLevel, action, filePath string, details map[string]interface{}) {
	if al == nil || al.backend == nil || !al.config.Enabled || level < al.config.MinLevel {
		return
	}

	event := AuditEvent{
		Timestamp:   timecache.CachedTime(),
		Level:       level,
		Action:      action,
		Component:   "sliceguard",
		FilePath:    filePath,
		Details:     details,
		ProcessID:   al.processID,
		ProcessName: al.processName,
	}
	event.Checksum = generateChecksum(event)

	al.bufferMu.Lock()
	al.buffer = append(al.buffer, event)
	if len(al.buffer) >= al.config.BufferSize {
		_ = al.flushBufferUnsafe() // best-effort by contract
	}
	al.bufferMu.Unlock()
}

// Record logs a mutating operation. This is the call sites' entry point;
// it never reports failure to the caller.
func (al *AuditLogger) Record(action string, details map[string]interface{}) {
	al.Log(AuditInfo, action, "", details)
}

// LogSecurityEvent records a policy rejection such as a sandbox escape
// attempt or an invalid filename.
func (al *AuditLogger) LogSecurityEvent(action, reason string, details map[string]interface{}) {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["reason_summary"] = reason
	al.Log(AuditSecurity, action, "", details)
}

// Flush immediately writes all buffered events.
func (al *AuditLogger) Flush() error {
	if al == nil || al.backend == nil {
		return nil
	}
	al.bufferMu.Lock()
	defer al.bufferMu.Unlock()
	return al.flushBufferUnsafe()
}

// Close flushes remaining events and releases the backend. Safe to call
// more than once.
func (al *AuditLogger) Close() error {
	if al == nil {
		return nil
	}
	al.closeMu.Lock()
	defer al.closeMu.Unlock()
	if al.closed {
		return nil
	}
	al.closed = true
	close(al.stopCh)
	if al.flushTicker != nil {
		al.flushTicker.Stop()
	}
	if err := al.Flush(); err != nil {
		return fmt.Errorf("failed to flush audit logger during close: %w", err)
	}
	if al.backend != nil {
		if err := al.backend.Close(); err != nil {
			return fmt.Errorf("failed to close audit backend: %w", err)
		}
	}
	return nil
}

func (al *AuditLogger) flushLoop() {
	for {
		select {
		case <-al.flushTicker.C:
			_ = al.Flush()
		case <-al.stopCh:
			return
		}
	}
}

// flushBufferUnsafe writes the buffer to the backend; caller holds bufferMu.
func (al *AuditLogger) flushBufferUnsafe() error {
	if len(al.buffer) == 0 {
		return nil
	}
	if err := al.backend.Write(al.buffer); err != nil {
		return fmt.Errorf("failed to write audit events to backend: %w", err)
	}
	al.buffer = al.buffer[:0]
	return nil
}

// generateChecksum creates a tamper-detection checksum over the entry's
// identifying fields.
func generateChecksum(event AuditEvent) string {
	data := fmt.Sprintf("%s:%s:%s:%s:%v",
		event.Timestamp.Format(time.RFC3339Nano),
		event.Action, event.Component, event.FilePath, event.Details)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
