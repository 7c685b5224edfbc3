// audit_backend.go: Storage backends for the tuning history
//
// Two backends sit behind the audit logger: a line-oriented JSON file
// (the default, human-readable and grep-able) and a SQLite database for
// deployments that want to query their history. Selection is by output
// file extension.

package sliceguard

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver registration
)

// auditBackend abstracts history persistence so the logger does not care
// whether entries land in a flat file or a database.
type auditBackend interface {
	// Write persists a batch of events. Must be safe for concurrent use.
	Write(events []AuditEvent) error

	// Flush commits pending writes to storage.
	Flush() error

	// Close releases resources; the backend must not be used afterwards.
	Close() error
}

// createAuditBackend selects the backend from the configured output file:
// a .db extension selects SQLite, everything else (including the default
// tuning_history.log) the JSONL file backend.
func createAuditBackend(config AuditConfig) (auditBackend, error) {
	if config.OutputFile == "" {
		return nil, fmt.Errorf("audit output file is not configured")
	}
	if filepath.Ext(config.OutputFile) == ".db" {
		return newSQLiteBackend(config.OutputFile)
	}
	return newJSONLBackend(config.OutputFile)
}

// jsonlAuditBackend appends one JSON object per line to a flat file.
type jsonlAuditBackend struct {
	file *os.File
	mu   sync.Mutex
}

func newJSONLBackend(path string) (*jsonlAuditBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return &jsonlAuditBackend{file: file}, nil
}

func (j *jsonlAuditBackend) Write(events []AuditEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, event := range events {
		line, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal audit event: %w", err)
		}
		if _, err := j.file.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("failed to append audit event: %w", err)
		}
	}
	return nil
}

func (j *jsonlAuditBackend) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Sync()
}

func (j *jsonlAuditBackend) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.file.Sync(); err != nil {
		return err
	}
	return j.file.Close()
}

// sqliteAuditBackend stores history entries in a single SQLite database.
// WAL mode keeps concurrent writers from blocking readers, which matters
// when an operator queries the history while slices run.
type sqliteAuditBackend struct {
	db         *sql.DB
	dbPath     string
	insertStmt *sql.Stmt
	mu         sync.Mutex
	closed     bool
}

func newSQLiteBackend(dbPath string) (*sqliteAuditBackend, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create audit database directory: %w", err)
	}

	db, err := sql.Open("sqlite3",
		fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}

	backend := &sqliteAuditBackend{db: db, dbPath: dbPath}
	if err := backend.initializeSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize audit database schema: %w", err)
	}
	if err := backend.prepareStatements(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare audit database statements: %w", err)
	}
	return backend, nil
}

func (s *sqliteAuditBackend) initializeSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tuning_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		level TEXT NOT NULL,
		action TEXT NOT NULL,
		component TEXT NOT NULL,
		file_path TEXT,
		details TEXT,
		process_id INTEGER,
		process_name TEXT,
		checksum TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tuning_history_timestamp ON tuning_history(timestamp);
	CREATE INDEX IF NOT EXISTS idx_tuning_history_action ON tuning_history(action);`

	_, err := s.db.Exec(schema)
	return err
}

func (s *sqliteAuditBackend) prepareStatements() error {
	stmt, err := s.db.Prepare(`
		INSERT INTO tuning_history
		(timestamp, level, action, component, file_path, details, process_id, process_name, checksum)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	s.insertStmt = stmt
	return nil
}

func (s *sqliteAuditBackend) Write(events []AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("audit backend is closed")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin audit transaction: %w", err)
	}

	stmt := tx.Stmt(s.insertStmt)
	for _, event := range events {
		details, err := json.Marshal(event.Details)
		if err != nil {
			details = []byte("{}")
		}
		if _, err := stmt.Exec(
			event.Timestamp, event.Level.String(), event.Action, event.Component,
			event.FilePath, string(details), event.ProcessID, event.ProcessName,
			event.Checksum,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert audit event: %w", err)
		}
	}
	return tx.Commit()
}

func (s *sqliteAuditBackend) Flush() error {
	// Transactions commit in Write; nothing is buffered here.
	return nil
}

func (s *sqliteAuditBackend) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.insertStmt != nil {
		_ = s.insertStmt.Close()
	}
	return s.db.Close()
}
