// drift.go: Detection of out-of-band profile edits
//
// Profiles can be modified behind the server's back, by a text editor or
// another tool writing into the settings directory. The drift watcher
// records such external changes to the audit log so the tuning history
// stays honest. It is optional and best-effort; it never blocks or fails
// an operation.

package sliceguard

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// DriftWatcher watches the three profile category directories and audits
// create, write, rename and remove events.
type DriftWatcher struct {
	watcher *fsnotify.Watcher
	audit   *AuditLogger
	stopCh  chan struct{}
	doneCh  chan struct{}
	stopMu  sync.Mutex
	stopped bool
}

// NewDriftWatcher starts watching the category directories under the
// sandbox settings root. Directories that do not exist yet are skipped;
// they get picked up after a restart.
func NewDriftWatcher(sandbox *Sandbox, audit *AuditLogger) (*DriftWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, category := range ProfileCategories {
		dir := filepath.Join(sandbox.SettingsRoot(), category)
		// Ignore per-directory errors: a missing category is not drift.
		_ = watcher.Add(dir)
	}

	dw := &DriftWatcher{
		watcher: watcher,
		audit:   audit,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go dw.loop()
	return dw, nil
}

func (dw *DriftWatcher) loop() {
	defer close(dw.doneCh)
	for {
		select {
		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			dw.handle(event)
		case _, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are tolerated; drift detection is advisory.
		case <-dw.stopCh:
			return
		}
	}
}

func (dw *DriftWatcher) handle(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".json") {
		return
	}
	// Atomic writes from our own SafeFS go through dot-prefixed temp
	// files; the rename target is what matters.
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}

	dw.audit.Log(AuditWarn, "profile_drift", event.Name, map[string]interface{}{
		"op":       event.Op.String(),
		"category": filepath.Base(filepath.Dir(event.Name)),
		"profile":  strings.TrimSuffix(filepath.Base(event.Name), ".json"),
	})
}

// Close stops the watcher. Safe to call more than once.
func (dw *DriftWatcher) Close() error {
	dw.stopMu.Lock()
	defer dw.stopMu.Unlock()
	if dw.stopped {
		return nil
	}
	dw.stopped = true
	close(dw.stopCh)
	err := dw.watcher.Close()
	<-dw.doneCh
	return err
}
