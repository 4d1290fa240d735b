// Package artifact manages request-scoped temporary files.
//
// Every artifact acquired while handling a request must be released exactly
// once on every exit path. Release is idempotent so a defer-based bracket can
// coexist with early cleanup.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/skillsenselab/audio-ai-api/internal/logger"
)

// Artifact is a filesystem-backed handle with exactly one deletion obligation.
type Artifact struct {
	path     string
	released atomic.Bool
}

// Path returns the artifact's file path.
func (a *Artifact) Path() string { return a.path }

// Manager creates and deletes temporary artifacts.
type Manager interface {
	// Acquire creates a uniquely named empty file with the given suffix
	// (e.g. ".wav") and returns a handle to it.
	Acquire(suffix string) (*Artifact, error)
	// Release deletes the underlying file if it still exists. Releasing an
	// already-released or never-materialized artifact is not an error.
	Release(a *Artifact)
}

// DiskManager implements Manager on the local filesystem.
type DiskManager struct {
	dir string
	log *logger.Logger
}

// NewDiskManager creates a manager that places artifacts under dir. An empty
// dir falls back to the system temp directory.
func NewDiskManager(dir string, log *logger.Logger) *DiskManager {
	if dir == "" {
		dir = os.TempDir()
	}
	return &DiskManager{
		dir: dir,
		log: log.WithComponent("artifact"),
	}
}

// Acquire creates a uniquely named empty file and returns its handle.
func (m *DiskManager) Acquire(suffix string) (*Artifact, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir %s: %w", m.dir, err)
	}

	path := filepath.Join(m.dir, "upload-"+uuid.New().String()+suffix)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("close artifact: %w", err)
	}

	m.log.Debug("artifact acquired", logger.Fields("path", path))
	return &Artifact{path: path}, nil
}

// Release deletes the artifact's file. Safe to call more than once.
func (m *DiskManager) Release(a *Artifact) {
	if a == nil || !a.released.CompareAndSwap(false, true) {
		return
	}
	if err := os.Remove(a.path); err != nil && !os.IsNotExist(err) {
		m.log.Warn("failed to remove artifact", logger.ErrorFields("release", err))
		return
	}
	m.log.Debug("artifact released", logger.Fields("path", a.path))
}
