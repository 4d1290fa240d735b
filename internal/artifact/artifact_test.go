package artifact

import (
	"os"
	"strings"
	"testing"

	"github.com/skillsenselab/audio-ai-api/internal/logger"
)

func newTestManager(t *testing.T) *DiskManager {
	t.Helper()
	return NewDiskManager(t.TempDir(), logger.NewDefault("test"))
}

func TestAcquireCreatesUniqueFiles(t *testing.T) {
	m := newTestManager(t)

	a, err := m.Acquire(".wav")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	b, err := m.Acquire(".wav")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if a.Path() == b.Path() {
		t.Errorf("expected unique paths, both got %s", a.Path())
	}
	if !strings.HasSuffix(a.Path(), ".wav") {
		t.Errorf("expected .wav suffix, got %s", a.Path())
	}
	for _, art := range []*Artifact{a, b} {
		if _, err := os.Stat(art.Path()); err != nil {
			t.Errorf("expected file to exist at %s: %v", art.Path(), err)
		}
	}

	m.Release(a)
	m.Release(b)
}

func TestReleaseRemovesFile(t *testing.T) {
	m := newTestManager(t)

	a, err := m.Acquire(".bin")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	m.Release(a)

	if _, err := os.Stat(a.Path()); !os.IsNotExist(err) {
		t.Errorf("expected file to be removed, stat returned %v", err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	m := newTestManager(t)

	a, err := m.Acquire(".bin")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	m.Release(a)
	m.Release(a)
	m.Release(a)

	if _, err := os.Stat(a.Path()); !os.IsNotExist(err) {
		t.Errorf("expected file to stay removed, stat returned %v", err)
	}
}

func TestReleaseNilArtifact(t *testing.T) {
	m := newTestManager(t)
	m.Release(nil)
}

func TestReleaseAfterExternalRemoval(t *testing.T) {
	m := newTestManager(t)

	a, err := m.Acquire(".bin")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := os.Remove(a.Path()); err != nil {
		t.Fatalf("manual remove failed: %v", err)
	}

	// A vanished file is not an error.
	m.Release(a)
}

func TestAcquireCreatesDirectory(t *testing.T) {
	dir := t.TempDir() + "/nested/artifacts"
	m := NewDiskManager(dir, logger.NewDefault("test"))

	a, err := m.Acquire(".wav")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer m.Release(a)

	if !strings.HasPrefix(a.Path(), dir) {
		t.Errorf("expected artifact under %s, got %s", dir, a.Path())
	}
}
