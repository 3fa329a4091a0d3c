package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Workspace is a request-scoped scratch directory. Every intermediate
// artifact for one stage invocation lives inside it, and Cleanup removes
// the whole directory on every exit path, so a failed stage leaves no
// orphaned temp files behind.
type Workspace struct {
	dir string
}

// NewWorkspace creates a scratch directory under baseDir, creating
// baseDir on demand if absent.
func NewWorkspace(baseDir string) (*Workspace, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	dir, err := os.MkdirTemp(baseDir, "stage-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Path returns the absolute path for a named artifact in the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Cleanup removes the workspace and everything in it.
func (w *Workspace) Cleanup() error {
	if w == nil || w.dir == "" {
		return nil
	}
	err := os.RemoveAll(w.dir)
	w.dir = ""
	return err
}

// Token returns a monotonically distinct per-request token used to
// disambiguate artifact filenames between concurrent sessions.
func Token() string {
	return fmt.Sprintf("%d", time.Now().UnixMilli())
}
