// Package files_manager hands out per-call scratch directories under a common
// root. Each workspace has a unique name and is removed by Close.
package files_manager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const workspacePrefix = "docconv-"

var ErrClosed = errors.New("workspace is closed")

type Manager struct {
	Root string
}

// NewManager returns a manager rooted at root, or the OS temp dir when root
// is empty. The root is created if missing.
func NewManager(root string) (*Manager, error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create workdir %s: %w", root, err)
	}
	return &Manager{Root: root}, nil
}

type Workspace struct {
	Dir string

	mu     sync.Mutex
	closed bool
}

// Create makes a new empty workspace.
func (m *Manager) Create() (*Workspace, error) {
	dir := filepath.Join(m.Root, workspacePrefix+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{Dir: dir}, nil
}

// Path joins elem onto the workspace directory. Elements may not escape it.
func (w *Workspace) Path(elem ...string) (string, error) {
	p := filepath.Join(append([]string{w.Dir}, elem...)...)
	rel, err := filepath.Rel(w.Dir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes workspace", filepath.Join(elem...))
	}
	return p, nil
}

// Mkdir creates a subdirectory and returns its path.
func (w *Workspace) Mkdir(name string) (string, error) {
	p, err := w.Path(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(p, 0o700); err != nil {
		return "", err
	}
	return p, nil
}

// WriteFile stores data under name and returns the full path.
func (w *Workspace) WriteFile(name string, data []byte) (string, error) {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return "", ErrClosed
	}
	p, err := w.Path(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return p, nil
}

func (w *Workspace) ReadFile(name string) ([]byte, error) {
	p, err := w.Path(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// Close removes the workspace and everything in it. It is safe to call more
// than once.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return os.RemoveAll(w.Dir)
}

// SafeFileName reduces name to a plain file name usable inside a workspace.
func SafeFileName(name, fallback string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return fallback
	}
	return name
}
