package ffmpeg

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace is a call-scoped temporary directory. Release removes it and
// everything written into it.
type Workspace struct {
	dir string
}

func AcquireWorkspace(root, prefix string) (*Workspace, error) {
	if root != "" {
		if err := os.MkdirAll(root, 0755); err != nil {
			return nil, fmt.Errorf("create temp root: %w", err)
		}
	}
	dir, err := os.MkdirTemp(root, prefix)
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

func (w *Workspace) Dir() string { return w.dir }

func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

func (w *Workspace) WriteFile(name string, data []byte) (string, error) {
	path := w.Path(name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

func (w *Workspace) Release() error {
	return os.RemoveAll(w.dir)
}
