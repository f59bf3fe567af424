package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/vertextoedge/site-size-cache/internal/port"
)

// Manager handles local upload directory accounting
type Manager struct {
	rootDir string
}

var (
	_ port.DirSizer     = (*Manager)(nil)
	_ port.DiskReporter = (*Manager)(nil)
)

// NewManager creates a new filesystem manager rooted at the uploads dir
func NewManager(rootDir string) *Manager {
	return &Manager{rootDir: rootDir}
}

// RootDir returns the uploads root directory
func (m *Manager) RootDir() string {
	return m.rootDir
}

// SitePath returns the local uploads path for a site relative to the root
func (m *Manager) SitePath(parts ...string) string {
	return filepath.Join(append([]string{m.rootDir}, parts...)...)
}

// SizeOf returns the total size of regular files under path, not
// descending into excluded directories.
// A path that does not exist has size zero; entries vanishing mid-walk are skipped.
func (m *Manager) SizeOf(path string, exclude ...string) (int64, error) {
	skip := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		skip[filepath.Clean(e)] = struct{}{}
	}

	var size int64
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if _, ok := skip[filepath.Clean(p)]; ok {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		size += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to size %s: %w", path, err)
	}
	return size, nil
}

func newDiskUsage(total, free uint64) *port.DiskUsage {
	u := &port.DiskUsage{Total: total, Free: free}
	if free < total {
		u.Used = total - free
	}
	if total > 0 {
		u.UsedPct = float64(u.Used) / float64(total) * 100
	}
	return u
}
