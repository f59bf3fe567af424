package filesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestManager_SizeOf(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "2024", "01", "a.jpg"), 100)
	writeFile(t, filepath.Join(root, "2024", "02", "b.jpg"), 250)
	writeFile(t, filepath.Join(root, "sites", "2", "c.jpg"), 50)

	m := NewManager(root)

	tests := []struct {
		name    string
		path    string
		exclude []string
		want    int64
	}{
		{name: "whole tree", path: root, want: 400},
		{name: "child sites excluded", path: root, exclude: []string{m.SitePath("sites")}, want: 350},
		{name: "exclude with trailing slash", path: root, exclude: []string{m.SitePath("sites") + "/"}, want: 350},
		{name: "child site", path: m.SitePath("sites", "2"), want: 50},
		{name: "missing dir", path: m.SitePath("sites", "9"), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.SizeOf(tt.path, tt.exclude...)
			if err != nil {
				t.Fatalf("SizeOf() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SizeOf() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestManager_SizeOfFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "single.bin")
	writeFile(t, path, 42)

	got, err := NewManager(root).SizeOf(path)
	if err != nil {
		t.Fatalf("SizeOf() error = %v", err)
	}
	if got != 42 {
		t.Errorf("SizeOf() = %d, want 42", got)
	}
}

func TestManager_DiskUsage(t *testing.T) {
	m := NewManager(t.TempDir())

	usage, err := m.DiskUsage()
	if err != nil {
		t.Fatalf("DiskUsage() error = %v", err)
	}
	if usage.Total == 0 {
		t.Fatal("Total = 0, want a mounted volume")
	}
	if usage.Used+usage.Free > usage.Total {
		t.Errorf("Used %d + Free %d exceeds Total %d", usage.Used, usage.Free, usage.Total)
	}
	if usage.UsedPct < 0 || usage.UsedPct > 100 {
		t.Errorf("UsedPct = %f, want 0..100", usage.UsedPct)
	}
}

func TestManager_DiskUsageMissingRoot(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "missing"))

	if _, err := m.DiskUsage(); err == nil {
		t.Error("DiskUsage() expected error for missing root")
	}
}

func TestNewDiskUsage(t *testing.T) {
	u := newDiskUsage(200, 50)
	if u.Used != 150 || u.UsedPct != 75 {
		t.Errorf("newDiskUsage(200, 50) = %+v", u)
	}

	if u := newDiskUsage(0, 0); u.UsedPct != 0 {
		t.Errorf("empty volume UsedPct = %f, want 0", u.UsedPct)
	}
}
