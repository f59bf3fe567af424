package calculator

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vertextoedge/site-size-cache/internal/domain"
	"github.com/vertextoedge/site-size-cache/internal/port"
)

// bucketLister serves listings from an in-memory key space
type bucketLister struct {
	mu      sync.Mutex
	objects map[string]int64
	failOn  string
	err     error
	calls   []string
}

func (b *bucketLister) List(ctx context.Context, prefix, delimiter string) iter.Seq2[*port.ListPage, error] {
	b.mu.Lock()
	b.calls = append(b.calls, prefix+"|"+delimiter)
	b.mu.Unlock()

	return func(yield func(*port.ListPage, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(nil, err)
			return
		}
		if b.err != nil && prefix == b.failOn {
			yield(nil, b.err)
			return
		}

		page := &port.ListPage{}
		seen := map[string]bool{}
		for key, size := range b.objects {
			if len(key) < len(prefix) || key[:len(prefix)] != prefix {
				continue
			}
			rest := key[len(prefix):]
			if delimiter != "" {
				if i := indexOf(rest, delimiter); i >= 0 {
					cp := prefix + rest[:i+len(delimiter)]
					if !seen[cp] {
						seen[cp] = true
						page.CommonPrefixes = append(page.CommonPrefixes, cp)
					}
					continue
				}
			}
			page.Contents = append(page.Contents, port.Object{Key: key, Size: size})
		}
		yield(page, nil)
	}
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

type stubProvider struct {
	lister port.ObjectLister
	err    error
	calls  int
}

func (p *stubProvider) Lister(ctx context.Context) (port.ObjectLister, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.lister, nil
}

type stubDisk struct {
	sizes    map[string]int64
	err      error
	excludes map[string][]string
}

func (d *stubDisk) SizeOf(path string, exclude ...string) (int64, error) {
	if d.excludes == nil {
		d.excludes = map[string][]string{}
	}
	d.excludes[path] = exclude
	if d.err != nil {
		return 0, d.err
	}
	return d.sizes[path], nil
}

func testConfig() Config {
	return Config{
		UploadsPrefix:    "uploads",
		ChildSitesPrefix: "sites",
		UploadsDir:       "/srv/uploads",
		ChildSitesDir:    "sites",
	}
}

func TestCalculator_PrimarySite(t *testing.T) {
	lister := &bucketLister{objects: map[string]int64{
		"uploads/logo.png":         60,
		"uploads/banner.png":       40,
		"uploads/docs/a.pdf":       30,
		"uploads/docs/deep/b.pdf":  20,
		"uploads/sites/2/c.jpg":    1000,
		"uploads/sites/3/d.jpg":    2000,
		"other/outside-uploads.js": 7,
	}}
	disk := &stubDisk{}
	calc := New(testConfig(), &stubProvider{lister: lister}, disk, zap.NewNop())

	size, err := calc.Compute(context.Background(), domain.PrimaryTenantID)
	require.NoError(t, err)

	bytes, ok := size.Bytes()
	require.True(t, ok)
	assert.Equal(t, int64(150), bytes)

	assert.Contains(t, lister.calls, "uploads/|/")
	assert.Contains(t, lister.calls, "uploads/docs/|")
	assert.NotContains(t, lister.calls, "uploads/sites/|")

	assert.Equal(t, []string{filepath.Join("/srv/uploads", "sites")}, disk.excludes["/srv/uploads"])
}

func TestCalculator_PrimarySiteNestedChildren(t *testing.T) {
	cfg := testConfig()
	cfg.ChildSitesPrefix = "network/sites"

	lister := &bucketLister{objects: map[string]int64{
		"uploads/a.png":                 10,
		"uploads/network/shared.css":    5,
		"uploads/network/fonts/f.woff":  3,
		"uploads/network/sites/2/c.jpg": 1000,
	}}
	calc := New(cfg, &stubProvider{lister: lister}, &stubDisk{}, zap.NewNop())

	size, err := calc.Compute(context.Background(), domain.PrimaryTenantID)
	require.NoError(t, err)

	bytes, _ := size.Bytes()
	assert.Equal(t, int64(18), bytes)
}

func TestCalculator_ChildSite(t *testing.T) {
	lister := &bucketLister{objects: map[string]int64{
		"uploads/logo.png":       60,
		"uploads/sites/2/a.jpg":  100,
		"uploads/sites/2/x/b.jp": 23,
		"uploads/sites/22/c.jpg": 999,
	}}
	disk := &stubDisk{sizes: map[string]int64{
		filepath.Join("/srv/uploads", "sites", "2"): 7,
	}}
	calc := New(testConfig(), &stubProvider{lister: lister}, disk, zap.NewNop())

	size, err := calc.Compute(context.Background(), 2)
	require.NoError(t, err)

	bytes, _ := size.Bytes()
	assert.Equal(t, int64(130), bytes)
	assert.Equal(t, []string{"uploads/sites/2/|"}, lister.calls)
}

func TestCalculator_UnavailableClient(t *testing.T) {
	lister := &bucketLister{}
	provider := &stubProvider{lister: lister, err: domain.ErrObjectStoreUnavailable}
	calc := New(testConfig(), provider, &stubDisk{}, zap.NewNop())

	size, err := calc.Compute(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, domain.SizeUnavailable, size.Kind())
	assert.Equal(t, int64(domain.SentinelUnavailable), size.Encode())
	assert.Empty(t, lister.calls)
}

func TestCalculator_ProviderFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	lister := &bucketLister{
		objects: map[string]int64{"uploads/sites/5/a": 1},
		failOn:  "uploads/sites/5/",
		err:     domain.NewObjectStoreError("uploads/sites/5/", "AccessDenied", errors.New("denied")),
	}
	calc := New(testConfig(), &stubProvider{lister: lister}, &stubDisk{}, zap.New(core))

	size, err := calc.Compute(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, domain.SizeObjectStoreFailed, size.Kind())
	assert.Equal(t, int64(domain.SentinelObjectStore), size.Encode())

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(5), entries[0].ContextMap()["site_id"])
	assert.Contains(t, entries[0].ContextMap()["message"], "denied")
}

func TestCalculator_CancellationPropagates(t *testing.T) {
	lister := &bucketLister{objects: map[string]int64{"uploads/a": 1}}
	calc := New(testConfig(), &stubProvider{lister: lister}, &stubDisk{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := calc.Compute(ctx, domain.PrimaryTenantID)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculator_LocalDiskErrorPropagates(t *testing.T) {
	diskErr := errors.New("permission denied")
	provider := &stubProvider{lister: &bucketLister{}}
	calc := New(testConfig(), provider, &stubDisk{err: diskErr}, zap.NewNop())

	_, err := calc.Compute(context.Background(), 3)
	assert.ErrorIs(t, err, diskErr)
	assert.Zero(t, provider.calls)
}

func TestCalculator_Prefixes(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		root     string
		children string
		child    string
	}{
		{
			name:     "plain",
			cfg:      Config{UploadsPrefix: "uploads", ChildSitesPrefix: "sites"},
			root:     "uploads/",
			children: "uploads/sites/",
			child:    "uploads/sites/4/",
		},
		{
			name:     "stray slashes",
			cfg:      Config{UploadsPrefix: "/uploads/", ChildSitesPrefix: "/sites/"},
			root:     "uploads/",
			children: "uploads/sites/",
			child:    "uploads/sites/4/",
		},
		{
			name:     "bucket root",
			cfg:      Config{UploadsPrefix: "", ChildSitesPrefix: "sites"},
			root:     "",
			children: "sites/",
			child:    "sites/4/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := New(tt.cfg, nil, nil, zap.NewNop())
			assert.Equal(t, tt.root, calc.UploadsRoot())
			assert.Equal(t, tt.children, calc.ChildrenRoot())
			assert.Equal(t, tt.child, calc.ChildPrefix(4))
		})
	}
}

func TestCleanSlashes(t *testing.T) {
	assert.Equal(t, "uploads", CleanSlashes("/uploads/"))
	assert.Equal(t, "a/b", CleanSlashes("//a/b//"))
	assert.Equal(t, "", CleanSlashes("/"))
}
