package aggregator

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/vertextoedge/site-size-cache/internal/port"
)

// mockLister replays fixed pages and records the requests it served
type mockLister struct {
	pages []*port.ListPage
	err   error
	errAt int

	prefixes   []string
	delimiters []string
}

func (m *mockLister) List(ctx context.Context, prefix, delimiter string) iter.Seq2[*port.ListPage, error] {
	m.prefixes = append(m.prefixes, prefix)
	m.delimiters = append(m.delimiters, delimiter)
	return func(yield func(*port.ListPage, error) bool) {
		for i, page := range m.pages {
			if m.err != nil && i == m.errAt {
				yield(nil, m.err)
				return
			}
			if !yield(page, nil) {
				return
			}
		}
	}
}

func page(sizes ...int64) *port.ListPage {
	p := &port.ListPage{}
	for _, s := range sizes {
		p.Contents = append(p.Contents, port.Object{Key: "k", Size: s})
	}
	return p
}

func TestAggregator_Sum(t *testing.T) {
	tests := []struct {
		name  string
		pages []*port.ListPage
		want  int64
	}{
		{
			name:  "three pages",
			pages: []*port.ListPage{page(10, 20), page(30, 40), page(50, 60)},
			want:  210,
		},
		{
			name:  "empty listing",
			pages: nil,
			want:  0,
		},
		{
			name:  "empty middle page",
			pages: []*port.ListPage{page(5), page(), page(7)},
			want:  12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(&mockLister{pages: tt.pages})
			got, err := a.Sum(context.Background(), "uploads/", "")
			if err != nil {
				t.Fatalf("Sum() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Sum() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAggregator_DelimiterDoesNotFollowPrefixes(t *testing.T) {
	p := page(100)
	p.CommonPrefixes = []string{"uploads/docs/", "uploads/sites/"}
	lister := &mockLister{pages: []*port.ListPage{p}}
	a := New(lister)

	listing, err := a.Walk(context.Background(), "uploads/", "/")
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if listing.ContentBytes != 100 || listing.Objects != 1 {
		t.Errorf("Walk() = %+v, want 100 bytes in 1 object", listing)
	}
	if len(listing.CommonPrefixes) != 2 {
		t.Errorf("CommonPrefixes = %v, want 2 entries", listing.CommonPrefixes)
	}
	if len(lister.prefixes) != 1 {
		t.Errorf("listed %d prefixes, want only the requested one", len(lister.prefixes))
	}
	if lister.delimiters[0] != "/" {
		t.Errorf("delimiter = %q, want /", lister.delimiters[0])
	}
}

func TestAggregator_ErrorPropagates(t *testing.T) {
	listErr := errors.New("boom")
	a := New(&mockLister{
		pages: []*port.ListPage{page(1), page(2)},
		err:   listErr,
		errAt: 1,
	})

	_, err := a.Sum(context.Background(), "uploads/", "")
	if !errors.Is(err, listErr) {
		t.Errorf("Sum() error = %v, want %v", err, listErr)
	}
}
