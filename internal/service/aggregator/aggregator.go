package aggregator

import (
	"context"

	"github.com/vertextoedge/site-size-cache/internal/port"
)

// Listing is the result of walking a single listing
type Listing struct {
	// ContentBytes is the sum of object sizes directly returned by the listing
	ContentBytes int64

	// Objects is the number of objects counted
	Objects int

	// CommonPrefixes collects the grouped prefixes of a delimited listing
	CommonPrefixes []string
}

// Aggregator sums object sizes under a key prefix
type Aggregator struct {
	lister port.ObjectLister
}

// New creates a new Aggregator
func New(lister port.ObjectLister) *Aggregator {
	return &Aggregator{lister: lister}
}

// Sum returns the total size of the objects listed under prefix.
// With a delimiter, grouped common prefixes are not followed.
func (a *Aggregator) Sum(ctx context.Context, prefix, delimiter string) (int64, error) {
	listing, err := a.Walk(ctx, prefix, delimiter)
	if err != nil {
		return 0, err
	}
	return listing.ContentBytes, nil
}

// Walk drains every page under prefix, summing contents and collecting
// common prefixes. Listing errors are returned unchanged.
func (a *Aggregator) Walk(ctx context.Context, prefix, delimiter string) (*Listing, error) {
	listing := &Listing{}
	for page, err := range a.lister.List(ctx, prefix, delimiter) {
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			listing.ContentBytes += obj.Size
			listing.Objects++
		}
		listing.CommonPrefixes = append(listing.CommonPrefixes, page.CommonPrefixes...)
	}
	return listing, nil
}
