package port

import (
	"context"
	"iter"
)

// Object is a single entry of a listing page
type Object struct {
	Key  string
	Size int64
}

// ListPage is one page of an object listing.
// CommonPrefixes is only populated for delimited listings.
type ListPage struct {
	Contents       []Object
	CommonPrefixes []string
}

// ObjectLister lists objects in the configured bucket
type ObjectLister interface {
	// List returns the pages of objects whose key starts with prefix.
	// A non-empty delimiter groups deeper keys into common prefixes.
	// Iteration stops at the first error, which is yielded with a nil page.
	List(ctx context.Context, prefix, delimiter string) iter.Seq2[*ListPage, error]
}

// ObjectListerProvider lazily builds the object store client
type ObjectListerProvider interface {
	// Lister returns a ready client
	// Returns an error matching domain.ErrObjectStoreUnavailable if the client cannot be built
	Lister(ctx context.Context) (ObjectLister, error)
}
