package s3store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/vertextoedge/site-size-cache/internal/domain"
	"github.com/vertextoedge/site-size-cache/internal/port"
)

// Lister pages through ListObjectsV2 for a single bucket
type Lister struct {
	client         s3.ListObjectsV2APIClient
	bucket         string
	pageSize       int32
	requestTimeout time.Duration
}

// Ensure Lister implements port.ObjectLister
var _ port.ObjectLister = (*Lister)(nil)

// NewLister creates a Lister over an existing client
func NewLister(client s3.ListObjectsV2APIClient, bucket string, pageSize int32, requestTimeout time.Duration) *Lister {
	return &Lister{
		client:         client,
		bucket:         bucket,
		pageSize:       pageSize,
		requestTimeout: requestTimeout,
	}
}

// List yields every page under prefix until the listing is exhausted
func (l *Lister) List(ctx context.Context, prefix, delimiter string) iter.Seq2[*port.ListPage, error] {
	return func(yield func(*port.ListPage, error) bool) {
		input := &s3.ListObjectsV2Input{
			Bucket: aws.String(l.bucket),
			Prefix: aws.String(prefix),
		}
		if delimiter != "" {
			input.Delimiter = aws.String(delimiter)
		}
		if l.pageSize > 0 {
			input.MaxKeys = aws.Int32(l.pageSize)
		}

		paginator := s3.NewListObjectsV2Paginator(l.client, input)
		for paginator.HasMorePages() {
			out, err := l.nextPage(ctx, paginator)
			if err != nil {
				yield(nil, l.wrapError(ctx, prefix, err))
				return
			}

			page := &port.ListPage{
				Contents: make([]port.Object, 0, len(out.Contents)),
			}
			for _, obj := range out.Contents {
				page.Contents = append(page.Contents, port.Object{
					Key:  aws.ToString(obj.Key),
					Size: aws.ToInt64(obj.Size),
				})
			}
			for _, cp := range out.CommonPrefixes {
				page.CommonPrefixes = append(page.CommonPrefixes, aws.ToString(cp.Prefix))
			}

			if !yield(page, nil) {
				return
			}
		}
	}
}

func (l *Lister) nextPage(ctx context.Context, p *s3.ListObjectsV2Paginator) (*s3.ListObjectsV2Output, error) {
	if l.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.requestTimeout)
		defer cancel()
	}
	return p.NextPage(ctx)
}

// wrapError classifies a listing failure. Cancellation of the caller's
// context propagates as-is; everything else, including a per-page timeout,
// is a provider failure.
func (l *Lister) wrapError(ctx context.Context, prefix string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("listing %s interrupted: %w", prefix, ctxErr)
	}

	var code string
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code = apiErr.ErrorCode()
	}
	return domain.NewObjectStoreError(prefix, code, err)
}
