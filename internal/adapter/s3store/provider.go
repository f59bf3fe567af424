package s3store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/vertextoedge/site-size-cache/internal/domain"
	"github.com/vertextoedge/site-size-cache/internal/port"
)

// Config contains object store connection settings
type Config struct {
	Region         string
	Endpoint       string // custom endpoint for S3-compatible stores
	AccessKey      string
	SecretKey      string
	Bucket         string
	UsePathStyle   bool
	PageSize       int32
	RequestTimeout time.Duration
}

type clientFactory func(ctx context.Context, cfg Config) (s3.ListObjectsV2APIClient, error)

// Provider builds the S3 client on first use and reuses it afterwards.
// A failed build is retried on the next call.
type Provider struct {
	cfg       Config
	logger    *zap.Logger
	newClient clientFactory

	mu     sync.Mutex
	lister *Lister
}

// Ensure Provider implements port.ObjectListerProvider
var _ port.ObjectListerProvider = (*Provider)(nil)

// NewProvider creates a new Provider
func NewProvider(cfg Config, logger *zap.Logger) *Provider {
	return &Provider{
		cfg:       cfg,
		logger:    logger,
		newClient: newS3Client,
	}
}

// Lister returns the shared Lister, building the client if needed
func (p *Provider) Lister(ctx context.Context) (port.ObjectLister, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lister != nil {
		return p.lister, nil
	}

	if p.cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket is not configured", domain.ErrObjectStoreUnavailable)
	}

	client, err := p.newClient(ctx, p.cfg)
	if err != nil {
		p.logger.Warn("object store client unavailable", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrObjectStoreUnavailable, err)
	}

	p.lister = NewLister(client, p.cfg.Bucket, p.cfg.PageSize, p.cfg.RequestTimeout)
	p.logger.Info("object store client initialized",
		zap.String("bucket", p.cfg.Bucket),
		zap.String("region", p.cfg.Region),
		zap.String("endpoint", p.cfg.Endpoint))
	return p.lister, nil
}

func newS3Client(ctx context.Context, cfg Config) (s3.ListObjectsV2APIClient, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, fmt.Errorf("access key and secret must be set together")
		}
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if awsCfg.Region == "" {
		return nil, fmt.Errorf("no region configured")
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}
