// Package storage archives raw upstream pages to S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	app "github.com/sellerpulse/backend/internal/application/analytics"
	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	infraconfig "github.com/sellerpulse/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultRegion   = "us-east-1"
	archivePrefix   = "raw"
	jsonContentType = "application/json"
)

var _ app.RawArchive = (*S3RawArchive)(nil)

// S3RawArchive stores every fetched page under raw/<shop>/<date>/page-<n>.json.
// Works against AWS S3 and S3-compatible stores (MinIO, RustFS).
type S3RawArchive struct {
	client *s3.Client
	bucket string
	logger *zap.Logger
}

// S3RawArchiveOption is a functional option for configuring S3RawArchive
type S3RawArchiveOption func(*S3RawArchive)

// WithLogger sets a custom logger for S3RawArchive
func WithLogger(logger *zap.Logger) S3RawArchiveOption {
	return func(a *S3RawArchive) {
		a.logger = logger
	}
}

// NewS3RawArchive creates an archive from configuration. Empty access keys fall
// back to the default AWS credential chain.
func NewS3RawArchive(ctx context.Context, cfg infraconfig.ArchiveConfig, opts ...S3RawArchiveOption) (*S3RawArchive, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("archive bucket is required")
	}
	if (cfg.AccessKeyID == "") != (cfg.SecretAccessKey == "") {
		return nil, errors.New("archive access key and secret key must be set together")
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	var endpoint string
	if cfg.Endpoint != "" {
		endpoint = cfg.Endpoint
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid archive endpoint: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	archive := &S3RawArchive{
		client: client,
		bucket: cfg.Bucket,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(archive)
	}
	return archive, nil
}

// PageKey returns the object key of one archived page
func PageKey(shopID string, date string, pageNo int) string {
	return fmt.Sprintf("%s/%s/%s/page-%d.json", archivePrefix, shopID, date, pageNo)
}

// Store uploads the page. Re-archiving the same page overwrites the object.
func (a *S3RawArchive) Store(ctx context.Context, page app.ArchivedPage) error {
	if page.ShopID == "" {
		return errors.New("archived page requires a shop id")
	}

	key := PageKey(page.ShopID, domain.FormatDate(page.Date), page.PageNo)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(page.Payload),
		ContentType: aws.String(jsonContentType),
	})
	if err != nil {
		return fmt.Errorf("failed to archive page %s: %w", key, err)
	}

	a.logger.Debug("Archived raw page",
		zap.String("bucket", a.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(page.Payload)),
	)
	return nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (a *S3RawArchive) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	a.logger.Info("Creating archive bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Bucket returns the bucket name
func (a *S3RawArchive) Bucket() string {
	return a.bucket
}
