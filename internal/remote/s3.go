// Package remote publishes blobs to the S3-compatible object store that
// backs shared conversations. One primitive, PostAsset, carries binary
// attachments, snapshot documents, and tombstones alike.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/codeGROOVE-dev/retry"

	"github.com/dkoval/mailshare/internal/config"
	"github.com/dkoval/mailshare/internal/logging"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
)

// Store wraps the S3 client with the bucket and public-URL settings.
type Store struct {
	client     *s3.Client
	logger     logging.Logger
	bucket     string
	baseURL    string
	retryDelay time.Duration
}

// New builds an S3 client from the daemon config (static credentials and
// a base endpoint, so MinIO works in development).
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Store, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &Store{
		client:     client,
		logger:     logger,
		bucket:     cfg.S3Bucket,
		baseURL:    strings.TrimRight(cfg.S3PublicBaseURL, "/"),
		retryDelay: time.Second,
	}, nil
}

// PostAsset uploads blob under filename and returns the public URL it
// is reachable at. The S3 key keeps the raw filename; only the returned
// URL is escaped. Transient failures are retried with backoff; the
// caller sees only the final error.
func (s *Store) PostAsset(ctx context.Context, filename string, blob []byte) (string, error) {
	err := retry.Do(
		func() error {
			_, putErr := putObject(s.client, ctx, &s3.PutObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    aws.String(filename),
				Body:   bytes.NewReader(blob),
			})
			return putErr
		},
		retry.Attempts(3),
		retry.Delay(s.retryDelay),
		retry.MaxDelay(30*time.Second),
		retry.MaxJitter(2*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, retryErr error) {
			s.logger.Warn(ctx, "retrying object upload", "attempt", n+1, "filename", filename, "error", retryErr)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", filename, err)
	}

	return s.publicURL(filename), nil
}

// publicURL joins the base URL with the object key. Keys carry
// user-chosen attachment names, so every path segment is escaped to
// keep spaces and reserved characters from breaking the URL.
func (s *Store) publicURL(filename string) string {
	segments := strings.Split(filename, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/" + strings.Join(segments, "/")
}
