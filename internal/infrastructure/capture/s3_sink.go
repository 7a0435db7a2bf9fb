package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/tallysync/backend/internal/infrastructure/config"
)

// S3Sink uploads captures to an S3-compatible bucket (AWS S3, MinIO, RustFS)
type S3Sink struct {
	client *s3.Client
	bucket string
	prefix string
	now    func() time.Time
	logger *zap.Logger
}

// S3SinkOption is a functional option for configuring S3Sink
type S3SinkOption func(*S3Sink)

// WithLogger sets a custom logger for S3Sink
func WithLogger(logger *zap.Logger) S3SinkOption {
	return func(s *S3Sink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewS3Sink creates an S3Sink from the storage configuration
func NewS3Sink(cfg *config.StorageConfig, prefix string, opts ...S3SinkOption) (*S3Sink, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	sink := &S3Sink{
		client: client,
		bucket: cfg.Bucket,
		prefix: prefix,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(sink)
	}
	return sink, nil
}

// Save uploads raw under <prefix><kind>/debug-<label>-<unixms>.xml and
// returns the s3:// location
func (s *S3Sink) Save(ctx context.Context, kind, label string, raw []byte) (string, error) {
	key := path.Join(s.prefix, kind, objectName(label, s.now()))
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(raw),
		ContentType:   aws.String("application/xml"),
		ContentLength: aws.Int64(int64(len(raw))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload capture: %w", err)
	}
	s.logger.Debug("Capture uploaded", zap.String("bucket", s.bucket), zap.String("key", key), zap.Int("bytes", len(raw)))
	return "s3://" + s.bucket + "/" + key, nil
}
