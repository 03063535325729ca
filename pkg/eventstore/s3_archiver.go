package eventstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/logger"
)

// S3Client is the subset of the S3 API the archiver uses.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config configures the dead-letter archive bucket.
type S3Config struct {
	Bucket         string `env:"DLQ_ARCHIVE_BUCKET"`
	Prefix         string `env:"DLQ_ARCHIVE_PREFIX" envDefault:"dead-letters"`
	Region         string `env:"DLQ_ARCHIVE_REGION" envDefault:"us-east-1"`
	AccessKeyID    string `env:"DLQ_ARCHIVE_ACCESS_KEY_ID"`
	SecretKey      string `env:"DLQ_ARCHIVE_SECRET_KEY"`
	Endpoint       string `env:"DLQ_ARCHIVE_ENDPOINT"`
	ForcePathStyle bool   `env:"DLQ_ARCHIVE_FORCE_PATH_STYLE" envDefault:"false"`
}

// ArchivingDeadLetterStore decorates a DeadLetterStore with a best-effort
// S3 export of each dead letter for offline inspection. Archive failures
// are logged and never surface to the dispatch path.
type ArchivingDeadLetterStore struct {
	inner  DeadLetterStore
	client S3Client
	bucket string
	prefix string
	logger *slog.Logger
}

// ArchiverOption configures an ArchivingDeadLetterStore.
type ArchiverOption func(*ArchivingDeadLetterStore)

// WithArchiverLogger sets the logger for archive failures.
func WithArchiverLogger(l *slog.Logger) ArchiverOption {
	return func(a *ArchivingDeadLetterStore) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithS3Client injects a pre-built S3 client, mainly for tests and
// S3-compatible services.
func WithS3Client(c S3Client) ArchiverOption {
	return func(a *ArchivingDeadLetterStore) { a.client = c }
}

// NewArchivingDeadLetterStore wraps inner with an S3 archive step.
func NewArchivingDeadLetterStore(ctx context.Context, inner DeadLetterStore, cfg S3Config, opts ...ArchiverOption) (*ArchivingDeadLetterStore, error) {
	if inner == nil {
		return nil, ErrNilStore
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket is required", ErrInvalidArchiveConfig)
	}

	a := &ArchivingDeadLetterStore{
		inner:  inner,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.client == nil {
		loadOpts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArchiveConfig, err)
		}
		a.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			o.UsePathStyle = cfg.ForcePathStyle
		})
	}

	return a, nil
}

func (a *ArchivingDeadLetterStore) Create(ctx context.Context, dl DeadLetter) error {
	if err := a.inner.Create(ctx, dl); err != nil {
		return err
	}

	body, err := json.Marshal(dl)
	if err != nil {
		a.logger.ErrorContext(ctx, "failed to encode dead letter for archive",
			logger.EventID(dl.EventID), logger.Error(err))
		return nil
	}

	key := fmt.Sprintf("%s/%s.json", a.prefix, dl.EventID)
	if _, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		a.logger.ErrorContext(ctx, "failed to archive dead letter to s3",
			logger.EventID(dl.EventID),
			slog.String("bucket", a.bucket),
			slog.String("key", key),
			logger.Error(err))
	}
	return nil
}

func (a *ArchivingDeadLetterStore) List(ctx context.Context, limit, offset int) ([]DeadLetter, error) {
	return a.inner.List(ctx, limit, offset)
}
