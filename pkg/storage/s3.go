package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	appcfg "github.com/streamhive/streamhive/config"
	"github.com/streamhive/streamhive/pkg/circuit"
	"github.com/streamhive/streamhive/pkg/logger"
)

// MediaKind selects the key prefix an object is stored under.
type MediaKind string

const (
	KindVideo     MediaKind = "videos"
	KindThumbnail MediaKind = "thumbnails"
	KindAvatar    MediaKind = "avatars"
	KindCover     MediaKind = "covers"
)

// UploadResult describes a stored object. PublicID is the object key
// and is what callers must hand back to Delete.
type UploadResult struct {
	URL      string
	PublicID string
}

// MediaStore is the upstream media interface the services depend on.
type MediaStore interface {
	Upload(ctx context.Context, localPath string, kind MediaKind) (*UploadResult, error)
	Delete(ctx context.Context, publicIDs ...string) error
}

// S3Store stores media objects in an S3-compatible bucket behind a
// circuit breaker.
type S3Store struct {
	client        *s3.Client
	bucket        string
	region        string
	publicBaseURL string
	breaker       *circuit.Breaker
}

// NewS3Store builds the S3 client. A custom Endpoint switches the
// client to path-style addressing for MinIO-style deployments.
func NewS3Store(ctx context.Context, cfg appcfg.MediaConfig, breaker *circuit.Breaker) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:        client,
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		breaker:       breaker,
	}, nil
}

// Upload pushes the staged local file to the bucket and removes the
// local copy regardless of outcome.
func (s *S3Store) Upload(ctx context.Context, localPath string, kind MediaKind) (*UploadResult, error) {
	defer os.Remove(localPath)

	file, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open staged file: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(localPath))
	key := fmt.Sprintf("%s/%s/%s%s", kind, time.Now().UTC().Format("2006/01/02"), uuid.NewString(), ext)

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	err = s.breaker.Execute(func() error {
		_, putErr := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        file,
			ContentType: aws.String(contentType),
		})
		return putErr
	})
	if err != nil {
		logger.ErrorWithContext(ctx, "Media upload failed").
			String("key", key).
			Err(err).
			Log()
		return nil, err
	}

	return &UploadResult{
		URL:      s.objectURL(key),
		PublicID: key,
	}, nil
}

// Delete removes objects by key. Missing keys are not an error, so
// best-effort cleanup after entity deletion stays idempotent.
func (s *S3Store) Delete(ctx context.Context, publicIDs ...string) error {
	for _, key := range publicIDs {
		if key == "" {
			continue
		}
		k := key
		err := s.breaker.Execute(func() error {
			_, delErr := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    aws.String(k),
			})
			return delErr
		})
		if err != nil {
			logger.WarnWithContext(ctx, "Media delete failed").
				String("key", k).
				Err(err).
				Log()
			return err
		}
	}
	return nil
}

func (s *S3Store) objectURL(key string) string {
	if s.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s", s.publicBaseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
