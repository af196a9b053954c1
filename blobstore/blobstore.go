// Package blobstore uploads user files (avatars, medical report documents)
// to an S3 compatible object store and returns publicly reachable URLs.
package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pamcare/pamcare/config"
)

// Store is the interface the request handlers depend on. It is satisfied by
// S3Store and by test doubles.
type Store interface {
	// Upload writes data under the given key prefix and returns the public
	// URL of the stored object.
	Upload(ctx context.Context, prefix string, contentType string, data []byte) (string, error)
}

// Key prefixes for the two kinds of uploads.
const (
	PrefixAvatars = "avatars"
	PrefixReports = "reports"
)

// S3Store talks to a single bucket through the AWS SDK. The endpoint can be
// overridden for MinIO or any other S3 compatible server.
type S3Store struct {
	client         *s3.Client
	configProvider *config.Provider
	logger         *slog.Logger
}

var _ Store = (*S3Store)(nil)

func New(provider *config.Provider, logger *slog.Logger) (*S3Store, error) {
	if provider == nil {
		return nil, fmt.Errorf("config provider cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	storageCfg := provider.Get().Storage

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(storageCfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			storageCfg.AccessKey,
			storageCfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load storage credentials: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if storageCfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(storageCfg.Endpoint)
			// MinIO serves buckets under the path, not as subdomains.
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:         client,
		configProvider: provider,
		logger:         logger,
	}, nil
}

// storageKey partitions objects by date so buckets stay browsable.
func storageKey(prefix string) string {
	now := time.Now().UTC()
	return fmt.Sprintf("%s/%d/%02d/%s", prefix, now.Year(), now.Month(), uuid.NewString())
}

func (s *S3Store) Upload(ctx context.Context, prefix string, contentType string, data []byte) (string, error) {
	cfg := s.configProvider.Get().Storage

	if maxUpload := cfg.MaxUpload; maxUpload > 0 && int64(len(data)) > maxUpload {
		return "", fmt.Errorf("upload of %d bytes exceeds the %d byte limit", len(data), maxUpload)
	}

	key := storageKey(prefix)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store object %s: %w", key, err)
	}

	url := publicURL(cfg, key)
	s.logger.Info("stored object", "key", key, "bytes", len(data))
	return url, nil
}

func publicURL(cfg config.Storage, key string) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", cfg.Bucket, cfg.Region, key)
}
