package s3

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/consensuslabs/pavilion-mint/internal/storage"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
)

// Service archives original uploads to an S3-compatible bucket
type Service struct {
	client *minio.Client
	bucket string
	prefix string
	logger storage.Logger
}

// NewService creates a new S3 service instance
func NewService(cfg *storage.S3Config, logger storage.Logger) (*Service, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  miniocreds.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return &Service{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: logger,
	}, nil
}

// Archive uploads the file at filePath under prefix/key and returns its location
func (s *Service) Archive(ctx context.Context, key, filePath, contentType string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to get file info: %w", err)
	}

	objectKey := path.Join(s.prefix, key)
	result, err := s.client.PutObject(ctx, s.bucket, objectKey, file, info.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", storage.NewStorageError("failed to upload file to S3", err)
	}

	s.logger.LogInfo("Archived source upload", map[string]interface{}{
		"bucket": s.bucket,
		"key":    objectKey,
		"size":   result.Size,
	})

	if result.Location != "" {
		return result.Location, nil
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, objectKey), nil
}

// Close is a no-op; the minio client holds no long-lived connection
func (s *Service) Close() error {
	return nil
}

var _ storage.Archiver = (*Service)(nil)
