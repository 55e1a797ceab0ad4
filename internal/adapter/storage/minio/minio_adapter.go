package minio

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/srijonashraf/sellswipe-server/internal/config"
	"github.com/srijonashraf/sellswipe-server/internal/domain"
	"github.com/srijonashraf/sellswipe-server/internal/platform/logger"
)

// Storage implements the AssetStorage port on a MinIO bucket. The
// object key doubles as the destruction handle, so it is stored next
// to the URL in every image reference.
type Storage struct {
	client *minio.Client
	bucket string
	logger *logger.Logger
}

func NewStorage(cfg *config.MinIOConfig, log *logger.Logger) (*Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	err = client.MakeBucket(context.Background(), cfg.Bucket, minio.MakeBucketOptions{})
	if err != nil {
		exists, errExists := client.BucketExists(context.Background(), cfg.Bucket)
		if errExists != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &Storage{
		client: client,
		bucket: cfg.Bucket,
		logger: log.Named("MinIOStorage"),
	}, nil
}

// Upload pushes the file at localPath under a fresh object key. The
// local file is left in place; callers clean it up themselves.
func (s *Storage) Upload(ctx context.Context, localPath, ownerTag string) (domain.ImageRef, error) {
	ext := filepath.Ext(localPath)
	objectKey := fmt.Sprintf("posts/%s/%s%s", ownerTag, uuid.New().String(), ext)

	info, err := s.client.FPutObject(ctx, s.bucket, objectKey, localPath, minio.PutObjectOptions{})
	if err != nil {
		s.logger.Error("FPutObject failed",
			zap.String("bucket", s.bucket),
			zap.String("object_key", objectKey),
			zap.Error(err))
		return domain.ImageRef{}, fmt.Errorf("failed to upload object %s to bucket %s: %w", objectKey, s.bucket, err)
	}

	s.logger.Debug("Uploaded object",
		zap.String("object_key", info.Key),
		zap.Int64("size_bytes", info.Size))

	return domain.ImageRef{
		URL:      fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, objectKey),
		ObjectID: objectKey,
	}, nil
}

// Destroy removes one object by its key. Removing a missing object is
// not an error on the MinIO side, which matches how slot replacement
// retries behave.
func (s *Storage) Destroy(ctx context.Context, objectID string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectID, minio.RemoveObjectOptions{})
	if err != nil {
		s.logger.Error("RemoveObject failed",
			zap.String("bucket", s.bucket),
			zap.String("object_key", objectID),
			zap.Error(err))
		return fmt.Errorf("failed to remove object %s from bucket %s: %w", objectID, s.bucket, err)
	}
	return nil
}
