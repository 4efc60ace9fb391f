package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"orghub-backend/shared/config"
)

// LogoStorage stores organization logos in a MinIO bucket
type LogoStorage struct {
	client     *minio.Client
	bucketName string
}

// NewLogoStorage connects to MinIO and ensures the logo bucket exists
func NewLogoStorage() (*LogoStorage, error) {
	cfg := config.GetConfig()

	parsedURL, err := url.Parse(cfg.MinIOServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MinIO endpoint: %v", err)
	}

	endpoint := parsedURL.Host
	useSSL := cfg.MinIOUseSSL

	log.Printf("🔗 Connecting to MinIO: %s (SSL: %v)", endpoint, useSSL)

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIORootUser, cfg.MinIORootPassword, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %v", err)
	}

	storage := &LogoStorage{
		client:     minioClient,
		bucketName: cfg.MinIOBucketName,
	}

	if err := storage.initializeBucket(); err != nil {
		return nil, err
	}

	return storage, nil
}

func (s *LogoStorage) initializeBucket() error {
	ctx := context.Background()

	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
		log.Printf("✅ MinIO bucket '%s' created successfully", s.bucketName)
	} else {
		log.Printf("✅ MinIO bucket '%s' already exists", s.bucketName)
	}

	return nil
}

// UploadLogo stores a logo object for the organization and returns its key.
// The key embeds a fresh UUID so uploads never overwrite each other.
func (s *LogoStorage) UploadLogo(ctx context.Context, orgID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	objectKey := fmt.Sprintf("logos/%s/%s%s", orgID, uuid.New(), path.Ext(filename))

	_, err := s.client.PutObject(ctx, s.bucketName, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload logo: %v", err)
	}

	log.Printf("📦 Logo uploaded: %s", objectKey)
	return objectKey, nil
}

// RemoveLogo deletes a logo object. Missing objects are not an error.
func (s *LogoStorage) RemoveLogo(ctx context.Context, objectKey string) error {
	if objectKey == "" {
		return nil
	}
	err := s.client.RemoveObject(ctx, s.bucketName, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to remove logo %s: %v", objectKey, err)
	}
	return nil
}

// LogoURL returns a presigned download URL for a logo object
func (s *LogoStorage) LogoURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	presigned, err := s.client.PresignedGetObject(ctx, s.bucketName, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign logo URL: %v", err)
	}
	return presigned.String(), nil
}

// TestConnection verifies the MinIO connection
func (s *LogoStorage) TestConnection() error {
	ctx := context.Background()

	buckets, err := s.client.ListBuckets(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to MinIO: %v", err)
	}

	log.Printf("✅ MinIO connection successful. Found %d buckets", len(buckets))
	return nil
}
