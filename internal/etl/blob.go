package etl

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
)

// Blob moves whole files between the local disk and object storage.
type Blob interface {
	Download(ctx context.Context, bucket, key, path string) error
	Upload(ctx context.Context, bucket, key, path string) error
}

type minioBlob struct {
	client *minio.Client
}

func NewMinioBlob(client *minio.Client) Blob {
	return &minioBlob{client: client}
}

func (b *minioBlob) Download(ctx context.Context, bucket, key, path string) error {
	if err := b.client.FGetObject(ctx, bucket, key, path, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("download s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func (b *minioBlob) Upload(ctx context.Context, bucket, key, path string) error {
	if _, err := b.client.FPutObject(ctx, bucket, key, path, minio.PutObjectOptions{}); err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// ObjectKey joins a location prefix and a file name.
func ObjectKey(location, filename string) string {
	if location == "" {
		return filename
	}
	return location + "/" + filename
}
