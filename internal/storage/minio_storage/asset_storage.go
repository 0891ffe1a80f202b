package minio_storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"LearnForge/internal/models"

	"github.com/minio/minio-go/v7"
)

var ErrForeignURL = errors.New("url does not belong to the asset bucket")

// AssetStorage keeps course assets in one bucket and hands out stable public
// urls for them.
type AssetStorage struct {
	storage *MinioStorage
	bucket  string
	baseURL string
}

// NewAssetStorage serves urls under publicBaseURL, or under the client
// endpoint when it is empty.
func NewAssetStorage(storage *MinioStorage, bucket, publicBaseURL string) *AssetStorage {
	base := strings.TrimRight(publicBaseURL, "/")
	if base == "" {
		base = strings.TrimRight(storage.client.EndpointURL().String(), "/")
	}
	return &AssetStorage{
		storage: storage,
		bucket:  bucket,
		baseURL: base + "/" + bucket + "/",
	}
}

func (s *AssetStorage) Upload(ctx context.Context, key string, file models.Upload) (string, error) {
	contentType := file.MediaType()
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.storage.client.PutObject(
		ctx,
		s.bucket,
		key,
		file.Body,
		file.Size,
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.URL(key), nil
}

func (s *AssetStorage) URL(key string) string {
	return s.baseURL + strings.TrimLeft(key, "/")
}

// KeyFromURL is the inverse of URL.
func (s *AssetStorage) KeyFromURL(url string) (string, error) {
	key, ok := strings.CutPrefix(url, s.baseURL)
	if !ok || key == "" {
		return "", ErrForeignURL
	}
	return key, nil
}

// DeleteByURL removes the object behind url. Urls pointing elsewhere, such as
// externally hosted videos, are left alone.
func (s *AssetStorage) DeleteByURL(ctx context.Context, url string) error {
	key, err := s.KeyFromURL(url)
	if err != nil {
		return nil
	}
	return s.storage.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

func (s *AssetStorage) DeletePrefix(ctx context.Context, prefix string) error {
	objects := s.storage.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true})
	var errs []error
	for removeErr := range s.storage.client.RemoveObjects(ctx, s.bucket, objects, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("remove %s: %w", removeErr.ObjectName, removeErr.Err))
	}
	return errors.Join(errs...)
}

// Ping reports whether the asset bucket is reachable.
func (s *AssetStorage) Ping(ctx context.Context) error {
	ok, err := s.storage.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s is missing", s.bucket)
	}
	return nil
}
