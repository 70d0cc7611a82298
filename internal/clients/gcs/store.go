package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/utils"
)

// ObjectStore is the storage collaborator surface the upload and media
// services depend on. Implemented against GCS; tests inject fakes.
type ObjectStore interface {
	EnsureBucket(ctx context.Context) error
	Upload(ctx context.Context, key string, file io.Reader, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
	SignedReadURL(key string, expiry time.Duration) (string, error)
	SignedUploadURL(key, contentType string, expiry time.Duration) (string, error)
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}

type objectStore struct {
	log           *logger.Logger
	storageClient *storage.Client
	bucketName    string
	projectID     string
}

func NewObjectStore(log *logger.Logger) (ObjectStore, error) {
	serviceLog := log.With("service", "ObjectStore")

	bucketName := utils.GetEnv("MEDIA_GCS_BUCKET_NAME", "", log)
	if bucketName == "" {
		return nil, fmt.Errorf("missing env var MEDIA_GCS_BUCKET_NAME")
	}
	projectID := utils.GetEnv("GCS_PROJECT_ID", "", log)

	ctx := context.Background()
	opts := clientOptionsFromEnv()
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	stClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &objectStore{
		log:           serviceLog,
		storageClient: stClient,
		bucketName:    bucketName,
		projectID:     projectID,
	}, nil
}

func (os *objectStore) EnsureBucket(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	bucket := os.storageClient.Bucket(os.bucketName)
	_, err := bucket.Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("failed to check bucket %q: %w", os.bucketName, err)
	}
	if os.projectID == "" {
		return fmt.Errorf("bucket %q does not exist and GCS_PROJECT_ID is unset", os.bucketName)
	}
	os.log.Info("Creating storage bucket", "bucket", os.bucketName)
	if err := bucket.Create(ctx, os.projectID, nil); err != nil {
		return fmt.Errorf("failed to create bucket %q: %w", os.bucketName, err)
	}
	return nil
}

func (os *objectStore) Upload(ctx context.Context, key string, file io.Reader, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := os.storageClient.Bucket(os.bucketName).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (os *objectStore) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := os.storageClient.Bucket(os.bucketName).Object(key).Attrs(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat GCS object %q: %w", key, err)
}

func (os *objectStore) SignedReadURL(key string, expiry time.Duration) (string, error) {
	url, err := os.storageClient.Bucket(os.bucketName).SignedURL(key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(expiry),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign read url for %q: %w", key, err)
	}
	return url, nil
}

func (os *objectStore) SignedUploadURL(key, contentType string, expiry time.Duration) (string, error) {
	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "PUT",
		Expires: time.Now().Add(expiry),
	}
	if contentType != "" {
		opts.ContentType = contentType
	}
	url, err := os.storageClient.Bucket(os.bucketName).SignedURL(key, opts)
	if err != nil {
		return "", fmt.Errorf("failed to sign upload url for %q: %w", key, err)
	}
	return url, nil
}

func (os *objectStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	it := os.storageClient.Bucket(os.bucketName).Objects(ctx, &storage.Query{Prefix: prefix})
	out := []string{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, attrs.Name)
	}
	return out, nil
}

func (os *objectStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	o := os.storageClient.Bucket(os.bucketName).Object(key)
	if err := o.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, os.bucketName, err)
	}
	return nil
}
