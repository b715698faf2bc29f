package s3storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dharsanguruparan/IntakeDesk/internal/config"
)

// Storage wraps MinIO/S3 interactions for submission attachments. Objects are
// publicly readable, so the deterministic URL returned by Upload can be served
// straight to the dashboard.
type Storage struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
	region        string
}

// New creates a MinIO client from the Config.
func New(cfg *config.Config) (*Storage, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &Storage{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		region:        cfg.S3Region,
	}, nil
}

// EnsureBucket makes sure the bucket exists and is publicly readable.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("make bucket %s: %w", s.bucket, err)
		}
	}
	policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, s.bucket)
	if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
		return fmt.Errorf("set bucket policy %s: %w", s.bucket, err)
	}
	return nil
}

// Upload writes an attachment and returns its public URL.
func (s *Storage) Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.bucket, objectKey, reader, size, opts); err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}
	return s.PublicURL(objectKey), nil
}

// PublicURL derives the durable public URL for an object key.
func (s *Storage) PublicURL(objectKey string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, objectKey)
}

// Download fetches object bytes.
func (s *Storage) Download(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer obj.Close()
	buf, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return buf, nil
}

// Delete removes an object. A missing object is treated as success.
func (s *Storage) Delete(ctx context.Context, objectKey string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

// DeleteByURL derives the object key from a public URL and deletes it.
func (s *Storage) DeleteByURL(ctx context.Context, fileURL string) error {
	key := ObjectKeyFromURL(fileURL, s.bucket)
	if key == "" {
		return fmt.Errorf("url %q does not reference bucket %s", fileURL, s.bucket)
	}
	return s.Delete(ctx, key)
}

// ObjectKeyFromURL extracts the object key from a public URL by splitting on
// the bucket segment. Query strings are dropped and percent-encoding undone.
// Returns "" when the URL does not reference the bucket.
func ObjectKeyFromURL(fileURL, bucket string) string {
	marker := "/" + bucket + "/"
	idx := strings.Index(fileURL, marker)
	if idx < 0 {
		return ""
	}
	key := fileURL[idx+len(marker):]
	if q := strings.IndexByte(key, '?'); q >= 0 {
		key = key[:q]
	}
	if decoded, err := url.PathUnescape(key); err == nil {
		key = decoded
	}
	return key
}
