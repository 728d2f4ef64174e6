package export

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Vovarama1992/braille_bridge/internal/ports"
)

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Insecure  bool
}

// S3Sink: artifacts go to an S3 compatible bucket, the public URL comes back
type S3Sink struct {
	client *minio.Client
	bucket string
	host   string
	now    func() time.Time
}

var _ ports.ArtifactSink = (*S3Sink)(nil)

func NewS3Sink(ctx context.Context, cfg S3Config) (*S3Sink, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: !cfg.Insecure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init S3 client: %w", err)
	}

	// the bucket must already exist
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}

	scheme := "https"
	if cfg.Insecure {
		scheme = "http"
	}

	return &S3Sink{
		client: client,
		bucket: cfg.Bucket,
		host:   fmt.Sprintf("%s://%s", scheme, cfg.Endpoint),
		now:    time.Now,
	}, nil
}

// ObjectKey: exports/<date>/<name>
func (s *S3Sink) ObjectKey(name string) string {
	return ObjectKey(s.now(), name)
}

func ObjectKey(at time.Time, name string) string {
	return path.Join("exports", at.Format("2006-01-02"), filepath.Base(name))
}

func (s *S3Sink) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := s.ObjectKey(name)

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"exported-at": s.now().Format(time.RFC3339)},
	})
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}

	return s.publicURL(key), nil
}

func (s *S3Sink) publicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.host, s.bucket, (&url.URL{Path: key}).EscapedPath())
}
