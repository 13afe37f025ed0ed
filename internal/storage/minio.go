package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docrag/internal/config"
	"docrag/internal/model"
)

const bucketCheckTimeout = 10 * time.Second

// minioArchive keeps document bodies in one bucket of an S3-compatible store.
// Backend failures are reported as model.ErrStorageUnavailable.
type minioArchive struct {
	client *minio.Client
	bucket string
}

// NewMinIO connects to the configured endpoint and creates the bucket if it
// does not exist yet.
func NewMinIO(ctx context.Context, cfg config.MinIOConfig) (Storage, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	base, err := minio.DefaultTransport(cfg.UseSSL)
	if err != nil {
		return nil, fmt.Errorf("create minio transport: %w", err)
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Transport: otelhttp.NewTransport(base, otelhttp.WithSpanNameFormatter(spanName)),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	if err := ensureBucket(ctx, cli, cfg.Bucket); err != nil {
		return nil, err
	}
	return &minioArchive{client: cli, bucket: cfg.Bucket}, nil
}

func spanName(_ string, r *http.Request) string {
	return "minio " + r.Method
}

func validate(cfg config.MinIOConfig) error {
	var missing []string
	if cfg.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		missing = append(missing, "credentials")
	}
	if cfg.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if len(missing) > 0 {
		return fmt.Errorf("invalid minio config: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

func ensureBucket(ctx context.Context, cli *minio.Client, bucket string) error {
	ctx, cancel := context.WithTimeout(ctx, bucketCheckTimeout)
	defer cancel()

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return model.StorageError("check bucket", err)
	}
	if exists {
		return nil
	}
	if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return model.StorageError("create bucket", err)
	}
	return nil
}

func (m *minioArchive) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	info, err := m.client.PutObject(ctx, m.bucket, key, r, opt.Size, minio.PutObjectOptions{
		ContentType:  opt.ContentType,
		UserMetadata: opt.Metadata,
	})
	if err != nil {
		return ObjectInfo{}, model.StorageError("put "+key, err)
	}
	return ObjectInfo{
		Key:          key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  opt.ContentType,
		LastModified: info.LastModified,
		Metadata:     opt.Metadata,
	}, nil
}

// Delete is idempotent: removing a missing key succeeds.
func (m *minioArchive) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return model.StorageError("delete "+key, err)
	}
	return nil
}

// PresignGet signs a download link that renders the body inline as plain text.
func (m *minioArchive) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	params := url.Values{}
	params.Set("response-content-type", "text/plain; charset=utf-8")
	params.Set("response-content-disposition", "inline")

	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, expiry, params)
	if err != nil {
		return "", model.StorageError("presign "+key, err)
	}
	return u.String(), nil
}
