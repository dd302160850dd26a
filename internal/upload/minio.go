package upload

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioProvider stores artifacts in a MinIO/S3 bucket.
type MinioProvider struct {
	client *minio.Client
	bucket string
	prefix string
}

// Name implements Provider.
func (m *MinioProvider) Name() string { return "minio" }

// Configure implements Provider. Required settings: endpoint,
// access_key, secret_key, bucket. Optional: secure (default true),
// region, prefix.
func (m *MinioProvider) Configure(settings map[string]string) error {
	for _, key := range []string{"endpoint", "access_key", "secret_key", "bucket"} {
		if settings[key] == "" {
			return fmt.Errorf("minio: %s is required", key)
		}
	}

	secure := true
	if raw, ok := settings["secure"]; ok {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("minio: invalid secure value %q: %w", raw, err)
		}
		secure = parsed
	}

	client, err := minio.New(settings["endpoint"], &minio.Options{
		Creds:  credentials.NewStaticV4(settings["access_key"], settings["secret_key"], ""),
		Secure: secure,
		Region: settings["region"],
	})
	if err != nil {
		return fmt.Errorf("minio: create client: %w", err)
	}

	exists, err := client.BucketExists(context.Background(), settings["bucket"])
	if err != nil {
		return fmt.Errorf("minio: check bucket: %w", err)
	}
	if !exists {
		return fmt.Errorf("minio: bucket %s does not exist", settings["bucket"])
	}

	m.client = client
	m.bucket = settings["bucket"]
	m.prefix = settings["prefix"]
	return nil
}

// Store implements Provider.
func (m *MinioProvider) Store(ctx context.Context, reader io.Reader, remotePath string) error {
	if m.client == nil {
		return fmt.Errorf("minio: provider not configured")
	}

	objectName := remotePath
	if m.prefix != "" {
		objectName = path.Join(m.prefix, remotePath)
	}

	// Size -1 lets the client stream content of unknown length.
	if _, err := m.client.PutObject(ctx, m.bucket, objectName, reader, -1, minio.PutObjectOptions{
		ContentType: "text/plain",
	}); err != nil {
		return fmt.Errorf("minio: put %s: %w", objectName, err)
	}
	return nil
}
