package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/config"
)

// ArtifactMirror replicates published artifacts to an object-storage
// bucket so the open-data catalog can fetch them without reaching the
// office instance. Mirroring is best effort: the on-disk files remain
// the source of truth and a failed upload is logged, not fatal.
type ArtifactMirror struct {
	client *minio.Client
	bucket string
	config *config.Mirror
}

func NewArtifactMirror(cfg *config.Mirror) (*ArtifactMirror, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mirror client: %w", err)
	}

	return &ArtifactMirror{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (m *ArtifactMirror) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// UploadFile copies a local artifact into the bucket under objectName.
func (m *ArtifactMirror) UploadFile(ctx context.Context, objectName, localPath, contentType string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat artifact: %w", err)
	}

	_, err = m.client.PutObject(ctx, m.bucket, objectName, f, info.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload artifact: %w", err)
	}

	return nil
}

// MirrorRecord uploads the three publish outputs of a record. Errors
// are logged per object and the first one is returned so the caller
// can surface a reconciliation warning.
func (m *ArtifactMirror) MirrorRecord(ctx context.Context, reportID, ledgerPath, metadataPath, qrPath string) error {
	objects := []struct {
		name        string
		path        string
		contentType string
	}{
		{"rejestry/" + filepath.Base(ledgerPath), ledgerPath, "text/csv"},
		{"zgloszenia/" + filepath.Base(metadataPath), metadataPath, "application/xml"},
		{"qr_images/" + filepath.Base(qrPath), qrPath, "image/png"},
	}

	var firstErr error
	for _, o := range objects {
		if err := m.UploadFile(ctx, o.name, o.path, o.contentType); err != nil {
			slog.Warn("artifact mirror upload failed",
				"report_id", reportID,
				"object", o.name,
				"error", err,
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// PublicURL returns the bucket address of a mirrored object.
func (m *ArtifactMirror) PublicURL(objectName string) string {
	protocol := "http"
	if m.config.UseSSL {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", protocol, m.config.Endpoint, m.bucket, objectName)
}
