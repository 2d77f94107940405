package images

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"yelpcamp/internal/filevalidation"
	"yelpcamp/internal/models"
)

// ObjectClient is the subset of *minio.Client the store uses.
type ObjectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL prefixes object URLs; defaults to the endpoint.
	PublicURL string
	Folder    string
	MaxSize   int64
}

// MinioStore keeps images in an S3-compatible bucket.
type MinioStore struct {
	client  ObjectClient
	bucket  string
	folder  string
	baseURL string
	maxSize int64
}

// NewMinioClient dials the S3 endpoint with static credentials.
func NewMinioClient(cfg MinioConfig) (*minio.Client, error) {
	c, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return c, nil
}

func NewMinioStore(client ObjectClient, cfg MinioConfig) *MinioStore {
	base := strings.TrimRight(cfg.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = scheme + "://" + cfg.Endpoint
	}
	return &MinioStore{
		client:  client,
		bucket:  cfg.Bucket,
		folder:  cfg.Folder,
		baseURL: base + "/" + cfg.Bucket,
		maxSize: cfg.MaxSize,
	}
}

// EnsureBucket creates the bucket when it does not exist.
func (m *MinioStore) EnsureBucket(ctx context.Context) error {
	ok, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("bucket exists: %w", err)
	}
	if ok {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket: %w", err)
	}
	return nil
}

func (m *MinioStore) Upload(ctx context.Context, fh *multipart.FileHeader) (models.Image, error) {
	img, err := filevalidation.OpenImage(fh, m.maxSize)
	if err != nil {
		return models.Image{}, err
	}
	defer img.Close()

	name := objectName(m.folder, img.Ext)
	if _, err := m.client.PutObject(ctx, m.bucket, name, img.Body, img.Size, minio.PutObjectOptions{
		ContentType: img.ContentType,
	}); err != nil {
		return models.Image{}, fmt.Errorf("put object: %w", err)
	}
	return models.Image{URL: m.baseURL + "/" + name, Filename: name}, nil
}

func (m *MinioStore) Delete(ctx context.Context, filename string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, filename, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}
