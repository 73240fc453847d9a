package source

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Options holds the connection settings for S3-compatible storage
type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// S3Fetcher reads the listing from an object in S3-compatible storage
type S3Fetcher struct {
	client *minio.Client
	bucket string
	key    string
}

// NewS3 creates an S3Fetcher for bucket/key
func NewS3(opts S3Options, bucket, key string) (*S3Fetcher, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("missing S3 endpoint (MINIO_ENDPOINT)")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating S3 client: %w", err)
	}

	return &S3Fetcher{client: client, bucket: bucket, key: key}, nil
}

// Fetch downloads the object
func (f *S3Fetcher) Fetch(ctx context.Context) (*Document, error) {
	object, err := f.client.GetObject(ctx, f.bucket, f.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("getting object: %w", err)
	}
	defer object.Close()

	info, err := object.Stat()
	if err != nil {
		return nil, fmt.Errorf("getting object: %w", err)
	}

	body, err := readDocument(object, maxDocumentSize)
	if err != nil {
		return nil, fmt.Errorf("reading object: %w", err)
	}

	contentType := info.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeForPath(f.key)
	}

	return &Document{
		Body:        body,
		ContentType: contentType,
		Location:    f.String(),
	}, nil
}

func (f *S3Fetcher) String() string {
	return fmt.Sprintf("s3://%s/%s", f.bucket, f.key)
}
