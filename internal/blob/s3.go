package blob

import (
	"bytes"
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var _ Bucket = (*S3Bucket)(nil)

// S3Bucket stores objects in an S3-compatible endpoint via minio.
// Selected when S3_ENDPOINT is configured.
type S3Bucket struct {
	client *minio.Client
	bucket string
}

func NewS3Bucket(endpoint, accessKey, secretKey, bucket string) (*S3Bucket, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}
	return &S3Bucket{client: client, bucket: bucket}, nil
}

func (b *S3Bucket) Put(ctx context.Context, key string, data []byte) error {
	_, err := b.client.PutObject(
		ctx,
		b.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "text/csv"},
	)
	return err
}

func (b *S3Bucket) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, b.mapNotFound(key, err)
	}
	return data, nil
}

func (b *S3Bucket) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	// GetObject is lazy; probe with Stat so a missing key surfaces here
	// instead of on the first read.
	if _, err := b.client.StatObject(ctx, b.bucket, key, minio.StatObjectOptions{}); err != nil {
		return nil, b.mapNotFound(key, err)
	}

	obj, err := b.client.GetObject(ctx, b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (b *S3Bucket) List(ctx context.Context) ([]string, error) {
	var keys []string
	for object := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return nil, object.Err
		}
		keys = append(keys, object.Key)
	}
	return keys, nil
}

func (b *S3Bucket) mapNotFound(key string, err error) error {
	if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
		return &NotFoundError{Key: key}
	}
	return err
}
