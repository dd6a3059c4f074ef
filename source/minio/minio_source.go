package minio

import (
	"context"
	"io"
	"time"

	"github.com/hupe1980/csvgo/source"
	"github.com/minio/minio-go/v7"
)

// ErrNotFound is returned when the object does not exist.
var ErrNotFound = source.ErrNotFound

// Source reads a table stored as a single MinIO object.
type Source struct {
	client *minio.Client
	bucket string
	key    string
}

// NewSource creates a MinIO source for bucket/key.
func NewSource(client *minio.Client, bucket, key string) *Source {
	return &Source{
		client: client,
		bucket: bucket,
		key:    key,
	}
}

// Name identifies the object in logs and errors.
func (s *Source) Name() string {
	return "minio://" + s.bucket + "/" + s.key
}

// OpenRead streams the whole object. MinIO opens lazily; a missing object
// surfaces on the first read.
func (s *Source) OpenRead(ctx context.Context) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// ReadFrom streams the object from offset via a ranged GET.
func (s *Source) ReadFrom(ctx context.Context, offset int64) (io.ReadCloser, error) {
	opts := minio.GetObjectOptions{}
	if offset > 0 {
		// SetRange(offset, 0) requests "bytes=offset-"; offset 0 must skip
		// the header or the request collapses to "bytes=0-0".
		if err := opts.SetRange(offset, 0); err != nil {
			return nil, err
		}
	}
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// ModTime returns the object's LastModified timestamp.
func (s *Source) ModTime(ctx context.Context) (time.Time, error) {
	info, err := s.client.StatObject(ctx, s.bucket, s.key, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, err
	}
	return info.LastModified, nil
}
