package s3

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/csvgo/snapshot"
)

// Client is the subset of the S3 API the store uses.
// *s3.Client satisfies it; tests substitute mocks.
type Client interface {
	manager.UploadAPIClient
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store implements snapshot.Store for a single S3 object.
type Store struct {
	client Client
	bucket string
	key    string
}

// NewStore creates an S3 snapshot store for bucket/key.
func NewStore(client Client, bucket, key string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		key:    key,
	}
}

// Name identifies the object in logs and errors.
func (s *Store) Name() string {
	return "s3://" + s.bucket + "/" + s.key
}

// ModTime returns the object's LastModified timestamp. A missing object
// satisfies errors.Is(err, snapshot.ErrNotExist).
func (s *Store) ModTime(ctx context.Context) (time.Time, error) {
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		if isNotFound(err) {
			return time.Time{}, snapshot.ErrNotExist
		}
		return time.Time{}, err
	}
	return aws.ToTime(head.LastModified), nil
}

// Open opens the object for reading.
func (s *Store) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, snapshot.ErrNotExist
		}
		return nil, err
	}
	return out.Body, nil
}

// Save streams the snapshot into the object. The write runs through an
// io.Pipe into a multipart uploader; a failed write aborts the upload so no
// partial object is installed.
func (s *Store) Save(ctx context.Context, write func(w io.Writer) error) error {
	pr, pw := io.Pipe()
	uploader := manager.NewUploader(s.client)
	done := make(chan error, 1)

	go func() {
		_, err := uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key),
			Body:   pr,
		})
		// Close the reader end of the pipe after upload completes/fails
		_ = pr.CloseWithError(err)
		done <- err
	}()

	if err := write(pw); err != nil {
		_ = pw.CloseWithError(err)
		<-done
		return err
	}
	if err := pw.Close(); err != nil {
		<-done
		return err
	}
	return <-done
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	return errors.As(err, &nsk)
}
