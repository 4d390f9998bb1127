package port

import (
	"context"
	"io"
)

// UploadInput describes a single object write: the original uploaded PDF or
// one of its page splits.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// UploadOutput is returned after a successful upload.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage abstracts the object store holding uploaded documents.
// Bucket is passed per call because job and record rows carry the bucket
// they were written to, which keeps old rows readable after the configured
// bucket changes.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
}
