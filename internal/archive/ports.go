package archive

import (
	"context"
	"io"
)

type S3Client interface {
	PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}
