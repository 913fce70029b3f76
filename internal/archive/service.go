// Package archive keeps a copy of uploaded audio in object storage.
package archive

import (
	"bytes"
	"context"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var audioTypes = map[string]string{
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".wav":  "audio/wav",
	".flac": "audio/flac",
}

type Service struct {
	s3  S3Client
	now func() time.Time
}

func NewService(s3 S3Client) *Service {
	return &Service{s3: s3, now: time.Now}
}

// Save stores audio under audio/<date>/<uuid><ext> and returns its URL.
func (s *Service) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		ext = ".webm"
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = audioTypes[ext]
		if contentType == "" {
			contentType = "application/octet-stream"
		}
	}

	key := ObjectKey(s.now(), uuid.NewString(), ext)
	return s.s3.PutObject(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
}

func ObjectKey(at time.Time, id, ext string) string {
	return "audio/" + at.UTC().Format("2006-01-02") + "/" + id + ext
}
