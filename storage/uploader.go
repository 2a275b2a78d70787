package storage

import (
	"context"
	"errors"
	"io"
)

var ErrStorageDisabled = errors.New("file storage is not configured")

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// DisabledUploader is wired when no object storage credentials are configured.
// Uploads fail with ErrStorageDisabled and no public URLs are produced.
type DisabledUploader struct{}

func (DisabledUploader) Upload(context.Context, string, string, io.Reader) (*UploadResult, error) {
	return nil, ErrStorageDisabled
}

func (DisabledUploader) Delete(context.Context, string) error {
	return ErrStorageDisabled
}

func (DisabledUploader) GetPublicURL(string) string {
	return ""
}
