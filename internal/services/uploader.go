package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"liftassist-backend/internal/assistant"
	logx "liftassist-backend/pkg/logger"
)

// Uploader forwards client file uploads to the remote file store so they can
// be attached to thread messages.
type Uploader struct {
	client *assistant.Client
}

func NewUploader(client *assistant.Client) *Uploader {
	return &Uploader{client: client}
}

// UploadAll forwards every file and returns the remote ids in input order.
// The first failure aborts with the offending filename in the error.
func (u *Uploader) UploadAll(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	fileIDs := make([]string, 0, len(files))
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", header.Filename, err)
		}
		fileID, err := u.client.UploadFile(ctx, header.Filename, f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to upload %s: %w", header.Filename, err)
		}
		logx.Debug().Str("filename", header.Filename).Str("file_id", fileID).Msg("file forwarded to remote store")
		fileIDs = append(fileIDs, fileID)
	}
	return fileIDs, nil
}
