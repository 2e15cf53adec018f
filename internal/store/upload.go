package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dmorgan81/falbot/internal/log"
)

type UploadParams struct {
	Name        string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type Uploader interface {
	Upload(context.Context, UploadParams) error
}

// FileUploader writes to the local path in params.Name, creating parent
// directories as needed. MkdirAll tolerates concurrent callers.
type FileUploader struct{}

func (*FileUploader) Upload(ctx context.Context, params UploadParams) error {
	log := log.FromContextOrDiscard(ctx).WithGroup("file")
	dir := filepath.Dir(params.Name)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		log.Info("created directory", "dir", dir)
	}
	log.Info("writing", "file", params.Name, "bytes", len(params.Data))
	return os.WriteFile(params.Name, params.Data, 0o644)
}
