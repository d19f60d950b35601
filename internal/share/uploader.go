package share

import (
	"context"
	"fmt"

	"github.com/dkoval/mailshare/internal/common"
	"github.com/dkoval/mailshare/internal/logging"
	"github.com/dkoval/mailshare/internal/models"
)

// AttachmentReader reads attachment payloads from the local cache.
type AttachmentReader interface {
	Read(att models.Attachment) ([]byte, error)
}

// RemoteAPI posts a blob to the object store and returns its public URL.
type RemoteAPI interface {
	PostAsset(ctx context.Context, filename string, blob []byte) (string, error)
}

// Uploader publishes attachments exactly once, memoized by the
// conversation's FileURLs map.
type Uploader struct {
	files  AttachmentReader
	remote RemoteAPI
	logger logging.Logger
}

func NewUploader(files AttachmentReader, remote RemoteAPI, logger logging.Logger) *Uploader {
	return &Uploader{files: files, remote: remote, logger: logger}
}

// EnsureUploaded returns the URL the attachment is published at,
// uploading it first unless uploaded already contains a mapping for it.
// A missing or empty local payload yields common.ErrAssetUnavailable,
// which the pipeline treats as skip-and-continue.
func (u *Uploader) EnsureUploaded(ctx context.Context, att models.Attachment, uploaded map[string]string) (string, error) {
	if url, ok := uploaded[att.ID]; ok {
		return url, nil
	}

	data, err := u.files.Read(att)
	if err != nil {
		return "", fmt.Errorf("read attachment %s: %v: %w", att.ID, err, common.ErrAssetUnavailable)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("attachment %s is empty: %w", att.ID, common.ErrAssetUnavailable)
	}

	url, err := u.remote.PostAsset(ctx, att.ID+"/"+att.Name, data)
	if err != nil {
		return "", fmt.Errorf("upload attachment %s: %w", att.ID, err)
	}

	u.logger.Debug(ctx, "attachment uploaded", "attachment", att.ID, "name", att.Name)
	return url, nil
}
