// Package attach exposes the local on-disk attachment cache. The cache
// is populated by the mail fetcher; this engine only reads from it.
package attach

import (
	"os"
	"path/filepath"

	"github.com/dkoval/mailshare/internal/filex"
	"github.com/dkoval/mailshare/internal/models"
)

// Cache reads attachment payloads from a local directory laid out as
// <root>/<attachment-id>/<filename>.
type Cache struct {
	root string
}

func NewCache(root string) (*Cache, error) {
	dir, err := filex.EnsureDir(root)
	if err != nil {
		return nil, err
	}
	return &Cache{root: dir}, nil
}

// PathFor returns the local path an attachment's bytes live at.
func (c *Cache) PathFor(att models.Attachment) string {
	return filepath.Join(c.root, att.ID, att.Name)
}

// Read returns the raw payload of the attachment. A missing file is an
// error; an existing empty file reads as zero bytes, which the uploader
// treats as unavailable.
func (c *Cache) Read(att models.Attachment) ([]byte, error) {
	return os.ReadFile(c.PathFor(att))
}
