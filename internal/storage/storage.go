// Package storage provides the object store for product banner images.
//
// The contract mirrors a hosted bucket API: save bytes under a generated
// name, get back a public URL. Uploads always complete before the product
// row referencing them is written (see service.ProductService.Save), so a
// stored row never points at an image that was never uploaded.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// ObjectStore is the interface the product service uploads through.
type ObjectStore interface {
	// Save writes the object under name. Saving over an existing name
	// replaces it.
	Save(ctx context.Context, name string, r io.Reader) error

	// PublicURL returns the URL clients fetch the object from.
	PublicURL(name string) string
}

// ObjectName derives the stored name for an upload: the upload instant in
// unix milliseconds plus the original file's extension, e.g. "1756713600123.jpg".
func ObjectName(originalFilename string, now time.Time) string {
	ext := strings.TrimPrefix(filepath.Ext(originalFilename), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%d.%s", now.UnixMilli(), strings.ToLower(ext))
}
