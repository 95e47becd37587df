package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// compile-time check that *DiskStore implements ObjectStore
var _ ObjectStore = (*DiskStore)(nil)

// DiskStore keeps objects as plain files under a root directory that the
// server exposes at a public URL prefix (e.g. /uploads/). One directory, flat
// namespace: object names are generated and never contain separators.
type DiskStore struct {
	root      string
	urlPrefix string
}

// NewDiskStore creates the root directory if needed and returns a store
// whose PublicURL values live under urlPrefix.
func NewDiskStore(root, urlPrefix string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating uploads dir %s: %w", root, err)
	}
	return &DiskStore{
		root:      root,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}, nil
}

// Save streams the object to a temp file in the same directory and renames
// it into place, so a crashed upload never leaves a half-written object
// under a public name.
func (s *DiskStore) Save(ctx context.Context, name string, r io.Reader) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("storage: saving %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return fmt.Errorf("storage: creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("storage: writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: closing %s: %w", name, err)
	}

	if err := os.Rename(tmpName, filepath.Join(s.root, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: placing %s: %w", name, err)
	}

	return nil
}

// PublicURL returns the path the saved object is served from.
func (s *DiskStore) PublicURL(name string) string {
	return s.urlPrefix + "/" + name
}

// Root returns the directory objects are stored in; the server mounts a file
// server on it.
func (s *DiskStore) Root() string {
	return s.root
}

// validName rejects names that could escape the root directory. Generated
// names never trip this; it guards against a future caller passing
// user-controlled input.
func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("storage: invalid object name %q", name)
	}
	return nil
}
