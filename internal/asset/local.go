package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/simp-lee/touradmin/internal/domain"
)

// LocalStore keeps blobs as files under a directory and serves them from a
// base URL.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates the directory if needed and returns a LocalStore.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the directory blobs are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Upload writes data to a new file named after a random id.
func (s *LocalStore) Upload(ctx context.Context, data io.Reader, contentType string) (domain.BlobRef, error) {
	if err := ctx.Err(); err != nil {
		return domain.BlobRef{}, err
	}

	name := uuid.NewString() + extensionFor(contentType)
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return domain.BlobRef{}, fmt.Errorf("create blob: %w", err)
	}
	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return domain.BlobRef{}, fmt.Errorf("write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return domain.BlobRef{}, fmt.Errorf("close blob: %w", err)
	}

	return domain.BlobRef{URL: s.baseURL + "/" + name, ProviderID: name}, nil
}

// Delete removes the blob. A blob that is already gone is not an error.
func (s *LocalStore) Delete(ctx context.Context, providerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if providerID == "" || providerID != filepath.Base(providerID) {
		return fmt.Errorf("invalid blob id %q", providerID)
	}
	err := os.Remove(filepath.Join(s.dir, providerID))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
		return exts[0]
	}
	return ""
}
