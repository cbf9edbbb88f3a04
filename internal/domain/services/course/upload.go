package course

import (
	"context"
	"io"
	"net/http"

	"coursehub/internal/domain/models"
	courseModels "coursehub/internal/domain/models/course"
)

// UploadInput is one binary asset to validate and store
type UploadInput struct {
	OriginalName string
	MimeType     string // Declared type; sniffed when empty or generic
	Body         io.Reader
	Owner        courseModels.FileOwner
}

// UploadService validates and stores binary assets. Client uploads and
// generated PDFs share it so the namespace, filenames and URL shape match.
type UploadService interface {
	Store(ctx context.Context, kind courseModels.UploadKind, in *UploadInput) (*courseModels.UploadedFile, error)

	// Delete removes a stored file by its generated filename. The actor must
	// manage the owning community or be the uploader.
	Delete(ctx context.Context, actor *models.Actor, filename string) error
}

// ObjectInfo is the metadata kept alongside a stored object
type ObjectInfo struct {
	ContentType string
	Owner       courseModels.FileOwner
}

// ObjectStore persists files under a flat namespace.
//
// Save must never leave a partial object behind: if reading r fails (including a
// size limit tripping) the store removes whatever it wrote and returns the error.
type ObjectStore interface {
	Save(ctx context.Context, name string, r io.Reader, info ObjectInfo) (int64, error)
	Delete(ctx context.Context, name string) error

	// Stat returns the metadata of a stored object, ErrNotFound if absent
	Stat(ctx context.Context, name string) (*ObjectInfo, error)

	// URL returns the public locator for name
	URL(name string) string

	// Handler serves stored objects; mounted at the public upload path
	Handler() http.Handler

	// Name returns the store name for logging
	Name() string
}
