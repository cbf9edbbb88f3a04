package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"coursehub/internal/domain"
	courseModels "coursehub/internal/domain/models/course"
	courseSvc "coursehub/internal/domain/services/course"
	"coursehub/internal/httputil"
)

// multipartOverhead is allowed on top of the file limit for boundaries and headers
const multipartOverhead = 1 << 20

// UploadService is the upload surface the handler needs
type UploadService interface {
	courseSvc.UploadService

	// MaxBytes returns the size ceiling for kind, false for unknown kinds
	MaxBytes(kind courseModels.UploadKind) (int64, bool)
}

// UploadHandler handles binary asset uploads
type UploadHandler struct {
	uploadService UploadService
	logger        *slog.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadService UploadService, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		logger:        logger,
	}
}

// Upload stores one multipart file. The part is streamed straight to the
// store; nothing is buffered in memory or spilled to a multipart temp file.
// POST /api/upload/{kind}
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	kind := courseModels.UploadKind(r.PathValue("kind"))
	limit, ok := h.uploadService.MaxBytes(kind)
	if !ok {
		httputil.RespondError(w, http.StatusNotFound, fmt.Sprintf("unknown upload kind %q", kind))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	reader, err := r.MultipartReader()
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "expected multipart/form-data body")
		return
	}

	part, err := nextFilePart(reader, string(kind))
	if err != nil {
		h.respondReadError(w, err, limit)
		return
	}
	defer part.Close()

	file, err := h.uploadService.Store(r.Context(), kind, &courseSvc.UploadInput{
		OriginalName: part.FileName(),
		MimeType:     part.Header.Get("Content-Type"),
		Body:         part,
		Owner: courseModels.FileOwner{
			CommunityID: actor.CommunityID,
			UploadedBy:  actor.UserID,
		},
	})
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.respondReadError(w, err, limit)
			return
		}
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, file)
}

// DeleteUpload removes a stored file owned by the caller's community
// DELETE /api/upload/{filename}
func (h *UploadHandler) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.uploadService.Delete(r.Context(), actor, r.PathValue("filename")); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UploadHandler) respondReadError(w http.ResponseWriter, err error, limit int64) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		handleError(w, h.logger, &domain.PayloadTooLargeError{Limit: limit})
	case errors.Is(err, errNoFilePart):
		handleError(w, h.logger, &domain.ValidationError{
			Message: "invalid upload",
			Fields:  map[string]string{"file": "is required"},
		})
	default:
		httputil.RespondError(w, http.StatusBadRequest, "malformed multipart body")
	}
}

var errNoFilePart = errors.New("no file part")

// nextFilePart returns the first file part named "file" or after the upload kind.
// Other parts are skipped.
func nextFilePart(reader *multipart.Reader, kind string) (*multipart.Part, error) {
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, errNoFilePart
		}
		if err != nil {
			return nil, err
		}

		name := part.FormName()
		if (name == "file" || name == kind) && part.FileName() != "" {
			return part, nil
		}
		part.Close()
	}
}
