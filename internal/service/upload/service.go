package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"coursehub/internal/domain"
	"coursehub/internal/domain/models"
	"coursehub/internal/domain/services"
	courseModels "coursehub/internal/domain/models/course"
	courseSvc "coursehub/internal/domain/services/course"

	"github.com/gabriel-vasile/mimetype"
)

// sniffBytes is how much of the body is read to detect its type
const sniffBytes = 3072

const genericMimeType = "application/octet-stream"

// errTooLarge is raised by limitedReader once the limit is crossed
var errTooLarge = errors.New("upload exceeds size limit")

// Service validates uploads against the policy and persists them through an
// ObjectStore. Implements courseSvc.UploadService.
type Service struct {
	store      courseSvc.ObjectStore
	policy     Policy
	authorizer services.TenantAuthorizer
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates an upload service
func NewService(store courseSvc.ObjectStore, policy Policy, authorizer services.TenantAuthorizer, logger *slog.Logger) *Service {
	return &Service{
		store:      store,
		policy:     policy,
		authorizer: authorizer,
		logger:     logger,
		now:        time.Now,
	}
}

// MaxBytes returns the size ceiling for kind, false for unknown kinds
func (s *Service) MaxBytes(kind courseModels.UploadKind) (int64, bool) {
	rules, ok := s.policy.For(kind)
	return rules.MaxBytes, ok
}

// Store validates and saves one file.
//
// The type is checked before anything is written. The size is enforced while
// streaming, and the store discards a partial write, so a rejected upload
// leaves nothing behind.
func (s *Service) Store(ctx context.Context, kind courseModels.UploadKind, in *courseSvc.UploadInput) (*courseModels.UploadedFile, error) {
	rules, ok := s.policy.For(kind)
	if !ok {
		return nil, &domain.ValidationError{
			Message: "unknown upload kind",
			Fields:  map[string]string{"kind": fmt.Sprintf("must be one of %s", strings.Join(s.policy.Kinds(), ", "))},
		}
	}

	body := in.Body
	mimeType := normalizeMimeType(in.MimeType)
	if mimeType == "" || mimeType == genericMimeType {
		head := make([]byte, sniffBytes)
		n, err := io.ReadFull(body, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		head = head[:n]
		mimeType = normalizeMimeType(mimetype.Detect(head).String())
		body = io.MultiReader(bytes.NewReader(head), body)
	}

	if !rules.Allows(mimeType) {
		return nil, &domain.UnsupportedMediaTypeError{MimeType: mimeType, Allowed: rules.AllowedTypes}
	}

	filename, err := generateFilename(s.now(), extensionFor(in.OriginalName, mimeType))
	if err != nil {
		return nil, err
	}

	size, err := s.store.Save(ctx, filename, &limitedReader{r: body, remaining: rules.MaxBytes}, courseSvc.ObjectInfo{
		ContentType: mimeType,
		Owner:       in.Owner,
	})
	if err != nil {
		if errors.Is(err, errTooLarge) {
			return nil, &domain.PayloadTooLargeError{Limit: rules.MaxBytes}
		}
		return nil, fmt.Errorf("save upload: %w", err)
	}

	if size == 0 {
		if err := s.store.Delete(ctx, filename); err != nil {
			s.logger.Warn("failed to remove empty upload", "filename", filename, "error", err)
		}
		return nil, &domain.ValidationError{
			Message: "invalid upload",
			Fields:  map[string]string{"file": "is empty"},
		}
	}

	file := &courseModels.UploadedFile{
		Filename:     filename,
		OriginalName: filepath.Base(in.OriginalName),
		Size:         size,
		MimeType:     mimeType,
		URL:          s.store.URL(filename),
	}

	s.logger.Info("file uploaded",
		"kind", kind,
		"filename", filename,
		"original_name", file.OriginalName,
		"size", size,
		"mime_type", mimeType,
		"community_id", in.Owner.CommunityID,
		"store", s.store.Name(),
	)

	return file, nil
}

// Delete removes a stored file by its generated name. Files owned by a
// community can be removed by anyone managing it; files stored without a
// community only by their uploader.
func (s *Service) Delete(ctx context.Context, actor *models.Actor, filename string) error {
	if !IsStoredFilename(filename) {
		return &domain.ValidationError{
			Message: "invalid filename",
			Fields:  map[string]string{"filename": "not a stored upload name"},
		}
	}

	info, err := s.store.Stat(ctx, filename)
	if err != nil {
		return err
	}
	if err := s.canDelete(ctx, actor, info.Owner); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, filename); err != nil {
		return err
	}

	s.logger.Info("file deleted",
		"filename", filename,
		"user_id", actor.UserID,
		"community_id", info.Owner.CommunityID,
		"store", s.store.Name(),
	)
	return nil
}

func (s *Service) canDelete(ctx context.Context, actor *models.Actor, owner courseModels.FileOwner) error {
	if actor == nil || actor.UserID == "" {
		return &domain.UnauthorizedError{Message: "authentication required"}
	}
	if owner.CommunityID != "" {
		return s.authorizer.CanManageCommunity(ctx, actor, owner.CommunityID)
	}
	if owner.UploadedBy != "" && owner.UploadedBy == actor.UserID {
		return nil
	}
	return fmt.Errorf("file not uploaded by %s: %w", actor.UserID, domain.ErrForbidden)
}

// normalizeMimeType lowercases and drops parameters ("text/plain; charset=utf-8")
func normalizeMimeType(t string) string {
	if t == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(t))
}

// limitedReader fails with errTooLarge once more than remaining bytes are read.
// Unlike io.LimitReader it reports the overrun instead of truncating silently.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, errTooLarge
	}
	// Allow one byte past the limit so an exact-size body still reaches EOF
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, errTooLarge
	}
	return n, err
}
