package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"coursehub/internal/domain"
	courseModels "coursehub/internal/domain/models/course"
	courseSvc "coursehub/internal/domain/services/course"
)

// metaDirName holds one JSON sidecar per object. Hidden names are never served.
const metaDirName = ".meta"

// Local stores objects as files in a single directory
type Local struct {
	root       string
	metaDir    string
	publicPath string
}

// NewLocal creates the store, creating root if needed.
// publicPath is the URL prefix objects are served under, e.g. "/uploads/".
func NewLocal(root, publicPath string) (*Local, error) {
	metaDir := filepath.Join(root, metaDirName)
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Local{root: root, metaDir: metaDir, publicPath: publicPath}, nil
}

// localMeta is the sidecar format
type localMeta struct {
	ContentType string `json:"contentType"`
	Community   string `json:"community,omitempty"`
	UploadedBy  string `json:"uploadedBy,omitempty"`
}

// Name returns the store name for logging
func (l *Local) Name() string { return "local" }

// Save streams r into a temp file next to the target and renames it into
// place only after the copy succeeds.
func (l *Local) Save(ctx context.Context, name string, r io.Reader, info courseSvc.ObjectInfo) (int64, error) {
	if err := validName(name); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(l.root, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	discard := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	n, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: r})
	if err != nil {
		discard()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("chmod upload: %w", err)
	}
	if err := l.writeMeta(name, info); err != nil {
		os.Remove(tmpName)
		return 0, err
	}
	if err := os.Rename(tmpName, filepath.Join(l.root, name)); err != nil {
		os.Remove(tmpName)
		os.Remove(l.metaPath(name))
		return 0, fmt.Errorf("publish upload: %w", err)
	}

	return n, nil
}

// Stat reads the object's sidecar. An object stored without one reports no owner.
func (l *Local) Stat(ctx context.Context, name string) (*courseSvc.ObjectInfo, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(l.root, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file %s: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("stat upload: %w", err)
	}

	data, err := os.ReadFile(l.metaPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return &courseSvc.ObjectInfo{ContentType: contentTypeByName(name)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read upload metadata: %w", err)
	}

	var meta localMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode upload metadata: %w", err)
	}
	return &courseSvc.ObjectInfo{
		ContentType: meta.ContentType,
		Owner:       courseModels.FileOwner{CommunityID: meta.Community, UploadedBy: meta.UploadedBy},
	}, nil
}

func (l *Local) metaPath(name string) string {
	return filepath.Join(l.metaDir, name+".json")
}

func (l *Local) writeMeta(name string, info courseSvc.ObjectInfo) error {
	data, err := json.Marshal(localMeta{
		ContentType: info.ContentType,
		Community:   info.Owner.CommunityID,
		UploadedBy:  info.Owner.UploadedBy,
	})
	if err != nil {
		return fmt.Errorf("encode upload metadata: %w", err)
	}
	if err := os.WriteFile(l.metaPath(name), data, 0o644); err != nil {
		return fmt.Errorf("write upload metadata: %w", err)
	}
	return nil
}

// Delete removes a stored object
func (l *Local) Delete(ctx context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(l.root, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("file %s: %w", name, domain.ErrNotFound)
		}
		return fmt.Errorf("delete upload: %w", err)
	}
	if err := os.Remove(l.metaPath(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete upload metadata: %w", err)
	}
	return nil
}

// URL returns the public locator for name
func (l *Local) URL(name string) string {
	return l.publicPath + name
}

// Handler serves stored files. Expects the public prefix already stripped.
// Directory listings, metadata and in-flight temp files are never served.
// The Content-Type comes from the extension only; bodies are never sniffed.
func (l *Local) Handler() http.Handler {
	files := http.FileServer(http.Dir(l.root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if validName(name) != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentTypeByName(name))
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}

func contentTypeByName(name string) string {
	if ctype := mime.TypeByExtension(filepath.Ext(name)); ctype != "" {
		return ctype
	}
	return "application/octet-stream"
}
