package application

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
)

// DefaultFolder is the object key prefix used when none is configured.
const DefaultFolder = "pcb_uploads"

// RelayConfig provides dependencies for NewRelay.
type RelayConfig struct {
	Store  ObjectStore
	Policy domain.FilePolicy
	Folder string
}

type relay struct {
	store  ObjectStore
	policy domain.FilePolicy
	folder string
}

// NewRelay returns a FileRelay that writes under Folder with a random object name.
func NewRelay(cfg RelayConfig) FileRelay {
	folder := strings.Trim(strings.TrimSpace(cfg.Folder), "/")
	if folder == "" {
		folder = DefaultFolder
	}
	return &relay{store: cfg.Store, policy: cfg.Policy, folder: folder}
}

func (r *relay) Relay(ctx context.Context, upload *Upload) (domain.FileRef, error) {
	if upload == nil || upload.Body == nil || upload.Size <= 0 {
		return domain.FileRef{}, domain.ErrMissingFile
	}
	if err := r.policy.Check(upload.ContentType); err != nil {
		return domain.FileRef{}, err
	}

	key := ObjectKey(r.folder, upload.FileName)
	url, err := r.store.Put(ctx, key, upload.Body, upload.Size, domain.NormalizeContentType(upload.ContentType))
	if err != nil {
		return domain.FileRef{}, &domain.RelayError{Err: err}
	}
	return domain.FileRef{URL: url, CanonicalName: key}, nil
}

// ObjectKey builds "<folder>/<uuid><ext>"; only the extension of the user's file name is kept.
func ObjectKey(folder, fileName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(strings.TrimSpace(fileName))))
	if len(ext) > 16 || strings.ContainsAny(ext, " /\\") {
		ext = ""
	}
	return path.Join(folder, uuid.NewString()+ext)
}
