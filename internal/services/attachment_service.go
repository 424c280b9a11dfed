package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "querydesk/internal/errors"
	"querydesk/internal/models"
	"querydesk/internal/sanitize"
	"querydesk/internal/storage"
)

// attachmentService enforces the upload allow-list and keeps the metadata
// rows in step with the byte store.
type attachmentService struct {
	db         *gorm.DB
	store      *storage.LocalStore
	allowedExt map[string]bool
}

// NewAttachmentService creates a new AttachmentServicer over the given byte
// store and extension allow-list (lowercase, without dots).
func NewAttachmentService(db *gorm.DB, store *storage.LocalStore, allowedExt map[string]bool) AttachmentServicer {
	return &attachmentService{db: db, store: store, allowedExt: allowedExt}
}

// Save stores one upload for a query. The storage key is derived
// deterministically from the query ID and the sanitized original name, so
// re-uploading the same name to the same query overwrites the bytes while
// each call still creates its own metadata row.
//
// The metadata row is written on the caller's transaction handle; the byte
// write is not transactional, so a file-store failure surfaces as a
// StorageError and the caller must roll the transition back.
func (s *attachmentService) Save(tx *gorm.DB, queryID, uploaderID uint, originalName string, data []byte) (*models.Attachment, error) {
	clean := sanitize.Filename(originalName)
	if clean == "" || !s.allowedExt[sanitize.Ext(clean)] {
		return nil, apperrors.WithMessage(apperrors.ErrUnsupportedFileType,
			fmt.Sprintf("file type of %q is not allowed", originalName))
	}

	key := fmt.Sprintf("%d_%s", queryID, clean)
	if err := s.store.Save(key, data); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	att := &models.Attachment{
		QueryID:      queryID,
		Filename:     key,
		OriginalName: clean,
		UploadedByID: uploaderID,
	}
	if err := tx.Create(att).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return att, nil
}

// GetByFilename retrieves the metadata row for a storage key.
func (s *attachmentService) GetByFilename(filename string) (*models.Attachment, error) {
	var att models.Attachment
	if err := s.db.Where("filename = ?", filename).First(&att).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAttachmentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &att, nil
}

// Open returns the stored bytes for a metadata row the caller already looked
// up. Any authenticated user may download any attachment; restricting
// downloads to query participants is a known gap preserved from the system
// this replaces.
func (s *attachmentService) Open(att *models.Attachment) ([]byte, error) {
	data, err := s.store.Read(att.Filename)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAttachmentNotFound, err)
	}
	return data, nil
}
