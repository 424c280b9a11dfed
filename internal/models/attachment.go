package models

import "time"

// Attachment is the metadata row for a stored upload. Filename is the
// on-disk storage key, "<query_id>_<sanitized original name>", so the same
// original name uploaded twice to one query overwrites on disk while each
// upload still gets its own row.
type Attachment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	QueryID      uint      `gorm:"not null;index" json:"query_id"`
	Filename     string    `gorm:"not null" json:"filename"`
	OriginalName string    `json:"original_name"`
	UploadedByID uint      `gorm:"not null" json:"uploaded_by_id"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploaded_at"`

	UploadedBy User `gorm:"foreignKey:UploadedByID" json:"uploaded_by,omitempty"`
}
