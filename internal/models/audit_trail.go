package models

import "time"

// AuditAction tags a ledger entry with what happened. The vocabulary is
// fixed; detail strings carry the human-readable specifics.
type AuditAction string

const (
	ActionCreated           AuditAction = "created"
	ActionAssigned          AuditAction = "assigned"
	ActionEmployeeSubmitted AuditAction = "employee_submitted"
	ActionManagerApproved   AuditAction = "manager_approved"
	ActionManagerRejected   AuditAction = "manager_rejected"
	ActionClosed            AuditAction = "closed"
	ActionReopened          AuditAction = "reopened"
	ActionComment           AuditAction = "comment"
	ActionFileUpload        AuditAction = "file_upload"
)

// AuditTrail is one entry in a query's append-only ledger. Entries are never
// mutated or deleted in normal operation; the offline backfill tool is the
// single sanctioned exception, and it only appends name information to the
// detail text. Insertion order is chronological order.
type AuditTrail struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	QueryID   uint        `gorm:"not null;index" json:"query_id"`
	Action    AuditAction `gorm:"not null" json:"action"`
	Detail    string      `json:"detail"`
	UserID    *uint       `json:"user_id,omitempty"`
	TargetID  *uint       `gorm:"column:target_user_id" json:"target_user_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`

	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Target *User `gorm:"foreignKey:TargetID" json:"target_user,omitempty"`
}
