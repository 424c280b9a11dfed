package models

// QueryStatus is the lifecycle state of a query. Statuses form a closed set;
// the lifecycle engine only moves between them through its transition table.
type QueryStatus string

const (
	StatusDraft             QueryStatus = "draft"
	StatusAssigned          QueryStatus = "assigned"
	StatusEmployeeSubmitted QueryStatus = "employee_submitted"
	StatusManagerApproved   QueryStatus = "manager_approved"
	StatusManagerRejected   QueryStatus = "manager_rejected"
	StatusClosed            QueryStatus = "closed"
	StatusReopened          QueryStatus = "reopened"
)

// Valid reports whether s is one of the known statuses.
func (s QueryStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusAssigned, StatusEmployeeSubmitted,
		StatusManagerApproved, StatusManagerRejected, StatusClosed, StatusReopened:
		return true
	}
	return false
}

// Query is the central workflow entity: raised by an auditor against the
// taxonomy, worked by an assigned employee, decided by a manager, and closed
// or reopened by the raising auditor.
//
// Exactly one of TemplateID/CustomText is expected to carry the substantive
// query text; this is a documented convention, not a database constraint.
type Query struct {
	Base
	CategoryID    uint   `gorm:"not null" json:"category_id"`
	SubCategoryID *uint  `json:"subcategory_id,omitempty"`
	TemplateID    *uint  `json:"template_id,omitempty"`
	CustomText    string `json:"custom_text,omitempty"`

	Status QueryStatus `gorm:"not null;default:draft" json:"status"`

	// Role slots. The bound user, not merely anyone holding the role, is
	// authorized for the corresponding transitions.
	AuditorID          uint  `gorm:"not null" json:"auditor_id"`
	AssignedEmployeeID *uint `json:"assigned_employee_id,omitempty"`
	ManagerID          *uint `json:"manager_id,omitempty"`

	Category    Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	SubCategory *SubCategory   `gorm:"foreignKey:SubCategoryID" json:"subcategory,omitempty"`
	Template    *QueryTemplate `gorm:"foreignKey:TemplateID" json:"template,omitempty"`

	// Owned child records; all cascade-delete with the query.
	Comments    []Comment    `gorm:"foreignKey:QueryID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Attachments []Attachment `gorm:"foreignKey:QueryID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
	AuditTrail  []AuditTrail `gorm:"foreignKey:QueryID;constraint:OnDelete:CASCADE" json:"audit_trail,omitempty"`
}
