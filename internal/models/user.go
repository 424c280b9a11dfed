package models

// Role identifies what part a user plays in the query workflow. Roles are a
// closed set and immutable for the lifetime of a session.
type Role string

const (
	RoleAuditor  Role = "auditor"
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAuditor, RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// User represents an account in the identity store. Users are created by
// admin action or the seed tool and never deleted automatically.
type User struct {
	Base
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         Role   `gorm:"not null" json:"role"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`

	RefreshTokenHash string `gorm:"size:64" json:"-"`
}

// DisplayName returns the full name when present, otherwise the username.
// Ledger detail strings use this form.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
