package models

// Comment is free-text discussion on a query, immutable after creation.
type Comment struct {
	Base
	QueryID uint   `gorm:"not null;index" json:"query_id"`
	UserID  uint   `gorm:"not null" json:"user_id"`
	Content string `gorm:"not null" json:"content"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
