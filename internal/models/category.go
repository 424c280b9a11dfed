package models

// Category is a top-level grouping queries are raised against.
type Category struct {
	Base
	Name string `gorm:"uniqueIndex;not null" json:"name"`

	SubCategories []SubCategory `gorm:"foreignKey:CategoryID" json:"subcategories,omitempty"`
}

// SubCategory belongs to exactly one Category. Names are unique within the
// parent category.
type SubCategory struct {
	Base
	Name       string `gorm:"not null;uniqueIndex:idx_subcategory_name_category" json:"name"`
	CategoryID uint   `gorm:"not null;uniqueIndex:idx_subcategory_name_category" json:"category_id"`
}

// QueryTemplate is canned query text belonging to a category and optionally
// one of its subcategories.
type QueryTemplate struct {
	Base
	CategoryID    uint   `gorm:"not null" json:"category_id"`
	SubCategoryID *uint  `json:"subcategory_id,omitempty"`
	Text          string `gorm:"not null" json:"text"`
}
