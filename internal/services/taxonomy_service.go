package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "querydesk/internal/errors"
	"querydesk/internal/models"
)

// taxonomyService exposes the category hierarchy and query templates.
// The taxonomy is reference data maintained by the seed tool, so the service
// is read-only.
type taxonomyService struct {
	db *gorm.DB
}

// NewTaxonomyService creates a new TaxonomyServicer.
func NewTaxonomyService(db *gorm.DB) TaxonomyServicer {
	return &taxonomyService{db: db}
}

// ListCategories returns all categories ordered by name.
func (s *taxonomyService) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetCategoryByID retrieves a category by ID.
func (s *taxonomyService) GetCategoryByID(id uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// ListSubCategories returns the subcategories of a category, ordered by name.
// Used for dynamic form population on the create-query form.
func (s *taxonomyService) ListSubCategories(categoryID uint) ([]models.SubCategory, error) {
	if _, err := s.GetCategoryByID(categoryID); err != nil {
		return nil, err
	}

	var subs []models.SubCategory
	if err := s.db.Where("category_id = ?", categoryID).
		Order("name ASC").
		Find(&subs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return subs, nil
}

// ListTemplates returns query templates, optionally filtered to one category.
func (s *taxonomyService) ListTemplates(categoryID *uint) ([]models.QueryTemplate, error) {
	q := s.db.Model(&models.QueryTemplate{})
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}

	var templates []models.QueryTemplate
	if err := q.Order("id ASC").Find(&templates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return templates, nil
}

// GetTemplateByID retrieves a query template by ID.
func (s *taxonomyService) GetTemplateByID(id uint) (*models.QueryTemplate, error) {
	var tpl models.QueryTemplate
	if err := s.db.First(&tpl, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTemplateNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tpl, nil
}
