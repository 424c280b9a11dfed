package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "querydesk/internal/errors"
	"querydesk/internal/services"
)

// TaxonomyHandler serves the category hierarchy and query templates.
type TaxonomyHandler struct {
	taxonomy services.TaxonomyServicer
}

// NewTaxonomyHandler creates a new TaxonomyHandler.
func NewTaxonomyHandler(taxonomy services.TaxonomyServicer) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomy: taxonomy}
}

// SubCategoryResponse is the shape consumed by the create-query form's
// dynamic subcategory picker.
type SubCategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ListCategories returns all categories.
// @Summary     List categories
// @Tags        taxonomy
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Category "Categories"
// @Router      /categories [get]
func (h *TaxonomyHandler) ListCategories(c *gin.Context) {
	categories, err := h.taxonomy.ListCategories()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListSubCategories returns the subcategories of one category as {id, name}
// pairs.
// @Summary     List subcategories
// @Description List the subcategories of a category, for dynamic form population
// @Tags        taxonomy
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Success     200 {array} SubCategoryResponse "Subcategories"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id}/subcategories [get]
func (h *TaxonomyHandler) ListSubCategories(c *gin.Context) {
	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	subs, err := h.taxonomy.ListSubCategories(categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := make([]SubCategoryResponse, 0, len(subs))
	for _, s := range subs {
		resp = append(resp, SubCategoryResponse{ID: s.ID, Name: s.Name})
	}
	c.JSON(http.StatusOK, resp)
}

// ListTemplates returns query templates, optionally filtered by category.
// @Summary     List query templates
// @Tags        taxonomy
// @Produce     json
// @Security    BearerAuth
// @Param       category_id query int false "Filter by category"
// @Success     200 {array} models.QueryTemplate "Templates"
// @Router      /templates [get]
func (h *TaxonomyHandler) ListTemplates(c *gin.Context) {
	var categoryID *uint
	if s := c.Query("category_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid category_id"))
			return
		}
		v := uint(id)
		categoryID = &v
	}

	templates, err := h.taxonomy.ListTemplates(categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}
