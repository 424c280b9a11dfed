package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"querydesk/internal/config"
	apperrors "querydesk/internal/errors"
	"querydesk/internal/models"
	"querydesk/internal/pagination"
	"querydesk/internal/services"
)

// QueryHandler exposes the lifecycle engine's transitions over HTTP.
type QueryHandler struct {
	queries     services.QueryServicer
	attachments services.AttachmentServicer
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(queries services.QueryServicer, attachments services.AttachmentServicer) *QueryHandler {
	return &QueryHandler{queries: queries, attachments: attachments}
}

// CreateQueryRequest is the multipart form for raising a query. Files ride
// in the "attachments" field.
type CreateQueryRequest struct {
	CategoryID         uint   `form:"category_id" binding:"required"`
	SubCategoryID      *uint  `form:"subcategory_id"`
	TemplateID         *uint  `form:"template_id"`
	CustomText         string `form:"custom_text"`
	AssignedEmployeeID *uint  `form:"assigned_employee_id"`
}

// AssignEmployeeRequest is the payload for binding an employee to a query.
type AssignEmployeeRequest struct {
	EmployeeID uint `json:"employee_id" binding:"required"`
}

// EmployeeSubmitRequest is the multipart form for routing a query to a
// manager.
type EmployeeSubmitRequest struct {
	ManagerID *uint `form:"manager_id"`
}

// ManagerDecideRequest is the payload for a manager's verdict.
type ManagerDecideRequest struct {
	Decision string `json:"decision" binding:"required,manager_decision"`
}

// AddCommentRequest is the payload for commenting on a query.
type AddCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// ListDashboard returns the queries visible to the authenticated user.
// @Summary     Dashboard
// @Description List queries for the authenticated user: auditors see ones they raised, employees ones assigned to them, managers ones routed to them
// @Tags        queries
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Query] "Queries"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /queries [get]
func (h *QueryHandler) ListDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	role, err := getUserRole(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.queries.ListDashboard(userID, role, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateQuery raises a new query, optionally assigning an employee and
// attaching files.
// @Summary     Create a query
// @Description Raise a query against a category; auditors only. Multipart form; attachments go in the "attachments" file field
// @Tags        queries
// @Accept      mpfd
// @Produce     json
// @Security    BearerAuth
// @Param       category_id formData int true "Category ID"
// @Param       subcategory_id formData int false "Subcategory ID"
// @Param       template_id formData int false "Template ID"
// @Param       custom_text formData string false "Custom query text"
// @Param       assigned_employee_id formData int false "Employee to assign"
// @Success     201 {object} models.Query "Query created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Not an auditor"
// @Failure     404 {object} ErrorResponse "Category or employee not found"
// @Router      /queries [post]
func (h *QueryHandler) CreateQuery(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateQueryRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	uploads, err := readUploads(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	query, err := h.queries.CreateQuery(userID, services.CreateQueryInput{
		CategoryID:         req.CategoryID,
		SubCategoryID:      req.SubCategoryID,
		TemplateID:         req.TemplateID,
		CustomText:         req.CustomText,
		AssignedEmployeeID: req.AssignedEmployeeID,
		Uploads:            uploads,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"query": query})
}

// GetQuery returns a query with its comments, attachments, and ledger.
// @Summary     Get query detail
// @Tags        queries
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Query ID"
// @Success     200 {object} models.Query "Query with history"
// @Failure     404 {object} ErrorResponse "Query not found"
// @Router      /queries/{id} [get]
func (h *QueryHandler) GetQuery(c *gin.Context) {
	queryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	query, err := h.queries.GetQuery(queryID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query})
}

// AssignEmployee binds an employee to the query.
// @Summary     Assign an employee
// @Description Bind an employee to the query; restricted to the auditor who raised it
// @Tags        queries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Query ID"
// @Param       request body AssignEmployeeRequest true "Employee"
// @Success     200 {object} models.Query "Updated query"
// @Failure     403 {object} ErrorResponse "Not the query's auditor"
// @Failure     404 {object} ErrorResponse "Query or employee not found"
// @Failure     409 {object} ErrorResponse "Status does not permit assignment"
// @Router      /queries/{id}/assign [post]
func (h *QueryHandler) AssignEmployee(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	queryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AssignEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	query, err := h.queries.AssignEmployee(queryID, userID, req.EmployeeID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query})
}

// EmployeeSubmit routes the query to a manager, optionally with attachments.
// @Summary     Submit to manager
// @Description Route the query to a manager; restricted to the assigned employee. Multipart form; attachments go in the "attachments" file field
// @Tags        queries
// @Accept      mpfd
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Query ID"
// @Param       manager_id formData int false "Manager to route to"
// @Success     200 {object} models.Query "Updated query"
// @Failure     403 {object} ErrorResponse "Not the assigned employee"
// @Failure     409 {object} ErrorResponse "Status does not permit submission"
// @Router      /queries/{id}/submit [post]
func (h *QueryHandler) EmployeeSubmit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	queryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req EmployeeSubmitRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	uploads, err := readUploads(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	query, err := h.queries.EmployeeSubmit(queryID, userID, req.ManagerID, uploads)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query})
}

// ManagerDecide records an approve/reject verdict.
// @Summary     Decide on a submission
// @Description Approve or reject the submission; restricted to the routed manager
// @Tags        queries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Query ID"
// @Param       request body ManagerDecideRequest true "Decision"
// @Success     200 {object} models.Query "Updated query"
// @Failure     403 {object} ErrorResponse "Not the routed manager"
// @Failure     409 {object} ErrorResponse "Status does not permit a decision"
// @Router      /queries/{id}/decide [post]
func (h *QueryHandler) ManagerDecide(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	queryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ManagerDecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	query, err := h.queries.ManagerDecide(queryID, userID, services.Decision(req.Decision))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query})
}

// Close closes the query.
// @Summary     Close a query
// @Tags        queries
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Query ID"
// @Success     200 {object} models.Query "Closed query"
// @Failure     403 {object} ErrorResponse "Not the query's auditor"
// @Router      /queries/{id}/close [post]
func (h *QueryHandler) Close(c *gin.Context) {
	h.auditorAction(c, h.queries.AuditorClose)
}

// Reopen re-admits a closed query to the active cycle.
// @Summary     Reopen a query
// @Tags        queries
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Query ID"
// @Success     200 {object} models.Query "Reopened query"
// @Failure     403 {object} ErrorResponse "Not the query's auditor"
// @Failure     409 {object} ErrorResponse "Query is not closed"
// @Router      /queries/{id}/reopen [post]
func (h *QueryHandler) Reopen(c *gin.Context) {
	h.auditorAction(c, h.queries.AuditorReopen)
}

// AddComment records a comment from any authenticated user.
// @Summary     Comment on a query
// @Tags        queries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Query ID"
// @Param       request body AddCommentRequest true "Comment"
// @Success     201 {object} models.Comment "Comment created"
// @Failure     400 {object} ErrorResponse "Empty content"
// @Failure     404 {object} ErrorResponse "Query not found"
// @Router      /queries/{id}/comments [post]
func (h *QueryHandler) AddComment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	queryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	comment, err := h.queries.AddComment(queryID, userID, req.Content)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// DownloadAttachment streams a stored file by its storage key. Any
// authenticated user may download any attachment; this mirrors the system
// this replaces and is a known access-control gap.
// @Summary     Download an attachment
// @Tags        queries
// @Produce     octet-stream
// @Security    BearerAuth
// @Param       filename path string true "Storage filename"
// @Success     200 {file} binary "File content"
// @Failure     404 {object} ErrorResponse "Attachment not found"
// @Router      /uploads/{filename} [get]
func (h *QueryHandler) DownloadAttachment(c *gin.Context) {
	filename := c.Param("filename")

	att, err := h.attachments.GetByFilename(filename)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, err := h.attachments.Open(att)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+att.OriginalName+`"`)
	c.Data(http.StatusOK, "application/octet-stream", data)
}

func (h *QueryHandler) auditorAction(c *gin.Context, fn func(queryID, actorID uint) (*models.Query, error)) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	queryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	query, err := fn(queryID, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query})
}

// readUploads drains the "attachments" multipart field, enforcing the total
// request size cap. Requests without a multipart body yield no uploads.
func readUploads(c *gin.Context) ([]services.Upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}

	maxBytes := config.Get().MaxUploadBytes
	var total int64
	var uploads []services.Upload
	for _, fh := range form.File["attachments"] {
		total += fh.Size
		if total > maxBytes {
			return nil, apperrors.ErrUploadTooLarge
		}

		f, err := fh.Open()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorage, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorage, err)
		}

		uploads = append(uploads, services.Upload{OriginalName: fh.Filename, Data: data})
	}
	return uploads, nil
}
