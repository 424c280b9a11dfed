package services

import (
	"gorm.io/gorm"

	"querydesk/internal/models"
	"querydesk/internal/pagination"
)

// IdentityServicer defines the contract for the identity store: account
// creation, credential checks, and the role-filtered listings that populate
// employee/manager pickers.
type IdentityServicer interface {
	CreateUser(username, password string, role models.Role, fullName, email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	ListUsersByRole(role models.Role, page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	AttemptLogin(username, password string) (*models.User, error)
	ChangePassword(userID uint, oldPassword, newPassword, confirmPassword string) error
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
}

// TaxonomyServicer defines the contract for the category/subcategory/template
// hierarchy.
type TaxonomyServicer interface {
	ListCategories() ([]models.Category, error)
	GetCategoryByID(id uint) (*models.Category, error)
	ListSubCategories(categoryID uint) ([]models.SubCategory, error)
	ListTemplates(categoryID *uint) ([]models.QueryTemplate, error)
	GetTemplateByID(id uint) (*models.QueryTemplate, error)
}

// LedgerServicer defines the contract for the per-query audit ledger.
// Append runs on the caller's transaction handle so a ledger row commits or
// aborts together with the transition that produced it. List returns entries
// in insertion order and is replayable. BackfillDetailNames is the offline
// maintenance operation and must not run concurrently with appends.
type LedgerServicer interface {
	Append(tx *gorm.DB, queryID uint, action models.AuditAction, detail string, userID, targetID *uint) error
	List(queryID uint) ([]models.AuditTrail, error)
	BackfillDetailNames() (int, error)
}

// AttachmentServicer stores uploaded files and their metadata rows. Save runs
// on the caller's transaction handle for the metadata row; the byte write
// goes to the file store, and a failed write surfaces as a StorageError so
// the caller can abort the whole transition.
type AttachmentServicer interface {
	Save(tx *gorm.DB, queryID, uploaderID uint, originalName string, data []byte) (*models.Attachment, error)
	GetByFilename(filename string) (*models.Attachment, error)
	Open(att *models.Attachment) ([]byte, error)
}

// Upload carries one incoming attachment through a lifecycle transition.
type Upload struct {
	OriginalName string
	Data         []byte
}

// Decision is a manager's verdict on an employee submission.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// CreateQueryInput bundles the fields of a create_query call. Exactly one of
// TemplateID/CustomText is expected to carry the query text; the engine does
// not enforce this.
type CreateQueryInput struct {
	CategoryID         uint
	SubCategoryID      *uint
	TemplateID         *uint
	CustomText         string
	AssignedEmployeeID *uint
	Uploads            []Upload
}

// QueryServicer is the query lifecycle engine: it validates role and
// role-slot ownership, applies the transition table, and persists the status
// change, ledger entries, and attachments as one atomic unit.
type QueryServicer interface {
	CreateQuery(auditorID uint, in CreateQueryInput) (*models.Query, error)
	AssignEmployee(queryID, actorID, employeeID uint) (*models.Query, error)
	EmployeeSubmit(queryID, actorID uint, managerID *uint, uploads []Upload) (*models.Query, error)
	ManagerDecide(queryID, actorID uint, decision Decision) (*models.Query, error)
	AuditorClose(queryID, actorID uint) (*models.Query, error)
	AuditorReopen(queryID, actorID uint) (*models.Query, error)
	AddComment(queryID, actorID uint, content string) (*models.Comment, error)
	GetQuery(queryID uint) (*models.Query, error)
	ListDashboard(actorID uint, role models.Role, page pagination.PageRequest) (*pagination.PageResponse[models.Query], error)
}
