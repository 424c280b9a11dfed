package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "querydesk/internal/errors"
	"querydesk/internal/logger"
	"querydesk/internal/models"
	"querydesk/internal/pagination"
)

// transitionSources is the closed transition table: for each status-changing
// action, the statuses it may be applied from. Anything not listed is
// rejected before any mutation happens.
//
// employee_submit is re-enterable while the employee owns the query, which
// is what admits the manager_rejected -> employee_submitted resubmission.
// Close is allowed from any non-closed status; reopen only from closed.
var transitionSources = map[models.AuditAction][]models.QueryStatus{
	models.ActionAssigned: {
		models.StatusDraft, models.StatusAssigned, models.StatusReopened,
	},
	models.ActionEmployeeSubmitted: {
		models.StatusAssigned, models.StatusEmployeeSubmitted,
		models.StatusManagerRejected, models.StatusReopened,
	},
	models.ActionManagerApproved: {models.StatusEmployeeSubmitted},
	models.ActionManagerRejected: {models.StatusEmployeeSubmitted},
	models.ActionClosed: {
		models.StatusDraft, models.StatusAssigned, models.StatusEmployeeSubmitted,
		models.StatusManagerApproved, models.StatusManagerRejected, models.StatusReopened,
	},
	models.ActionReopened: {models.StatusClosed},
}

func transitionAllowed(action models.AuditAction, from models.QueryStatus) bool {
	for _, s := range transitionSources[action] {
		if s == from {
			return true
		}
	}
	return false
}

// queryService is the lifecycle engine. Every transition validates role and
// role-slot ownership first, consults the transition table, then applies the
// status change, ledger entries, and attachment rows inside one database
// transaction.
//
// Attachment bytes are written to the file store before the transaction
// commits; if the transaction rolls back, any bytes already written have no
// metadata row and are unreachable.
type queryService struct {
	db          *gorm.DB
	identity    IdentityServicer
	taxonomy    TaxonomyServicer
	ledger      LedgerServicer
	attachments AttachmentServicer
}

// NewQueryService creates a new QueryServicer.
func NewQueryService(db *gorm.DB, identity IdentityServicer, taxonomy TaxonomyServicer, ledger LedgerServicer, attachments AttachmentServicer) QueryServicer {
	return &queryService{
		db:          db,
		identity:    identity,
		taxonomy:    taxonomy,
		ledger:      ledger,
		attachments: attachments,
	}
}

// CreateQuery raises a new query. Only auditors may create queries. When an
// employee is chosen up front the query starts assigned and gets both a
// "created" and an "assigned" ledger entry; otherwise it starts as a draft
// with just the "created" entry.
func (s *queryService) CreateQuery(auditorID uint, in CreateQueryInput) (*models.Query, error) {
	auditor, err := s.identity.GetUserByID(auditorID)
	if err != nil {
		return nil, err
	}
	if auditor.Role != models.RoleAuditor {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "Only auditors can create queries")
	}

	if _, err := s.taxonomy.GetCategoryByID(in.CategoryID); err != nil {
		return nil, err
	}

	var employee *models.User
	if in.AssignedEmployeeID != nil {
		employee, err = s.identity.GetUserByID(*in.AssignedEmployeeID)
		if err != nil {
			return nil, err
		}
	}

	status := models.StatusDraft
	if employee != nil {
		status = models.StatusAssigned
	}

	query := &models.Query{
		CategoryID:         in.CategoryID,
		SubCategoryID:      in.SubCategoryID,
		TemplateID:         in.TemplateID,
		CustomText:         in.CustomText,
		Status:             status,
		AuditorID:          auditor.ID,
		AssignedEmployeeID: in.AssignedEmployeeID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(query).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		detail := fmt.Sprintf("Query created by auditor (ID %d) %s", auditor.ID, auditor.DisplayName())
		if err := s.ledger.Append(tx, query.ID, models.ActionCreated, detail, &auditor.ID, nil); err != nil {
			return err
		}

		if employee != nil {
			detail := fmt.Sprintf("Assigned to employee (ID %d) %s", employee.ID, employee.DisplayName())
			if err := s.ledger.Append(tx, query.ID, models.ActionAssigned, detail, &auditor.ID, &employee.ID); err != nil {
				return err
			}
		}

		return s.saveUploads(tx, query.ID, auditor, in.Uploads)
	})
	if err != nil {
		return nil, err
	}
	return s.GetQuery(query.ID)
}

// AssignEmployee binds an employee to the query and moves it to assigned.
// Restricted to the auditor who raised the query.
func (s *queryService) AssignEmployee(queryID, actorID, employeeID uint) (*models.Query, error) {
	query, err := s.getQuery(queryID)
	if err != nil {
		return nil, err
	}

	actor, err := s.identity.GetUserByID(actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAuditor || query.AuditorID != actor.ID {
		return nil, apperrors.ErrNotQueryAuditor
	}
	if !transitionAllowed(models.ActionAssigned, query.Status) {
		return nil, apperrors.ErrInvalidTransition
	}

	employee, err := s.identity.GetUserByID(employeeID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"assigned_employee_id": employee.ID,
			"status":               models.StatusAssigned,
		}
		if err := tx.Model(query).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		detail := fmt.Sprintf("Assigned to employee (ID %d) %s", employee.ID, employee.DisplayName())
		return s.ledger.Append(tx, query.ID, models.ActionAssigned, detail, &actor.ID, &employee.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetQuery(query.ID)
}

// EmployeeSubmit routes the query to a manager. Restricted to the employee
// bound in the assigned slot. A given manager ID must resolve to a user,
// since the manager slot carries a foreign key; submitting without one
// leaves the slot empty and the ledger entry carries a generic note instead
// of a target.
func (s *queryService) EmployeeSubmit(queryID, actorID uint, managerID *uint, uploads []Upload) (*models.Query, error) {
	query, err := s.getQuery(queryID)
	if err != nil {
		return nil, err
	}

	actor, err := s.identity.GetUserByID(actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleEmployee ||
		query.AssignedEmployeeID == nil || *query.AssignedEmployeeID != actor.ID {
		return nil, apperrors.ErrNotAssignedEmployee
	}
	if !transitionAllowed(models.ActionEmployeeSubmitted, query.Status) {
		return nil, apperrors.ErrInvalidTransition
	}

	var manager *models.User
	if managerID != nil {
		manager, err = s.identity.GetUserByID(*managerID)
		if err != nil {
			return nil, err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"manager_id": managerID,
			"status":     models.StatusEmployeeSubmitted,
		}
		if err := tx.Model(query).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if manager != nil {
			detail := fmt.Sprintf("Submitted to manager (ID %d) %s", manager.ID, manager.DisplayName())
			if err := s.ledger.Append(tx, query.ID, models.ActionEmployeeSubmitted, detail, &actor.ID, &manager.ID); err != nil {
				return err
			}
		} else {
			if err := s.ledger.Append(tx, query.ID, models.ActionEmployeeSubmitted, "Submitted to manager (ID unknown)", &actor.ID, nil); err != nil {
				return err
			}
		}

		return s.saveUploads(tx, query.ID, actor, uploads)
	})
	if err != nil {
		return nil, err
	}
	return s.GetQuery(query.ID)
}

// ManagerDecide records the manager's verdict on a submission. Restricted to
// the manager bound in the query's manager slot.
func (s *queryService) ManagerDecide(queryID, actorID uint, decision Decision) (*models.Query, error) {
	query, err := s.getQuery(queryID)
	if err != nil {
		return nil, err
	}

	actor, err := s.identity.GetUserByID(actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleManager ||
		query.ManagerID == nil || *query.ManagerID != actor.ID {
		return nil, apperrors.ErrNotRoutedManager
	}

	var (
		status models.QueryStatus
		action models.AuditAction
		verb   string
	)
	switch decision {
	case DecisionApprove:
		status, action, verb = models.StatusManagerApproved, models.ActionManagerApproved, "approved"
	case DecisionReject:
		status, action, verb = models.StatusManagerRejected, models.ActionManagerRejected, "rejected"
	default:
		return nil, apperrors.ErrInvalidDecision
	}

	if !transitionAllowed(action, query.Status) {
		return nil, apperrors.ErrInvalidTransition
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(query).Update("status", status).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		detail := fmt.Sprintf("Manager (ID %d) %s %s submission", actor.ID, actor.DisplayName(), verb)
		return s.ledger.Append(tx, query.ID, action, detail, &actor.ID, query.AssignedEmployeeID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetQuery(query.ID)
}

// AuditorClose closes the query. Restricted to the auditor who raised it;
// allowed from any status except closed.
func (s *queryService) AuditorClose(queryID, actorID uint) (*models.Query, error) {
	return s.auditorTransition(queryID, actorID, models.ActionClosed, models.StatusClosed, "closed query")
}

// AuditorReopen re-admits a closed query to the active cycle.
func (s *queryService) AuditorReopen(queryID, actorID uint) (*models.Query, error) {
	return s.auditorTransition(queryID, actorID, models.ActionReopened, models.StatusReopened, "reopened query")
}

func (s *queryService) auditorTransition(queryID, actorID uint, action models.AuditAction, status models.QueryStatus, verb string) (*models.Query, error) {
	query, err := s.getQuery(queryID)
	if err != nil {
		return nil, err
	}

	actor, err := s.identity.GetUserByID(actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAuditor || query.AuditorID != actor.ID {
		return nil, apperrors.ErrNotQueryAuditor
	}
	if !transitionAllowed(action, query.Status) {
		return nil, apperrors.ErrInvalidTransition
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(query).Update("status", status).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		detail := fmt.Sprintf("Auditor (ID %d) %s %s", actor.ID, actor.DisplayName(), verb)
		return s.ledger.Append(tx, query.ID, action, detail, &actor.ID, query.AssignedEmployeeID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetQuery(query.ID)
}

// AddComment records a comment from any authenticated user and appends the
// matching ledger entry. Comments never change status but still advance the
// query's updated_at.
func (s *queryService) AddComment(queryID, actorID uint, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "comment content is required")
	}

	query, err := s.getQuery(queryID)
	if err != nil {
		return nil, err
	}

	actor, err := s.identity.GetUserByID(actorID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		QueryID: query.ID,
		UserID:  actor.ID,
		Content: content,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		detail := fmt.Sprintf("Comment added by (ID %d) %s", actor.ID, actor.DisplayName())
		if err := s.ledger.Append(tx, query.ID, models.ActionComment, detail, &actor.ID, nil); err != nil {
			return err
		}

		return tx.Model(query).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// GetQuery returns a query with its comments, attachments, and ordered
// ledger.
func (s *queryService) GetQuery(queryID uint) (*models.Query, error) {
	var query models.Query
	err := s.db.
		Preload("Category").
		Preload("SubCategory").
		Preload("Template").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC, comments.id ASC")
		}).
		Preload("Comments.User").
		Preload("Attachments").
		Preload("AuditTrail", func(db *gorm.DB) *gorm.DB {
			return db.Order("audit_trails.created_at ASC, audit_trails.id ASC")
		}).
		First(&query, queryID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrQueryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &query, nil
}

// ListDashboard returns the queries visible to an actor: auditors see the
// queries they raised, employees the ones assigned to them, managers the
// ones routed to them. Other roles see an empty page.
func (s *queryService) ListDashboard(actorID uint, role models.Role, page pagination.PageRequest) (*pagination.PageResponse[models.Query], error) {
	page.Defaults()

	base := s.db.Model(&models.Query{})
	switch role {
	case models.RoleAuditor:
		base = base.Where("auditor_id = ?", actorID)
	case models.RoleEmployee:
		base = base.Where("assigned_employee_id = ?", actorID)
	case models.RoleManager:
		base = base.Where("manager_id = ?", actorID)
	default:
		result := pagination.NewPageResponse([]models.Query{}, page.Page, page.PageSize, 0)
		return &result, nil
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var queries []models.Query
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("Category").
		Order("created_at DESC, id DESC").
		Find(&queries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(queries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// getQuery fetches the bare query row for a transition.
func (s *queryService) getQuery(queryID uint) (*models.Query, error) {
	var query models.Query
	if err := s.db.First(&query, queryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrQueryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &query, nil
}

// saveUploads persists each upload and its ledger entry. A file with a
// disallowed type is skipped with a log line, leaving the rest of the
// transition intact; a storage failure aborts the caller's transaction.
func (s *queryService) saveUploads(tx *gorm.DB, queryID uint, uploader *models.User, uploads []Upload) error {
	for _, up := range uploads {
		att, err := s.attachments.Save(tx, queryID, uploader.ID, up.OriginalName, up.Data)
		if err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) && appErr.Code == apperrors.ErrUnsupportedFileType.Code {
				logger.Get().Warnw("skipping attachment with disallowed type",
					"query_id", queryID, "filename", up.OriginalName)
				continue
			}
			return err
		}

		detail := fmt.Sprintf("File %s uploaded by (ID %d) %s", att.OriginalName, uploader.ID, uploader.DisplayName())
		if err := s.ledger.Append(tx, queryID, models.ActionFileUpload, detail, &uploader.ID, nil); err != nil {
			return err
		}
	}
	return nil
}
