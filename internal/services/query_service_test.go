package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"querydesk/internal/models"
	"querydesk/internal/pagination"
	"querydesk/internal/storage"
	"querydesk/internal/testutil"
)

func newTestEngine(t *testing.T, db *gorm.DB) QueryServicer {
	t.Helper()

	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}
	allowed := map[string]bool{
		"pdf": true, "png": true, "jpg": true, "jpeg": true, "xlsx": true,
		"xls": true, "csv": true, "txt": true, "doc": true, "docx": true,
	}

	identity := NewIdentityService(db)
	taxonomy := NewTaxonomyService(db)
	ledger := NewLedgerService(db)
	attachments := NewAttachmentService(db, store, allowed)
	return NewQueryService(db, identity, taxonomy, ledger, attachments)
}

func ledgerEntries(t *testing.T, db *gorm.DB, queryID uint) []models.AuditTrail {
	t.Helper()

	entries, err := NewLedgerService(db).List(queryID)
	if err != nil {
		t.Fatalf("failed to list ledger: %v", err)
	}
	return entries
}

func TestCreateQuery(t *testing.T) {
	t.Run("draft_without_employee", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
		category := testutil.CreateTestCategory(t, db)

		query, err := engine.CreateQuery(auditor.ID, CreateQueryInput{
			CategoryID: category.ID,
			CustomText: "Explain the variance in Q3 travel expenses.",
		})
		testutil.AssertNoError(t, err)

		if query.Status != models.StatusDraft {
			t.Errorf("expected status draft, got %s", query.Status)
		}
		entries := ledgerEntries(t, db, query.ID)
		if len(entries) != 1 {
			t.Fatalf("expected 1 ledger entry, got %d", len(entries))
		}
		if entries[0].Action != models.ActionCreated {
			t.Errorf("expected created action, got %s", entries[0].Action)
		}
	})

	t.Run("assigned_with_employee", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
		employee := testutil.CreateTestUser(t, db, models.RoleEmployee)
		category := testutil.CreateTestCategory(t, db)

		query, err := engine.CreateQuery(auditor.ID, CreateQueryInput{
			CategoryID:         category.ID,
			CustomText:         "Provide the vendor master change log.",
			AssignedEmployeeID: &employee.ID,
		})
		testutil.AssertNoError(t, err)

		if query.Status != models.StatusAssigned {
			t.Errorf("expected status assigned, got %s", query.Status)
		}
		entries := ledgerEntries(t, db, query.ID)
		if len(entries) != 2 {
			t.Fatalf("expected 2 ledger entries, got %d", len(entries))
		}
		if entries[0].Action != models.ActionCreated || entries[1].Action != models.ActionAssigned {
			t.Errorf("expected created then assigned, got %s then %s", entries[0].Action, entries[1].Action)
		}
		if entries[1].TargetID == nil || *entries[1].TargetID != employee.ID {
			t.Errorf("expected assigned entry target %d, got %v", employee.ID, entries[1].TargetID)
		}
	})

	t.Run("non_auditor_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		employee := testutil.CreateTestUser(t, db, models.RoleEmployee)
		category := testutil.CreateTestCategory(t, db)

		_, err := engine.CreateQuery(employee.ID, CreateQueryInput{CategoryID: category.ID})
		testutil.AssertAppError(t, err, "FORBIDDEN")

		var count int64
		db.Model(&models.Query{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no queries persisted, got %d", count)
		}
	})

	t.Run("unknown_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)

		_, err := engine.CreateQuery(auditor.ID, CreateQueryInput{CategoryID: 99999})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("bad_attachment_skipped_good_one_saved", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
		category := testutil.CreateTestCategory(t, db)

		query, err := engine.CreateQuery(auditor.ID, CreateQueryInput{
			CategoryID: category.ID,
			CustomText: "Attach supporting evidence.",
			Uploads: []Upload{
				{OriginalName: "evidence.pdf", Data: []byte("pdf bytes")},
				{OriginalName: "malware.exe", Data: []byte("nope")},
			},
		})
		testutil.AssertNoError(t, err)

		var attachments []models.Attachment
		db.Where("query_id = ?", query.ID).Find(&attachments)
		if len(attachments) != 1 {
			t.Fatalf("expected 1 attachment, got %d", len(attachments))
		}
		if attachments[0].OriginalName != "evidence.pdf" {
			t.Errorf("expected evidence.pdf, got %s", attachments[0].OriginalName)
		}

		uploads := 0
		for _, e := range ledgerEntries(t, db, query.ID) {
			if e.Action == models.ActionFileUpload {
				uploads++
			}
		}
		if uploads != 1 {
			t.Errorf("expected 1 file_upload entry, got %d", uploads)
		}
	})
}

// TestFullLifecycle walks the canonical happy path: create assigned, submit,
// approve, close. After close the ledger holds exactly five rows.
func TestFullLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	engine := newTestEngine(t, db)

	auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
	employee := testutil.CreateTestUser(t, db, models.RoleEmployee)
	manager := testutil.CreateTestUser(t, db, models.RoleManager)
	category := testutil.CreateTestCategoryWithName(t, db, "Financial")

	query, err := engine.CreateQuery(auditor.ID, CreateQueryInput{
		CategoryID:         category.ID,
		CustomText:         "Reconcile the suspense account.",
		AssignedEmployeeID: &employee.ID,
	})
	testutil.AssertNoError(t, err)
	if query.Status != models.StatusAssigned {
		t.Fatalf("expected assigned, got %s", query.Status)
	}
	prevUpdated := query.UpdatedAt

	query, err = engine.EmployeeSubmit(query.ID, employee.ID, &manager.ID, nil)
	testutil.AssertNoError(t, err)
	if query.Status != models.StatusEmployeeSubmitted {
		t.Fatalf("expected employee_submitted, got %s", query.Status)
	}
	if query.UpdatedAt.Before(prevUpdated) {
		t.Error("expected updated_at to advance on submit")
	}

	entries := ledgerEntries(t, db, query.ID)
	if len(entries) != 3 {
		t.Fatalf("expected 3 ledger entries after submit, got %d", len(entries))
	}
	last := entries[2]
	if last.Action != models.ActionEmployeeSubmitted {
		t.Errorf("expected employee_submitted entry, got %s", last.Action)
	}
	if last.TargetID == nil || *last.TargetID != manager.ID {
		t.Errorf("expected submit entry target %d, got %v", manager.ID, last.TargetID)
	}

	query, err = engine.ManagerDecide(query.ID, manager.ID, DecisionApprove)
	testutil.AssertNoError(t, err)
	if query.Status != models.StatusManagerApproved {
		t.Fatalf("expected manager_approved, got %s", query.Status)
	}
	if len(ledgerEntries(t, db, query.ID)) != 4 {
		t.Fatal("expected 4 ledger entries after decision")
	}

	query, err = engine.AuditorClose(query.ID, auditor.ID)
	testutil.AssertNoError(t, err)
	if query.Status != models.StatusClosed {
		t.Fatalf("expected closed, got %s", query.Status)
	}

	entries = ledgerEntries(t, db, query.ID)
	if len(entries) != 5 {
		t.Fatalf("expected 5 ledger entries after close, got %d", len(entries))
	}
	if entries[4].Action != models.ActionClosed {
		t.Errorf("expected closed entry last, got %s", entries[4].Action)
	}
}

// TestFullLifecycleWithUploads walks the happy path again with attachments
// in the mix: the disallowed file is skipped, the valid one produces a
// file_upload entry, and an interloper's submit attempt leaves no trace, so
// the closed query ends with exactly six ledger rows.
func TestFullLifecycleWithUploads(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	engine := newTestEngine(t, db)

	auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
	employee := testutil.CreateTestUser(t, db, models.RoleEmployee)
	interloper := testutil.CreateTestUser(t, db, models.RoleEmployee)
	manager := testutil.CreateTestUser(t, db, models.RoleManager)
	category := testutil.CreateTestCategory(t, db)

	query, err := engine.CreateQuery(auditor.ID, CreateQueryInput{
		CategoryID:         category.ID,
		CustomText:         "Submit the signed-off bank reconciliation.",
		AssignedEmployeeID: &employee.ID,
		Uploads: []Upload{
			{OriginalName: "reconciliation.xlsx", Data: []byte("workbook")},
			{OriginalName: "malware.exe", Data: []byte("nope")},
		},
	})
	testutil.AssertNoError(t, err)
	if query.Status != models.StatusAssigned {
		t.Fatalf("expected assigned, got %s", query.Status)
	}

	entries := ledgerEntries(t, db, query.ID)
	if len(entries) != 3 {
		t.Fatalf("expected 3 ledger entries after create (created, assigned, file_upload), got %d", len(entries))
	}
	if entries[2].Action != models.ActionFileUpload {
		t.Errorf("expected file_upload entry, got %s", entries[2].Action)
	}
	var attachments []models.Attachment
	db.Where("query_id = ?", query.ID).Find(&attachments)
	if len(attachments) != 1 || attachments[0].OriginalName != "reconciliation.xlsx" {
		t.Fatalf("expected only the valid attachment, got %+v", attachments)
	}

	_, err = engine.EmployeeSubmit(query.ID, interloper.ID, &manager.ID, nil)
	testutil.AssertAppError(t, err, "FORBIDDEN")
	var unchanged models.Query
	db.First(&unchanged, query.ID)
	if unchanged.Status != models.StatusAssigned {
		t.Fatalf("expected status untouched by interloper, got %s", unchanged.Status)
	}
	if n := len(ledgerEntries(t, db, query.ID)); n != 3 {
		t.Fatalf("expected ledger untouched by interloper, got %d entries", n)
	}

	query, err = engine.EmployeeSubmit(query.ID, employee.ID, &manager.ID, nil)
	testutil.AssertNoError(t, err)
	query, err = engine.ManagerDecide(query.ID, manager.ID, DecisionApprove)
	testutil.AssertNoError(t, err)
	query, err = engine.AuditorClose(query.ID, auditor.ID)
	testutil.AssertNoError(t, err)
	if query.Status != models.StatusClosed {
		t.Fatalf("expected closed, got %s", query.Status)
	}

	entries = ledgerEntries(t, db, query.ID)
	if len(entries) != 6 {
		t.Fatalf("expected 6 ledger entries after close, got %d", len(entries))
	}
	wantActions := []models.AuditAction{
		models.ActionCreated, models.ActionAssigned, models.ActionFileUpload,
		models.ActionEmployeeSubmitted, models.ActionManagerApproved, models.ActionClosed,
	}
	for i, want := range wantActions {
		if entries[i].Action != want {
			t.Errorf("entry %d: expected %s, got %s", i, want, entries[i].Action)
		}
	}
}

func TestEmployeeSubmit(t *testing.T) {
	t.Run("unassigned_employee_rejected_without_side_effects", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
		assigned := testutil.CreateTestUser(t, db, models.RoleEmployee)
		other := testutil.CreateTestUser(t, db, models.RoleEmployee)
		query := testutil.CreateTestQuery(t, db, models.StatusAssigned, auditor.ID, assigned.ID, 0)

		before := len(ledgerEntries(t, db, query.ID))

		_, err := engine.EmployeeSubmit(query.ID, other.ID, nil, nil)
		testutil.AssertAppError(t, err, "FORBIDDEN")

		var reloaded models.Query
		db.First(&reloaded, query.ID)
		if reloaded.Status != models.StatusAssigned {
			t.Errorf("expected status unchanged, got %s", reloaded.Status)
		}
		if after := len(ledgerEntries(t, db, query.ID)); after != before {
			t.Errorf("expected ledger unchanged (%d entries), got %d", before, after)
		}
	})

	t.Run("missing_manager_gets_generic_note", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
		employee := testutil.CreateTestUser(t, db, models.RoleEmployee)
		query := testutil.CreateTestQuery(t, db, models.StatusAssigned, auditor.ID, employee.ID, 0)

		updated, err := engine.EmployeeSubmit(query.ID, employee.ID, nil, nil)
		testutil.AssertNoError(t, err)
		if updated.Status != models.StatusEmployeeSubmitted {
			t.Fatalf("expected employee_submitted, got %s", updated.Status)
		}

		entries := ledgerEntries(t, db, query.ID)
		last := entries[len(entries)-1]
		if last.Detail != "Submitted to manager (ID unknown)" {
			t.Errorf("expected generic note, got %q", last.Detail)
		}
		if last.TargetID != nil {
			t.Errorf("expected no target, got %v", last.TargetID)
		}
	})

	t.Run("unknown_manager_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
		employee := testutil.CreateTestUser(t, db, models.RoleEmployee)
		query := testutil.CreateTestQuery(t, db, models.StatusAssigned, auditor.ID, employee.ID, 0)

		unknown := uint(99999)
		_, err := engine.EmployeeSubmit(query.ID, employee.ID, &unknown, nil)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")

		var reloaded models.Query
		db.First(&reloaded, query.ID)
		if reloaded.Status != models.StatusAssigned {
			t.Errorf("expected status unchanged, got %s", reloaded.Status)
		}
		if reloaded.ManagerID != nil {
			t.Errorf("expected manager slot empty, got %v", reloaded.ManagerID)
		}
	})

	t.Run("resubmission_after_rejection", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
		employee := testutil.CreateTestUser(t, db, models.RoleEmployee)
		manager := testutil.CreateTestUser(t, db, models.RoleManager)
		query := testutil.CreateTestQuery(t, db, models.StatusManagerRejected, auditor.ID, employee.ID, manager.ID)

		updated, err := engine.EmployeeSubmit(query.ID, employee.ID, &manager.ID, nil)
		testutil.AssertNoError(t, err)
		if updated.Status != models.StatusEmployeeSubmitted {
			t.Errorf("expected employee_submitted, got %s", updated.Status)
		}
	})

	t.Run("closed_query_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
		employee := testutil.CreateTestUser(t, db, models.RoleEmployee)
		query := testutil.CreateTestQuery(t, db, models.StatusClosed, auditor.ID, employee.ID, 0)

		_, err := engine.EmployeeSubmit(query.ID, employee.ID, nil, nil)
		testutil.AssertAppError(t, err, "INVALID_TRANSITION")
	})
}

func TestManagerDecide(t *testing.T) {
	t.Run("reject_targets_assigned_employee", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
		employee := testutil.CreateTestUser(t, db, models.RoleEmployee)
		manager := testutil.CreateTestUser(t, db, models.RoleManager)
		query := testutil.CreateTestQuery(t, db, models.StatusEmployeeSubmitted, auditor.ID, employee.ID, manager.ID)

		updated, err := engine.ManagerDecide(query.ID, manager.ID, DecisionReject)
		testutil.AssertNoError(t, err)
		if updated.Status != models.StatusManagerRejected {
			t.Fatalf("expected manager_rejected, got %s", updated.Status)
		}

		entries := ledgerEntries(t, db, query.ID)
		last := entries[len(entries)-1]
		if last.Action != models.ActionManagerRejected {
			t.Errorf("expected manager_rejected entry, got %s", last.Action)
		}
		if last.TargetID == nil || *last.TargetID != employee.ID {
			t.Errorf("expected target %d, got %v", employee.ID, last.TargetID)
		}
	})

	t.Run("other_manager_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
		employee := testutil.CreateTestUser(t, db, models.RoleEmployee)
		manager := testutil.CreateTestUser(t, db, models.RoleManager)
		other := testutil.CreateTestUser(t, db, models.RoleManager)
		query := testutil.CreateTestQuery(t, db, models.StatusEmployeeSubmitted, auditor.ID, employee.ID, manager.ID)

		_, err := engine.ManagerDecide(query.ID, other.ID, DecisionApprove)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("not_submitted_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
		employee := testutil.CreateTestUser(t, db, models.RoleEmployee)
		manager := testutil.CreateTestUser(t, db, models.RoleManager)
		query := testutil.CreateTestQuery(t, db, models.StatusAssigned, auditor.ID, employee.ID, manager.ID)

		_, err := engine.ManagerDecide(query.ID, manager.ID, DecisionApprove)
		testutil.AssertAppError(t, err, "INVALID_TRANSITION")
	})
}

func TestAuditorCloseReopen(t *testing.T) {
	t.Run("other_auditor_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
		other := testutil.CreateTestUser(t, db, models.RoleAuditor)
		query := testutil.CreateTestQuery(t, db, models.StatusAssigned, auditor.ID, 0, 0)

		_, err := engine.AuditorClose(query.ID, other.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("reopen_requires_closed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
		query := testutil.CreateTestQuery(t, db, models.StatusAssigned, auditor.ID, 0, 0)

		_, err := engine.AuditorReopen(query.ID, auditor.ID)
		testutil.AssertAppError(t, err, "INVALID_TRANSITION")
	})

	t.Run("close_then_reopen_then_reassign", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
		employee := testutil.CreateTestUser(t, db, models.RoleEmployee)
		query := testutil.CreateTestQuery(t, db, models.StatusManagerApproved, auditor.ID, employee.ID, 0)

		closed, err := engine.AuditorClose(query.ID, auditor.ID)
		testutil.AssertNoError(t, err)
		if closed.Status != models.StatusClosed {
			t.Fatalf("expected closed, got %s", closed.Status)
		}

		reopened, err := engine.AuditorReopen(query.ID, auditor.ID)
		testutil.AssertNoError(t, err)
		if reopened.Status != models.StatusReopened {
			t.Fatalf("expected reopened, got %s", reopened.Status)
		}

		reassigned, err := engine.AssignEmployee(query.ID, auditor.ID, employee.ID)
		testutil.AssertNoError(t, err)
		if reassigned.Status != models.StatusAssigned {
			t.Errorf("expected assigned after reopen, got %s", reassigned.Status)
		}
	})

	t.Run("double_close_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
		query := testutil.CreateTestQuery(t, db, models.StatusClosed, auditor.ID, 0, 0)

		_, err := engine.AuditorClose(query.ID, auditor.ID)
		testutil.AssertAppError(t, err, "INVALID_TRANSITION")
	})
}

func TestAddComment(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
		employee := testutil.CreateTestUser(t, db, models.RoleEmployee)
		query := testutil.CreateTestQuery(t, db, models.StatusAssigned, auditor.ID, employee.ID, 0)

		comment, err := engine.AddComment(query.ID, employee.ID, "Working on it.")
		testutil.AssertNoError(t, err)
		if comment.ID == 0 {
			t.Fatal("expected persisted comment")
		}

		entries := ledgerEntries(t, db, query.ID)
		last := entries[len(entries)-1]
		if last.Action != models.ActionComment {
			t.Errorf("expected comment ledger entry, got %s", last.Action)
		}
	})

	t.Run("empty_content_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
		query := testutil.CreateTestQuery(t, db, models.StatusDraft, auditor.ID, 0, 0)

		_, err := engine.AddComment(query.ID, auditor.ID, "   ")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_query", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)

		_, err := engine.AddComment(99999, auditor.ID, "hello")
		testutil.AssertAppError(t, err, "QUERY_NOT_FOUND")
	})
}

func TestListDashboard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	engine := newTestEngine(t, db)

	auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
	employee := testutil.CreateTestUser(t, db, models.RoleEmployee)
	otherEmployee := testutil.CreateTestUser(t, db, models.RoleEmployee)
	manager := testutil.CreateTestUser(t, db, models.RoleManager)
	category := testutil.CreateTestCategory(t, db)

	query, err := engine.CreateQuery(auditor.ID, CreateQueryInput{
		CategoryID:         category.ID,
		CustomText:         "Dashboard visibility check.",
		AssignedEmployeeID: &employee.ID,
	})
	testutil.AssertNoError(t, err)
	_, err = engine.EmployeeSubmit(query.ID, employee.ID, &manager.ID, nil)
	testutil.AssertNoError(t, err)

	page := pagination.PageRequest{Page: 1, PageSize: 20}

	auditorView, err := engine.ListDashboard(auditor.ID, models.RoleAuditor, page)
	testutil.AssertNoError(t, err)
	if auditorView.TotalItems != 1 {
		t.Errorf("expected auditor to see 1 query, got %d", auditorView.TotalItems)
	}

	employeeView, err := engine.ListDashboard(employee.ID, models.RoleEmployee, page)
	testutil.AssertNoError(t, err)
	if employeeView.TotalItems != 1 {
		t.Errorf("expected assigned employee to see 1 query, got %d", employeeView.TotalItems)
	}

	otherView, err := engine.ListDashboard(otherEmployee.ID, models.RoleEmployee, page)
	testutil.AssertNoError(t, err)
	if otherView.TotalItems != 0 {
		t.Errorf("expected unrelated employee to see 0 queries, got %d", otherView.TotalItems)
	}

	managerView, err := engine.ListDashboard(manager.ID, models.RoleManager, page)
	testutil.AssertNoError(t, err)
	if managerView.TotalItems != 1 {
		t.Errorf("expected routed manager to see 1 query, got %d", managerView.TotalItems)
	}

	adminView, err := engine.ListDashboard(auditor.ID, models.RoleAdmin, page)
	testutil.AssertNoError(t, err)
	if adminView.TotalItems != 0 {
		t.Errorf("expected admin dashboard to be empty, got %d", adminView.TotalItems)
	}
}

func TestAssignEmployee(t *testing.T) {
	t.Run("draft_to_assigned", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
		employee := testutil.CreateTestUser(t, db, models.RoleEmployee)
		query := testutil.CreateTestQuery(t, db, models.StatusDraft, auditor.ID, 0, 0)

		before := time.Now()
		updated, err := engine.AssignEmployee(query.ID, auditor.ID, employee.ID)
		testutil.AssertNoError(t, err)

		if updated.Status != models.StatusAssigned {
			t.Fatalf("expected assigned, got %s", updated.Status)
		}
		if updated.AssignedEmployeeID == nil || *updated.AssignedEmployeeID != employee.ID {
			t.Errorf("expected employee slot %d, got %v", employee.ID, updated.AssignedEmployeeID)
		}
		if updated.UpdatedAt.Before(before.Add(-time.Second)) {
			t.Error("expected updated_at to advance")
		}
	})

	t.Run("submitted_query_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
		employee := testutil.CreateTestUser(t, db, models.RoleEmployee)
		query := testutil.CreateTestQuery(t, db, models.StatusEmployeeSubmitted, auditor.ID, employee.ID, 0)

		_, err := engine.AssignEmployee(query.ID, auditor.ID, employee.ID)
		testutil.AssertAppError(t, err, "INVALID_TRANSITION")
	})

	t.Run("unknown_employee", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		engine := newTestEngine(t, db)

		auditor := testutil.CreateTestUser(t, db, models.RoleAuditor)
		query := testutil.CreateTestQuery(t, db, models.StatusDraft, auditor.ID, 0, 0)

		_, err := engine.AssignEmployee(query.ID, auditor.ID, 99999)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}
