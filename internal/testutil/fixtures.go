package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"querydesk/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with the given role, a hashed password
// ("password123"), and a unique username.
func CreateTestUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()
	n := nextID()
	return CreateTestUserWithName(t, db, role, fmt.Sprintf("%s%d", role, n), fmt.Sprintf("Test %s %d", role, n))
}

// CreateTestUserWithName creates a user with the given username and full name.
func CreateTestUserWithName(t *testing.T, db *gorm.DB, role models.Role, username, fullName string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		FullName:     fullName,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()

	category := &models.Category{Name: fmt.Sprintf("Test Category %d", nextID())}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestCategoryWithName creates a category with the given name.
func CreateTestCategoryWithName(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	category := &models.Category{Name: name}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestSubCategory creates a subcategory under the given category.
func CreateTestSubCategory(t *testing.T, db *gorm.DB, categoryID uint) *models.SubCategory {
	t.Helper()

	sub := &models.SubCategory{
		Name:       fmt.Sprintf("Test SubCategory %d", nextID()),
		CategoryID: categoryID,
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("failed to create test subcategory: %v", err)
	}
	return sub
}

// CreateTestTemplate creates a query template in the given category.
func CreateTestTemplate(t *testing.T, db *gorm.DB, categoryID uint) *models.QueryTemplate {
	t.Helper()

	tpl := &models.QueryTemplate{
		CategoryID: categoryID,
		Text:       fmt.Sprintf("Test template text %d", nextID()),
	}
	if err := db.Create(tpl).Error; err != nil {
		t.Fatalf("failed to create test template: %v", err)
	}
	return tpl
}

// CreateTestQuery creates a query in the given status with the given role
// slots. Employee and manager may be zero to leave those slots empty. A
// "created" ledger entry is written so the every-query-has-a-ledger
// invariant holds for fixtures too.
func CreateTestQuery(t *testing.T, db *gorm.DB, status models.QueryStatus, auditorID, employeeID, managerID uint) *models.Query {
	t.Helper()

	query := &models.Query{
		CategoryID: CreateTestCategory(t, db).ID,
		CustomText: fmt.Sprintf("Test query %d", nextID()),
		Status:     status,
		AuditorID:  auditorID,
	}
	if employeeID != 0 {
		query.AssignedEmployeeID = &employeeID
	}
	if managerID != 0 {
		query.ManagerID = &managerID
	}
	if err := db.Create(query).Error; err != nil {
		t.Fatalf("failed to create test query: %v", err)
	}

	entry := &models.AuditTrail{
		QueryID: query.ID,
		Action:  models.ActionCreated,
		Detail:  fmt.Sprintf("Query created by auditor (ID %d) test", auditorID),
		UserID:  &query.AuditorID,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test ledger entry: %v", err)
	}
	return query
}
