// Command seed inserts baseline sample users and taxonomy for local
// development. It is idempotent: existing users are left alone, and the
// taxonomy is only created when no categories exist yet.
package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"querydesk/internal/config"
	"querydesk/internal/database"
	"querydesk/internal/logger"
	"querydesk/internal/models"
)

const seedPassword = "password"

var sampleUsers = []struct {
	username string
	fullName string
	role     models.Role
}{
	{"auditor1", "Auditor One", models.RoleAuditor},
	{"auditor2", "Auditor Two", models.RoleAuditor},
	{"auditor3", "Auditor Three", models.RoleAuditor},
	{"employee1", "Employee One", models.RoleEmployee},
	{"employee2", "Employee Two", models.RoleEmployee},
	{"employee3", "Employee Three", models.RoleEmployee},
	{"employee4", "Employee Four", models.RoleEmployee},
	{"employee5", "Employee Five", models.RoleEmployee},
	{"manager1", "Manager One", models.RoleManager},
	{"manager2", "Manager Two", models.RoleManager},
}

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Named("seed").Fatalf("Seed error: %v", err)
	}
}

func run() error {
	log := logger.Named("seed")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	db := dbManager.DB()

	added, err := seedUsers(db)
	if err != nil {
		return err
	}
	if added > 0 {
		log.Infof("Added %d new users.", added)
	} else {
		log.Info("All sample users already present.")
	}

	if err := seedTaxonomy(db); err != nil {
		return err
	}

	log.Info("Seed data inserted.")
	return nil
}

func seedUsers(db *gorm.DB) (int, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, su := range sampleUsers {
		var count int64
		db.Model(&models.User{}).Where("username = ?", su.username).Count(&count)
		if count > 0 {
			continue
		}

		user := &models.User{
			Username:     su.username,
			PasswordHash: string(hash),
			Role:         su.role,
			FullName:     su.fullName,
		}
		if err := db.Create(user).Error; err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

func seedTaxonomy(db *gorm.DB) error {
	var count int64
	db.Model(&models.Category{}).Count(&count)
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		financial := &models.Category{Name: "Financial"}
		operational := &models.Category{Name: "Operational"}
		if err := tx.Create(financial).Error; err != nil {
			return err
		}
		if err := tx.Create(operational).Error; err != nil {
			return err
		}

		payable := &models.SubCategory{Name: "Accounts Payable", CategoryID: financial.ID}
		receivable := &models.SubCategory{Name: "Accounts Receivable", CategoryID: financial.ID}
		branchOps := &models.SubCategory{Name: "Branch Operations", CategoryID: operational.ID}
		for _, sub := range []*models.SubCategory{payable, receivable, branchOps} {
			if err := tx.Create(sub).Error; err != nil {
				return err
			}
		}

		templates := []*models.QueryTemplate{
			{CategoryID: financial.ID, SubCategoryID: &payable.ID, Text: "Provide details of outstanding vendor invoices over 90 days."},
			{CategoryID: financial.ID, SubCategoryID: &receivable.ID, Text: "List top 10 overdue customer receivables."},
			{CategoryID: operational.ID, SubCategoryID: &branchOps.ID, Text: "Describe daily cash reconciliation process."},
		}
		for _, tpl := range templates {
			if err := tx.Create(tpl).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
