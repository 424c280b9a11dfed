package database

import (
	"fmt"
	"time"

	"querydesk/internal/config"
	"querydesk/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"querydesk/internal/models"
)

// allModels lists every GORM model, in dependency order, for sqlite
// auto-migration.
var allModels = []interface{}{
	&models.User{},
	&models.Category{},
	&models.SubCategory{},
	&models.QueryTemplate{},
	&models.Query{},
	&models.Comment{},
	&models.Attachment{},
	&models.AuditTrail{},
}

// Manager handles database connections and schema migrations.
type Manager struct {
	db     *gorm.DB
	url    string
	driver string
}

// NewManager opens a database connection for the configured driver.
// Postgres is the default; sqlite backs the single-binary embedded
// deployment.
func NewManager(cfg *config.Config) (*Manager, error) {
	var (
		db  *gorm.DB
		url string
		err error
	)

	switch cfg.DBDriver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
		url = "sqlite3://" + cfg.DBPath
	default:
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		url = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Manager{db: db, url: url, driver: cfg.DBDriver}, nil
}

// RunMigrations brings the schema up to date. Postgres deployments use the
// SQL migrations in migrations/; the embedded sqlite deployment derives the
// schema from the models instead, since the migration files are written in
// Postgres dialect.
func (m *Manager) RunMigrations() error {
	logger.Get().Info("Running database migrations...")

	if m.driver == "sqlite" {
		return m.db.AutoMigrate(allModels...)
	}

	mig, err := migrate.New("file://migrations", m.url)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := mig.Close()
		if srcErr != nil {
			logger.Get().Warnf("migrate source close error: %v", srcErr)
		}
		if dbErr != nil {
			logger.Get().Warnf("migrate database close error: %v", dbErr)
		}
	}()

	if err := mig.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Get().Info("Database migrations completed successfully")
	return nil
}

// URL returns the migrate-compatible database URL.
func (m *Manager) URL() string {
	return m.url
}

// DB returns the underlying GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}
