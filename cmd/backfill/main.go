// Command backfill rewrites audit ledger entries recorded before detail
// strings embedded actor names, appending "by (ID n) <name>" to each.
// It is safe to run repeatedly; entries already carrying name information
// are skipped.
//
// The rewrite is a read-modify-write over otherwise append-only data, so it
// must not run concurrently with the API. Against Postgres it takes an
// advisory lock to guarantee that; against sqlite, run it while the API is
// stopped.
package main

import (
	"fmt"
	"os"

	"querydesk/internal/config"
	"querydesk/internal/database"
	"querydesk/internal/logger"
	"querydesk/internal/services"
)

// ledgerBackfillLockID identifies the advisory lock shared by all backfill
// invocations against one database.
const ledgerBackfillLockID = 874311

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Named("backfill").Fatalf("Backfill error: %v", err)
	}
}

func run() error {
	log := logger.Named("backfill")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	db := dbManager.DB()

	if cfg.DBDriver != "sqlite" {
		if err := db.Exec("SELECT pg_advisory_lock(?)", ledgerBackfillLockID).Error; err != nil {
			return fmt.Errorf("failed to take advisory lock: %w", err)
		}
		defer func() {
			if err := db.Exec("SELECT pg_advisory_unlock(?)", ledgerBackfillLockID).Error; err != nil {
				log.Warnf("failed to release advisory lock: %v", err)
			}
		}()
	} else {
		log.Warn("sqlite has no advisory locks; make sure the API is stopped")
	}

	ledger := services.NewLedgerService(db)
	updated, err := ledger.BackfillDetailNames()
	if err != nil {
		return err
	}

	log.Infof("Backfill complete. Updated %d audit trail rows.", updated)
	return nil
}
