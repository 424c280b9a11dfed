package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "querydesk/internal/errors"
	"querydesk/internal/logger"
	"querydesk/internal/models"
)

// backfillPhrases is the vocabulary of detail strings from before actor
// names were embedded. Only entries matching one of these are candidates for
// the backfill rewrite.
var backfillPhrases = []string{
	"Assigned to employee",
	"Submitted to manager",
	"Manager approved submission",
	"Manager rejected submission",
	"Auditor closed query",
	"Auditor reopened query",
	"File",
	"Comment added",
}

// ledgerService is the append-only audit ledger for queries.
type ledgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB) LedgerServicer {
	return &ledgerService{db: db}
}

// Append writes one ledger entry on the caller's transaction handle. The
// entry commits or rolls back together with whatever transition produced it;
// a failed append must fail the transition, so the error propagates.
func (s *ledgerService) Append(tx *gorm.DB, queryID uint, action models.AuditAction, detail string, userID, targetID *uint) error {
	entry := &models.AuditTrail{
		QueryID:  queryID,
		Action:   action,
		Detail:   detail,
		UserID:   userID,
		TargetID: targetID,
	}
	if err := tx.Create(entry).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// List returns a query's ledger in insertion order. Insertion order is
// chronological order; ID is the tiebreaker for entries created within the
// same clock tick.
func (s *ledgerService) List(queryID uint) ([]models.AuditTrail, error) {
	var entries []models.AuditTrail
	if err := s.db.Where("query_id = ?", queryID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entries, nil
}

// BackfillDetailNames rewrites ledger entries recorded before detail strings
// embedded actor names, appending " by (ID n) <name>". It is the one
// sanctioned read-modify-write over the ledger and requires exclusive access:
// the cmd/backfill tool takes an advisory lock before calling it. Idempotent
// by way of needsNameBackfill.
func (s *ledgerService) BackfillDetailNames() (int, error) {
	updated := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var entries []models.AuditTrail
		if err := tx.Order("id ASC").Find(&entries).Error; err != nil {
			return err
		}

		for i := range entries {
			entry := &entries[i]
			if entry.UserID == nil || !needsNameBackfill(entry.Detail) {
				continue
			}

			var user models.User
			if err := tx.First(&user, *entry.UserID).Error; err != nil {
				logger.Get().Warnw("skipping ledger entry with unknown actor",
					"entry_id", entry.ID, "user_id", *entry.UserID)
				continue
			}

			detail := strings.TrimSpace(fmt.Sprintf("%s by (ID %d) %s", entry.Detail, user.ID, user.DisplayName()))
			if err := tx.Model(entry).Update("detail", detail).Error; err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return updated, nil
}

// needsNameBackfill reports whether a detail string predates embedded actor
// names. Entries already containing both a parenthesized ID and the word
// "ID" are left alone, which is what makes the backfill idempotent.
func needsNameBackfill(detail string) bool {
	if strings.Contains(detail, ")") && strings.Contains(detail, "ID") {
		return false
	}
	for _, phrase := range backfillPhrases {
		if strings.Contains(detail, phrase) {
			return true
		}
	}
	return false
}
