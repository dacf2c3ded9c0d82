package services

import (
	"context"

	"github.com/spendlog/spendlog/internal/dto"
)

// ExportSvcFacade covers data portability: CSV export of the ledger and the
// signed JSON backup round trip.
type ExportSvcFacade interface {
	// ExportTransactionsCSV renders the user's full ledger as CSV.
	ExportTransactionsCSV(ctx context.Context, userID string) ([]byte, error)
	// ExportBackup produces a full-account snapshot signed with an HMAC
	// keyed on the exporting user.
	ExportBackup(ctx context.Context, userID string) (*dto.BackupFile, error)
	// ImportBackup appends a snapshot's records under fresh IDs, with
	// balance effects skipped. Plan metadata is honored only when the
	// signature verifies.
	ImportBackup(ctx context.Context, userID string, backup dto.BackupFile) (*dto.ImportResult, error)
}
