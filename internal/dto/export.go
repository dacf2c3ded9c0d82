package dto

import (
	"time"

	"github.com/spendlog/spendlog/internal/core/domain"
)

// BackupVersion identifies the backup file layout.
const BackupVersion = "1"

// BackupData carries every exportable collection. Imports append these
// records under fresh IDs; they never replace existing data.
type BackupData struct {
	Transactions  []domain.Transaction  `json:"transactions"`
	Accounts      []domain.Account      `json:"accounts"`
	Categories    []domain.Category     `json:"categories"`
	Budgets       []domain.Budget       `json:"budgets"`
	Subscriptions []domain.Subscription `json:"subscriptions"`
}

// BackupUser carries the exporting user's identity and plan metadata.
// Plan fields are only trusted on import when the signature verifies.
type BackupUser struct {
	Email       string     `json:"email"`
	Plan        string     `json:"plan"`
	TrialEndsAt *time.Time `json:"trialEndsAt,omitempty"`
	IsPro       bool       `json:"isPro"`
}

// BackupMeta describes the export itself.
type BackupMeta struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
}

// BackupFile is the on-disk backup format. Signature is a hex HMAC-SHA256
// over the canonical JSON of {data, user}, keyed by the shared secret
// salted with the exporting user's email.
type BackupFile struct {
	Data      BackupData `json:"data"`
	User      BackupUser `json:"user"`
	Meta      BackupMeta `json:"meta"`
	Signature string     `json:"signature"`
}

// ImportResult reports what a backup import did.
type ImportResult struct {
	SignatureVerified bool `json:"signatureVerified"`
	// PlanApplied is true when verified plan metadata was copied onto the
	// importing account.
	PlanApplied   bool `json:"planApplied"`
	Transactions  int  `json:"transactions"`
	Accounts      int  `json:"accounts"`
	Categories    int  `json:"categories"`
	Budgets       int  `json:"budgets"`
	Subscriptions int  `json:"subscriptions"`
}
