package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/spendlog/spendlog/internal/apperrors"
	"github.com/spendlog/spendlog/internal/core/domain"
	portsrepo "github.com/spendlog/spendlog/internal/core/ports/repositories"
	"github.com/spendlog/spendlog/internal/utils/pagination"
)

const transactionColumns = `transaction_id, user_id, text, amount, category, account_id, date, subscription_id, transfer_group_id, created_at, created_by, last_updated_at, last_updated_by`

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for transaction data.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepository {
	return &PgxTransactionRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepository = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := row.Scan(
		&txn.TransactionID,
		&txn.UserID,
		&txn.Text,
		&txn.Amount,
		&txn.Category,
		&txn.AccountID,
		&txn.Date,
		&txn.SubscriptionID,
		&txn.TransferGroupID,
		&txn.CreatedAt,
		&txn.CreatedBy,
		&txn.LastUpdatedAt,
		&txn.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// applyBalanceDeltas locks the affected account rows and applies each delta as
// an in-database increment, all on the supplied transaction.
func applyBalanceDeltas(ctx context.Context, tx pgx.Tx, balanceDeltas map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(balanceDeltas) == 0 {
		return nil
	}

	// Lock in a deterministic order to avoid deadlocks between concurrent writers.
	accountIDs := make([]string, 0, len(balanceDeltas))
	for accID := range balanceDeltas {
		accountIDs = append(accountIDs, accID)
	}
	sort.Strings(accountIDs)

	rows, err := tx.Query(ctx, `SELECT account_id FROM accounts WHERE account_id = ANY($1) ORDER BY account_id FOR UPDATE;`, accountIDs)
	if err != nil {
		return fmt.Errorf("failed to lock accounts for balance update: %w", err)
	}
	locked := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan locked account row: %w", err)
		}
		locked++
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating locked account rows: %w", err)
	}
	if locked != len(accountIDs) {
		return fmt.Errorf("%w: one or more accounts in balance update not found", apperrors.ErrNotFound)
	}

	updateQuery := `
		UPDATE accounts
		SET balance = COALESCE(balance, 0) + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	batch := &pgx.Batch{}
	for _, accID := range accountIDs {
		batch.Queue(updateQuery, accID, balanceDeltas[accID], now, userID)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to apply balance deltas: %w", err)
	}
	return nil
}

// SaveTransactions inserts the given rows and applies balanceDeltas inside a
// single database transaction.
func (r *PgxTransactionRepository) SaveTransactions(ctx context.Context, txns []domain.Transaction, balanceDeltas map[string]decimal.Decimal) error {
	if len(txns) == 0 {
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	userID := txns[0].CreatedBy
	now := txns[0].CreatedAt

	insertQuery := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	batch := &pgx.Batch{}
	for _, txn := range txns {
		batch.Queue(insertQuery,
			txn.TransactionID,
			txn.UserID,
			txn.Text,
			txn.Amount,
			txn.Category,
			txn.AccountID,
			txn.Date,
			txn.SubscriptionID,
			txn.TransferGroupID,
			txn.CreatedAt,
			txn.CreatedBy,
			txn.LastUpdatedAt,
			txn.LastUpdatedBy,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: duplicate transaction ID", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert transaction batch: %w", err)
	}

	if err := applyBalanceDeltas(ctx, tx, balanceDeltas, userID, now); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateTransaction rewrites a transaction row and applies the edit's balance
// deltas inside one database transaction.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction, balanceDeltas map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE transactions
		SET text = $2, amount = $3, category = $4, account_id = $5, date = $6, last_updated_at = $7, last_updated_by = $8
		WHERE transaction_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		txn.TransactionID,
		txn.Text,
		txn.Amount,
		txn.Category,
		txn.AccountID,
		txn.Date,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", txn.TransactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := applyBalanceDeltas(ctx, tx, balanceDeltas, txn.LastUpdatedBy, txn.LastUpdatedAt); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// DeleteTransactions removes the given rows and applies the reverting deltas
// inside one database transaction.
func (r *PgxTransactionRepository) DeleteTransactions(ctx context.Context, transactionIDs []string, balanceDeltas map[string]decimal.Decimal) error {
	if len(transactionIDs) == 0 {
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var userID string
	err = tx.QueryRow(ctx, `SELECT user_id FROM transactions WHERE transaction_id = $1;`, transactionIDs[0]).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to resolve owner of transaction %s: %w", transactionIDs[0], err)
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = ANY($1);`, transactionIDs)
	if err != nil {
		return fmt.Errorf("failed to delete transactions: %w", err)
	}
	if cmdTag.RowsAffected() != int64(len(transactionIDs)) {
		return fmt.Errorf("%w: expected to delete %d transactions, deleted %d", apperrors.ErrNotFound, len(transactionIDs), cmdTag.RowsAffected())
	}

	if err := applyBalanceDeltas(ctx, tx, balanceDeltas, userID, time.Now()); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// FindTransactionByID retrieves a transaction by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE transaction_id = $1;
	`
	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	return txn, nil
}

// FindTransactionsByGroupID retrieves every leg of a transfer group.
func (r *PgxTransactionRepository) FindTransactionsByGroupID(ctx context.Context, transferGroupID string) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE transfer_group_id = $1
		ORDER BY amount;
	`
	rows, err := r.Pool.Query(ctx, query, transferGroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for group %s: %w", transferGroupID, err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row for group %s: %w", transferGroupID, err)
		}
		txns = append(txns, *txn)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating transaction rows for group %s: %w", transferGroupID, rows.Err())
	}

	return txns, nil
}

// ListTransactions retrieves a page of a user's transactions using token-based
// pagination. Ordering is date DESC with created_at DESC as tie-breaker.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to know whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
	`
	orderByClause := `ORDER BY date DESC, created_at DESC`

	args := []interface{}{userID}
	query := baseQuery

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, decodeErr)
		}
		query += ` AND (date, created_at) < ($2, $3) `
		args = append(args, lastDate, lastCreatedAt)
	}

	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	txns := make([]domain.Transaction, 0, fetchLimit)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction row for user %s: %w", userID, err)
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating transaction rows for user %s: %w", userID, err)
	}

	var nextTokenVal *string
	if len(txns) > limit {
		last := txns[limit-1]
		token := pagination.EncodeToken(last.Date, last.CreatedAt)
		nextTokenVal = &token
		txns = txns[:limit]
	}

	return txns, nextTokenVal, nil
}

// ListTransactionsByDateRange retrieves a user's transactions with dates in
// [from, to], oldest first.
func (r *PgxTransactionRepository) ListTransactionsByDateRange(ctx context.Context, userID string, from, to time.Time) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date, created_at;
	`
	rows, err := r.Pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions in range for user %s: %w", userID, err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row in range for user %s: %w", userID, err)
		}
		txns = append(txns, *txn)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating transaction rows in range for user %s: %w", userID, rows.Err())
	}

	return txns, nil
}

// ListAllTransactions retrieves a user's full transaction log, newest first.
// Used by CSV export and backup.
func (r *PgxTransactionRepository) ListAllTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query all transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row for user %s: %w", userID, err)
		}
		txns = append(txns, *txn)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating all transaction rows for user %s: %w", userID, rows.Err())
	}

	return txns, nil
}
