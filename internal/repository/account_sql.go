package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"automind-api/internal/model"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const accountColumns = `id, username, role, payout_identifier, credential`

// CreateAccount inserts a new account. Username uniqueness is enforced by the
// UNIQUE constraint so concurrent signups cannot both succeed.
func (s *SQLStore) CreateAccount(ctx context.Context, account *model.Account) (int64, error) {
	id, err := s.insert(ctx, s.db,
		`INSERT INTO accounts (username, role, payout_identifier, credential) VALUES (?, ?, ?, ?)`,
		account.Username, account.Role, account.PayoutIdentifier, account.Credential)
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return 0, fmt.Errorf("username %q: %w", account.Username, ErrDuplicate)
		}
		return 0, fmt.Errorf("failed to create account: %w", err)
	}
	account.ID = id
	return id, nil
}

// GetAccount finds an account by id.
func (s *SQLStore) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	var a model.Account
	err := s.db.GetContext(ctx, &a, s.db.Rebind(`SELECT `+accountColumns+` FROM accounts WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

// GetAccountByUsername finds an account by its exact username.
func (s *SQLStore) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	var a model.Account
	err := s.db.GetContext(ctx, &a, s.db.Rebind(`SELECT `+accountColumns+` FROM accounts WHERE username = ?`), username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

// ListAccounts returns every account ordered by username ascending.
func (s *SQLStore) ListAccounts(ctx context.Context) ([]model.Account, error) {
	accounts := []model.Account{}
	if err := s.db.SelectContext(ctx, &accounts, `SELECT `+accountColumns+` FROM accounts ORDER BY username ASC, id ASC`); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// DeleteAccount removes the account and its messages atomically.
func (s *SQLStore) DeleteAccount(ctx context.Context, id int64) (int64, error) {
	var removed int64
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		found, err := s.exists(ctx, tx, "accounts", id, true)
		if err != nil {
			return fmt.Errorf("failed to get account: %w", err)
		}
		if !found {
			return fmt.Errorf("account %d: %w", id, ErrNotFound)
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM messages WHERE sender_id = ? OR receiver_id = ?`), id, id)
		if err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		removed, _ = res.RowsAffected()

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM accounts WHERE id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("account deleted", zap.Int64("account_id", id), zap.Int64("messages_removed", removed))
	return removed, nil
}

// Ensure SQLStore implements AccountRepository
var _ AccountRepository = (*SQLStore)(nil)
