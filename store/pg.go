package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/clearvault/vaultd/domain"
)

// PoolMaxConns is the shared connection pool cap from spec.md §5.
const PoolMaxConns = 10

// PostgresStore is the production Store, backed by a pooled pgx
// connection.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Open applies migrations (if any are pending) and returns a Store backed
// by a pool capped at maxConns connections. maxConns <= 0 falls back to
// PoolMaxConns.
func Open(ctx context.Context, databaseURL string, maxConns int) (*PostgresStore, error) {
	if err := runMigrations(databaseURL); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}
	if maxConns <= 0 {
		maxConns = PoolMaxConns
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = int32(maxConns)

	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

var _ Store = (*PostgresStore)(nil)

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) GetVault(ctx context.Context, owner string) (*domain.Vault, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT owner, vault_address, token_account, total_balance, locked_balance,
		       available_balance, total_deposited, total_withdrawn, created_at,
		       updated_at, status
		FROM vaults WHERE owner = $1`, owner)

	v := &domain.Vault{}
	err := row.Scan(
		&v.Owner, &v.VaultAddress, &v.TokenAccount, &v.TotalBalance, &v.LockedBalance,
		&v.AvailableBalance, &v.TotalDeposited, &v.TotalWithdrawn, &v.CreatedAt,
		&v.UpdatedAt, &v.Status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *PostgresStore) UpsertVault(ctx context.Context, v *domain.Vault) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO vaults (
			owner, vault_address, token_account, total_balance, locked_balance,
			available_balance, total_deposited, total_withdrawn, created_at,
			updated_at, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (owner) DO UPDATE SET
			vault_address = EXCLUDED.vault_address,
			token_account = EXCLUDED.token_account,
			total_balance = EXCLUDED.total_balance,
			locked_balance = EXCLUDED.locked_balance,
			available_balance = EXCLUDED.available_balance,
			total_deposited = EXCLUDED.total_deposited,
			total_withdrawn = EXCLUDED.total_withdrawn,
			updated_at = EXCLUDED.updated_at,
			status = EXCLUDED.status`,
		v.Owner, v.VaultAddress, v.TokenAccount, v.TotalBalance, v.LockedBalance,
		v.AvailableBalance, v.TotalDeposited, v.TotalWithdrawn, v.CreatedAt,
		v.UpdatedAt, v.Status,
	)
	return err
}

func (s *PostgresStore) UpdateBalances(ctx context.Context, owner string, total, locked, available int64) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE vaults
		SET total_balance = $2, locked_balance = $3, available_balance = $4, updated_at = now()
		WHERE owner = $1`, owner, total, locked, available)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NewVaultError(domain.ErrVaultNotFound, "vault not found: "+owner)
	}
	return nil
}

func (s *PostgresStore) ListActiveVaults(ctx context.Context, limit, offset int) ([]*domain.Vault, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT owner, vault_address, token_account, total_balance, locked_balance,
		       available_balance, total_deposited, total_withdrawn, created_at,
		       updated_at, status
		FROM vaults
		WHERE status = 'active'
		ORDER BY owner
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vaults []*domain.Vault
	for rows.Next() {
		v := &domain.Vault{}
		if err := rows.Scan(
			&v.Owner, &v.VaultAddress, &v.TokenAccount, &v.TotalBalance, &v.LockedBalance,
			&v.AvailableBalance, &v.TotalDeposited, &v.TotalWithdrawn, &v.CreatedAt,
			&v.UpdatedAt, &v.Status,
		); err != nil {
			return nil, err
		}
		vaults = append(vaults, v)
	}
	return vaults, rows.Err()
}

func (s *PostgresStore) CreateJournal(ctx context.Context, e *domain.JournalEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO transactions (
			id, vault_owner, transaction_type, amount, signature, status,
			balance_before, balance_after, counterparty, note, created_at,
			updated_at, confirmed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		e.ID, e.VaultOwner, e.Type, e.Amount, e.Signature, e.Status,
		e.BalanceBefore, e.BalanceAfter, e.Counterparty, e.Note, e.CreatedAt,
		e.UpdatedAt, e.ConfirmedAt,
	)
	return err
}

func (s *PostgresStore) UpdateJournalStatus(
	ctx context.Context, id string, status domain.TransactionStatus, signature *string,
) error {

	if status == domain.TxStatusConfirmed {
		_, err := s.pool.Exec(ctx, `
			UPDATE transactions
			SET status = $2, signature = COALESCE($3, signature), updated_at = now(), confirmed_at = now()
			WHERE id = $1`, id, status, signature)
		return err
	}

	_, err := s.pool.Exec(ctx, `
		UPDATE transactions
		SET status = $2, signature = COALESCE($3, signature), updated_at = now()
		WHERE id = $1`, id, status, signature)
	return err
}

func (s *PostgresStore) ListJournal(
	ctx context.Context, owner string, limit, offset int, txType *domain.TransactionType,
) ([]*domain.JournalEntry, error) {

	limit, offset = clampLimit(limit, offset)

	query := `
		SELECT id, vault_owner, transaction_type, amount, signature, status,
		       balance_before, balance_after, counterparty, note, created_at,
		       updated_at, confirmed_at
		FROM transactions
		WHERE vault_owner = $1`
	args := []any{owner}

	if txType != nil {
		query += " AND transaction_type = $2"
		args = append(args, *txType)
		query += " ORDER BY created_at DESC LIMIT $3 OFFSET $4"
		args = append(args, limit, offset)
	} else {
		query += " ORDER BY created_at DESC LIMIT $2 OFFSET $3"
		args = append(args, limit, offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.JournalEntry
	for rows.Next() {
		e := &domain.JournalEntry{}
		if err := rows.Scan(
			&e.ID, &e.VaultOwner, &e.Type, &e.Amount, &e.Signature, &e.Status,
			&e.BalanceBefore, &e.BalanceAfter, &e.Counterparty, &e.Note, &e.CreatedAt,
			&e.UpdatedAt, &e.ConfirmedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) AggregateTVL(ctx context.Context) (total, locked, available, activeCount int64, err error) {
	row := s.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(total_balance), 0),
			COALESCE(SUM(locked_balance), 0),
			COALESCE(SUM(available_balance), 0),
			COUNT(*)
		FROM vaults WHERE status = 'active'`)
	err = row.Scan(&total, &locked, &available, &activeCount)
	return
}

func (s *PostgresStore) CreateBalanceSnapshot(ctx context.Context, snap *domain.BalanceSnapshot) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO balance_snapshots (
			vault_owner, total_balance, locked_balance, available_balance, timestamp, snapshot_type
		) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		snap.VaultOwner, snap.TotalBalance, snap.LockedBalance, snap.AvailableBalance,
		snap.Timestamp, snap.SnapshotType,
	).Scan(&snap.ID)
}

func (s *PostgresStore) CreateTVLSnapshot(ctx context.Context, snap *domain.TvlSnapshot) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO tvl_snapshots (
			total_value_locked, active_vaults, total_locked, total_available, timestamp
		) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		snap.TotalValueLocked, snap.ActiveVaults, snap.TotalLocked, snap.TotalAvailable,
		snap.Timestamp,
	).Scan(&snap.ID)
}

func (s *PostgresStore) CreateReconciliationLog(ctx context.Context, e *domain.ReconciliationLogEntry) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO reconciliation_logs (
			vault_owner, expected_balance, actual_balance, difference, auto_fixed, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		e.VaultOwner, e.Expected, e.Actual, e.Difference, e.AutoFixed, e.Notes, e.CreatedAt,
	).Scan(&e.ID)
}
