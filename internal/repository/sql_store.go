package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// SQLStore implements Store on top of database/sql through sqlx.
// Queries are written with ? placeholders and rebound for the dialect.
type SQLStore struct {
	db      *sqlx.DB
	dialect Dialect
	log     *zap.Logger
	clock   func() time.Time
}

// NewSQLStore opens the database, sizes the pool for the dialect and creates
// the schema if it does not exist.
func NewSQLStore(ctx context.Context, dialect Dialect, dsn string, logger *zap.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sqlx.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dialect.Name, err)
	}

	db.SetMaxOpenConns(dialect.MaxOpenConns)
	db.SetMaxIdleConns(dialect.MaxIdleConns)
	db.SetConnMaxLifetime(dialect.connMaxLifetime())

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", dialect.Name, err)
	}

	s := &SQLStore{db: db, dialect: dialect, log: logger.Named("store"), clock: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	s.log.Info("store initialized",
		zap.String("dialect", dialect.Name),
		zap.Int("max_open_conns", dialect.MaxOpenConns))
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.Schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SetClock replaces the clock used to stamp created_at on new rows.
func (s *SQLStore) SetClock(clock func() time.Time) {
	s.clock = clock
}

// now returns the current time in UTC at microsecond precision, which every
// supported backend stores without loss.
func (s *SQLStore) now() time.Time {
	return s.clock().UTC().Truncate(time.Microsecond)
}

// Dialect returns the dialect the store was opened with.
func (s *SQLStore) Dialect() Dialect {
	return s.dialect
}

// inTx runs fn in a transaction, committing only if fn returns nil.
func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insert executes an INSERT and returns the generated id.
func (s *SQLStore) insert(ctx context.Context, ext sqlx.ExtContext, query string, args ...interface{}) (int64, error) {
	if s.dialect.Returning {
		var id int64
		err := sqlx.GetContext(ctx, ext, &id, ext.Rebind(query+" RETURNING id"), args...)
		return id, err
	}

	res, err := ext.ExecContext(ctx, ext.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// exists reports whether a row with id exists in table, optionally locking it.
func (s *SQLStore) exists(ctx context.Context, q sqlx.ExtContext, table string, id int64, lock bool) (bool, error) {
	query := "SELECT id FROM " + table + " WHERE id = ?"
	if lock {
		query += s.dialect.LockClause
	}

	var found int64
	err := sqlx.GetContext(ctx, q, &found, q.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Ping verifies the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetStats returns row counts for the admin dashboard.
func (s *SQLStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})
	stats["dialect"] = s.dialect.Name

	counts := []struct {
		key   string
		query string
	}{
		{"total_accounts", "SELECT COUNT(*) FROM accounts"},
		{"total_messages", "SELECT COUNT(*) FROM messages"},
		{"total_listings", "SELECT COUNT(*) FROM listings"},
		{"total_requests", "SELECT COUNT(*) FROM requests"},
	}
	for _, c := range counts {
		var n int64
		if err := s.db.GetContext(ctx, &n, c.query); err != nil {
			return nil, err
		}
		stats[c.key] = n
	}

	type groupCount struct {
		Key   string `db:"k"`
		Count int64  `db:"n"`
	}

	var roles []groupCount
	if err := s.db.SelectContext(ctx, &roles, "SELECT role AS k, COUNT(*) AS n FROM accounts GROUP BY role"); err != nil {
		return nil, err
	}
	byRole := make(map[string]int64, len(roles))
	for _, r := range roles {
		byRole[r.Key] = r.Count
	}
	stats["accounts_by_role"] = byRole

	var statuses []groupCount
	if err := s.db.SelectContext(ctx, &statuses, "SELECT status AS k, COUNT(*) AS n FROM requests GROUP BY status"); err != nil {
		return nil, err
	}
	byStatus := make(map[string]int64, len(statuses))
	for _, r := range statuses {
		byStatus[r.Key] = r.Count
	}
	stats["requests_by_status"] = byStatus

	dbStats := s.db.Stats()
	stats["connections"] = map[string]interface{}{
		"open":     dbStats.OpenConnections,
		"in_use":   dbStats.InUse,
		"idle":     dbStats.Idle,
		"max_open": dbStats.MaxOpenConnections,
	}

	return stats, nil
}

// Close closes the database connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Ensure SQLStore implements Store
var _ Store = (*SQLStore)(nil)
