package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know by default.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Dialect captures what differs between the supported SQL backends.
type Dialect struct {
	Name       string
	DriverName string

	// Schema is executed statement by statement on open.
	Schema []string

	// LockClause is appended to a SELECT to lock the selected rows for the
	// rest of the transaction. Empty where writers are already serialized.
	LockClause string

	// Returning means inserts report their id with RETURNING instead of LastInsertId.
	Returning bool

	// MaxOpenConns and MaxIdleConns size the connection pool.
	MaxOpenConns int
	MaxIdleConns int

	isUniqueViolation func(error) bool
}

// IsUniqueViolation reports whether err was raised by a UNIQUE constraint.
func (d Dialect) IsUniqueViolation(err error) bool {
	return err != nil && d.isUniqueViolation != nil && d.isUniqueViolation(err)
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case "", "sqlite":
		return SQLiteDialect, nil
	case "postgres", "postgresql":
		return PostgresDialect, nil
	case "mysql":
		return MySQLDialect, nil
	}
	return Dialect{}, fmt.Errorf("unsupported store type %q", name)
}

// SQLiteDSN builds a modernc.org/sqlite DSN with foreign keys on and WAL mode.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite", path)
}

// SQLiteDialect is the embedded default. SQLite supports a single writer, so the
// pool holds one connection and transactions are serialized.
var SQLiteDialect = Dialect{
	Name:         "sqlite",
	DriverName:   "sqlite",
	MaxOpenConns: 1,
	MaxIdleConns: 1,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			role TEXT NOT NULL CHECK(role IN ('Customer','Mechanic','Dealer')),
			payout_identifier TEXT NOT NULL,
			credential TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sender_id INTEGER NOT NULL REFERENCES accounts(id),
			receiver_id INTEGER NOT NULL REFERENCES accounts(id),
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender_id, receiver_id, created_at, id)`,
		`CREATE TABLE IF NOT EXISTS listings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			brand TEXT NOT NULL,
			year INTEGER NOT NULL,
			kind TEXT NOT NULL CHECK(kind IN ('Sell','Rent')),
			price REAL NOT NULL,
			photo_reference TEXT,
			description TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_owner ON listings(owner_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS requests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			listing_id INTEGER NOT NULL REFERENCES listings(id),
			customer_id INTEGER NOT NULL,
			dealer_id INTEGER NOT NULL,
			kind TEXT NOT NULL CHECK(kind IN ('Buy','Rent')),
			status TEXT NOT NULL DEFAULT 'Pending' CHECK(status IN ('Pending','Accepted','Rejected')),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_dealer ON requests(dealer_id, status, created_at)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_requests_pending_pair ON requests(listing_id, customer_id) WHERE status = 'Pending'`,
	},
	isUniqueViolation: func(err error) bool {
		var se *sqlite.Error
		if !errors.As(err, &se) {
			return false
		}
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	},
}

// PostgresDialect uses lib/pq. Pending-pair uniqueness is also enforced by a
// partial unique index.
var PostgresDialect = Dialect{
	Name:         "postgres",
	DriverName:   "postgres",
	LockClause:   " FOR UPDATE",
	Returning:    true,
	MaxOpenConns: 25,
	MaxIdleConns: 10,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			role TEXT NOT NULL CHECK(role IN ('Customer','Mechanic','Dealer')),
			payout_identifier TEXT NOT NULL,
			credential TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id BIGSERIAL PRIMARY KEY,
			sender_id BIGINT NOT NULL REFERENCES accounts(id),
			receiver_id BIGINT NOT NULL REFERENCES accounts(id),
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender_id, receiver_id, created_at, id)`,
		`CREATE TABLE IF NOT EXISTS listings (
			id BIGSERIAL PRIMARY KEY,
			owner_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			brand TEXT NOT NULL,
			year INTEGER NOT NULL,
			kind TEXT NOT NULL CHECK(kind IN ('Sell','Rent')),
			price DOUBLE PRECISION NOT NULL,
			photo_reference TEXT,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_owner ON listings(owner_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS requests (
			id BIGSERIAL PRIMARY KEY,
			listing_id BIGINT NOT NULL REFERENCES listings(id),
			customer_id BIGINT NOT NULL,
			dealer_id BIGINT NOT NULL,
			kind TEXT NOT NULL CHECK(kind IN ('Buy','Rent')),
			status TEXT NOT NULL DEFAULT 'Pending' CHECK(status IN ('Pending','Accepted','Rejected')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_dealer ON requests(dealer_id, status, created_at)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_requests_pending_pair ON requests(listing_id, customer_id) WHERE status = 'Pending'`,
	},
	isUniqueViolation: func(err error) bool {
		var pe *pq.Error
		return errors.As(err, &pe) && pe.Code == "23505"
	},
}

// MySQLDialect uses go-sql-driver/mysql. MySQL has no partial indexes, so the
// pending-pair guard relies on locking the listing row for the transaction.
var MySQLDialect = Dialect{
	Name:         "mysql",
	DriverName:   "mysql",
	LockClause:   " FOR UPDATE",
	MaxOpenConns: 10,
	MaxIdleConns: 5,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(64) NOT NULL UNIQUE,
			role VARCHAR(16) NOT NULL CHECK(role IN ('Customer','Mechanic','Dealer')),
			payout_identifier VARCHAR(128) NOT NULL,
			credential VARCHAR(255) NOT NULL
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS messages (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			sender_id BIGINT NOT NULL,
			receiver_id BIGINT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			INDEX idx_messages_pair (sender_id, receiver_id, created_at, id),
			FOREIGN KEY (sender_id) REFERENCES accounts(id),
			FOREIGN KEY (receiver_id) REFERENCES accounts(id)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS listings (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			owner_id BIGINT NOT NULL,
			name VARCHAR(128) NOT NULL,
			brand VARCHAR(64) NOT NULL,
			year INT NOT NULL,
			kind VARCHAR(8) NOT NULL CHECK(kind IN ('Sell','Rent')),
			price DOUBLE NOT NULL,
			photo_reference VARCHAR(512),
			description TEXT,
			created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			INDEX idx_listings_owner (owner_id, created_at)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS requests (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			listing_id BIGINT NOT NULL,
			customer_id BIGINT NOT NULL,
			dealer_id BIGINT NOT NULL,
			kind VARCHAR(8) NOT NULL CHECK(kind IN ('Buy','Rent')),
			status VARCHAR(16) NOT NULL DEFAULT 'Pending' CHECK(status IN ('Pending','Accepted','Rejected')),
			created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			INDEX idx_requests_dealer (dealer_id, status, created_at),
			INDEX idx_requests_pair (listing_id, customer_id, status),
			FOREIGN KEY (listing_id) REFERENCES listings(id)
		) ENGINE=InnoDB`,
	},
	isUniqueViolation: func(err error) bool {
		var me *mysql.MySQLError
		return errors.As(err, &me) && me.Number == 1062
	},
}

// connMaxLifetime applies to networked backends; SQLite keeps its connection.
func (d Dialect) connMaxLifetime() time.Duration {
	if d.Name == "sqlite" {
		return 0
	}
	return 5 * time.Minute
}
