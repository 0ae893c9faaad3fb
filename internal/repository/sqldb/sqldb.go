// Package sqldb implements the repository interfaces on top of database/sql.
//
// ONE GATEWAY, THREE DRIVERS:
// The registration table is a single flat table with seven text columns, so
// the same SQL runs everywhere. Only two things differ per driver:
//   - the DSN (built here from host/user/password/name)
//   - the placeholder style: sqlite and mysql take "?", postgres takes "$1"
//
// Drivers register themselves with database/sql through blank imports:
//
//	sqlite   → modernc.org/sqlite (pure Go, default, used by the tests)
//	mysql    → github.com/go-sql-driver/mysql
//	postgres → github.com/jackc/pgx/v5/stdlib (registered as "pgx")
//
// CONNECTION POOL:
// *sql.DB is a pool, not a connection. The gateway is handed one at
// construction and every operation borrows a connection for exactly one
// statement, so concurrent requests never share cross-request state.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported driver names, as accepted in configuration.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Options are the connection parameters. Path is used by sqlite only;
// the rest by mysql and postgres.
type Options struct {
	Driver   string
	Path     string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn    *sql.DB
	dialect dialect
}

type dialect int

const (
	dialectSQLite dialect = iota
	dialectMySQL
	dialectPostgres
)

// New opens the pool described by opts, verifies it with a ping, and makes
// sure Registration_Table exists.
func New(ctx context.Context, opts Options) (*DB, error) {
	driverName, dsn, d, err := dataSource(opts)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqldb: opening %s database: %w", opts.Driver, err)
	}

	// Every connection to ":memory:" is a brand-new empty database, so the
	// pool must never grow past the one connection that holds the table.
	if opts.Driver == DriverSQLite && opts.Path == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqldb: pinging %s database: %w", opts.Driver, err)
	}

	if opts.Driver == DriverSQLite {
		// WAL lets readers proceed while a registration is being written.
		if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqldb: setting WAL mode: %w", err)
		}
	}

	db := &DB{conn: conn, dialect: d}

	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqldb: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the store is reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate creates the table if it is missing. There is no versioning: the
// schema is the one the existing deployments already have, and
// CREATE TABLE IF NOT EXISTS leaves it untouched.
//
// No primary key and no UNIQUE on Email: duplicate registrations are
// allowed and must stay allowed.
func (db *DB) migrate(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS Registration_Table (
			Name          TEXT NOT NULL,
			Gender        TEXT NOT NULL,
			Email         TEXT NOT NULL,
			Date_of_birth TEXT NOT NULL,
			Password      TEXT NOT NULL,
			Weight        TEXT NOT NULL,
			Height        TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating Registration_Table: %w", err)
	}
	return nil
}

// dataSource maps Options to a database/sql driver name and DSN.
func dataSource(opts Options) (driverName, dsn string, d dialect, err error) {
	switch opts.Driver {
	case DriverSQLite, "":
		if opts.Path == "" {
			return "", "", 0, fmt.Errorf("sqldb: sqlite requires a database path")
		}
		return "sqlite", opts.Path, dialectSQLite, nil

	case DriverMySQL:
		cfg := mysql.NewConfig()
		cfg.User = opts.User
		cfg.Passwd = opts.Password
		cfg.Net = "tcp"
		cfg.Addr = hostPort(opts.Host, opts.Port, 3306)
		cfg.DBName = opts.Name
		return "mysql", cfg.FormatDSN(), dialectMySQL, nil

	case DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(opts.User, opts.Password),
			Host:     hostPort(opts.Host, opts.Port, 5432),
			Path:     "/" + opts.Name,
			RawQuery: "sslmode=disable",
		}
		return "pgx", u.String(), dialectPostgres, nil

	default:
		return "", "", 0, fmt.Errorf("sqldb: unsupported driver %q", opts.Driver)
	}
}

func hostPort(host string, port, defaultPort int) string {
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// rebind rewrites "?" placeholders for drivers that number them.
// None of our statements contain a literal "?" inside a string.
func (db *DB) rebind(query string) string {
	if db.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// equals returns a "column = ?" predicate that compares byte for byte.
// MySQL's default collations fold case and accents, so the comparison is
// forced to BINARY there; existing tables keep whatever collation they were
// created with, which is why this lives in the query and not the schema.
func (db *DB) equals(column string) string {
	if db.dialect == dialectMySQL {
		return "BINARY " + column + " = ?"
	}
	return column + " = ?"
}
