// Package scanstore persists completed scan results across runs in a
// key-value table backed by SQLite, MySQL or PostgreSQL.
package scanstore

import (
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/essalab/essa/internal/contract"
	"github.com/essalab/essa/schema"
)

// ScanStoreImpl handles durable scan storage using various database backends.
type ScanStoreImpl struct {
	db         *sql.DB
	tableName  string
	backend    schema.DatabaseBackend
	driverName string
	connStr    string
	location   string
}

var _ contract.ScanStore = &ScanStoreImpl{} // Compile-time check

var tableNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func validateTableName(name string) error {
	if !tableNameRe.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

// NewScanStore initializes and returns a new ScanStore based on the backend type.
func NewScanStore(tableName string, backend schema.DatabaseBackend, connStr string) (contract.ScanStore, error) {
	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	var db *sql.DB
	var err error
	var driverName, location string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetStoreDBFilePath()
		}
		location = dbPath
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		driverName = "mysql"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL store: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=secret dbname=postgres
		driverName = "pgx"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL store: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled persistence
		return &ScanStoreImpl{
			db:        nil,
			tableName: tableName,
			backend:   backend,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	// Ping to verify connection (skip for NoneBackend)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	if _, err := db.Exec(getCreateTableQuery(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return &ScanStoreImpl{
		db:         db,
		tableName:  tableName,
		backend:    backend,
		driverName: driverName,
		connStr:    connStr,
		location:   location,
	}, nil
}

// getCreateTableQuery returns the CREATE TABLE query for the given backend.
func getCreateTableQuery(tableName string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				scan_key VARCHAR(255) PRIMARY KEY,
				scan_value BLOB NOT NULL,
				scan_version INT NOT NULL,
				scan_timestamp BIGINT NOT NULL
			);
		`, tableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				scan_key TEXT PRIMARY KEY,
				scan_value BYTEA NOT NULL,
				scan_version INTEGER NOT NULL,
				scan_timestamp BIGINT NOT NULL
			);
		`, tableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				scan_key TEXT PRIMARY KEY,
				scan_value BLOB NOT NULL,
				scan_version INTEGER NOT NULL,
				scan_timestamp INTEGER NOT NULL
			);
		`, tableName)
	}
}

// Get retrieves a stored scan by key.
func (ss *ScanStoreImpl) Get(key string) ([]byte, int, int64, error) {
	// Return not found error for NoneBackend
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return nil, 0, 0, sql.ErrNoRows
	}

	var value []byte
	var version int
	var ts int64

	query := fmt.Sprintf(`SELECT scan_value, scan_version, scan_timestamp FROM %s WHERE scan_key = %s`,
		ss.tableName, ss.getPlaceholder())
	row := ss.db.QueryRow(query, key)
	if err := row.Scan(&value, &version, &ts); err != nil {
		return nil, 0, 0, err
	}
	return value, version, ts, nil
}

// Set inserts or replaces a stored scan.
func (ss *ScanStoreImpl) Set(key string, value []byte, version int, timestamp int64) error {
	// Skip for NoneBackend
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return nil
	}
	_, err := ss.db.Exec(ss.getUpsertQuery(), key, value, version, timestamp)
	return err
}

// All returns every stored scan, newest first.
func (ss *ScanStoreImpl) All() ([]schema.StoredScan, error) {
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT scan_key, scan_value, scan_version, scan_timestamp FROM %s ORDER BY scan_timestamp DESC`, ss.tableName)
	rows, err := ss.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []schema.StoredScan
	for rows.Next() {
		var s schema.StoredScan
		if err := rows.Scan(&s.Key, &s.Payload, &s.Version, &s.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Clear removes every stored scan.
func (ss *ScanStoreImpl) Clear() error {
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return nil
	}
	_, err := ss.db.Exec(fmt.Sprintf(`DELETE FROM %s`, ss.tableName))
	return err
}

// getPlaceholder returns the parameter placeholder for the backend.
func (ss *ScanStoreImpl) getPlaceholder() string {
	switch ss.backend {
	case schema.PostgreSQLBackend:
		return "$1"
	default: // SQLite and MySQL
		return "?"
	}
}

// getUpsertQuery returns the UPSERT query for the backend.
func (ss *ScanStoreImpl) getUpsertQuery() string {
	switch ss.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (scan_key, scan_value, scan_version, scan_timestamp) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE scan_value = new.scan_value, scan_version = new.scan_version, scan_timestamp = new.scan_timestamp`, ss.tableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (scan_key, scan_value, scan_version, scan_timestamp) VALUES ($1, $2, $3, $4)
			ON CONFLICT (scan_key) DO UPDATE SET scan_value = EXCLUDED.scan_value, scan_version = EXCLUDED.scan_version, scan_timestamp = EXCLUDED.scan_timestamp`, ss.tableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (scan_key, scan_value, scan_version, scan_timestamp) VALUES (?, ?, ?, ?)`, ss.tableName)
	}
}

// Close closes the underlying DB connection.
func (ss *ScanStoreImpl) Close() error {
	if ss.db != nil {
		return ss.db.Close()
	}
	return nil
}

// GetStatus returns status information about the scan store.
func (ss *ScanStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:   string(ss.backend),
		Connected: ss.db != nil,
		Location:  ss.location,
	}
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return status, nil
	}

	row := ss.db.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %s`, ss.tableName))
	if err := row.Scan(&status.EntryCount); err != nil {
		return status, fmt.Errorf("failed to get entry count: %w", err)
	}
	if status.EntryCount == 0 {
		return status, nil
	}

	row = ss.db.QueryRow(fmt.Sprintf(`SELECT MIN(scan_timestamp), MAX(scan_timestamp) FROM %s`, ss.tableName))
	if err := row.Scan(&status.OldestUnix, &status.NewestUnix); err != nil {
		return status, fmt.Errorf("failed to get entry times: %w", err)
	}
	return status, nil
}
