package scanstore

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/essalab/essa/internal/contract"
	"github.com/essalab/essa/schema"
)

// scanTable is the name of the table for scan persistence.
const scanTable = "scan_results"

// Global Manager instance for main logic.
var (
	Manager   = &ScanStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// ScanStoreManager manages the ScanStore instance.
type ScanStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	scans        contract.ScanStore
}

var _ contract.StoreManager = &ScanStoreManager{} // Compile-time check

// GetScanStore returns the scan store, or nil when persistence is disabled.
func (mgr *ScanStoreManager) GetScanStore() contract.ScanStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.scans
}

// InitStore initializes the global store manager. An empty backend disables
// persistence entirely.
func InitStore(backend schema.DatabaseBackend, connStr string) error {
	var initErr error
	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		if backend == "" {
			return
		}
		store, err := NewScanStore(scanTable, backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize scan store: %w", err)
			return
		}
		Manager.Lock()
		Manager.scans = store
		Manager.Unlock()
	})
	return initErr
}

// CloseStore should be called on application shutdown.
func CloseStore() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.scans != nil {
			_ = Manager.scans.Close()
		}
	})
}

// ClearStore clears the persisted scans for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
// For NoneBackend, it does nothing.
func ClearStore(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend:
		return clearSQLTable("mysql", connStr, scanTable)

	case schema.PostgreSQLBackend:
		return clearSQLTable("pgx", connStr, scanTable)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported store backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(driverName, connStr, tableName string) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", tableName)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}
	return nil
}
