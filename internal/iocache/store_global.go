package iocache

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// StoreManager holds the process-wide measurement store.
type StoreManager struct {
	sync.Mutex
	store contract.MeasurementStore
}

// GetStore returns the measurement store, or nil before InitStore.
func (m *StoreManager) GetStore() contract.MeasurementStore {
	m.Lock()
	defer m.Unlock()
	return m.store
}

// GetDBFilePath returns the default path of the SQLite measurement database.
func GetDBFilePath() string {
	return contract.GetDBFilePath()
}

// InitStore opens the global measurement store exactly once.
func InitStore(backend schema.DatabaseBackend, path, connStr string) error {
	var initErr error
	initOnce.Do(func() {
		store, err := OpenMeasurementStore(backend, path, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize measurement store: %w", err)
			return
		}
		Manager.Lock()
		Manager.store = store
		Manager.Unlock()
	})
	return initErr
}

// CloseStore should be called on application shutdown.
func CloseStore() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.store != nil {
			_ = Manager.store.Close()
		}
	})
}

// ClearStore removes every persisted measurement for the backend.
// For json and SQLite it deletes the file; for MySQL and PostgreSQL it drops the tables.
func ClearStore(backend schema.DatabaseBackend, path, connStr string) error {
	switch backend {
	case schema.JSONBackend, "":
		if path == "" {
			path = schema.DefaultStoreFile
		}
		return removeFile(contract.ExpandHome(path))

	case schema.SQLiteBackend:
		if connStr == "" {
			connStr = GetDBFilePath()
		}
		return removeFile(connStr)

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTables(backend, connStr, measurementsTable, metaTable, "schema_migrations")

	default:
		return fmt.Errorf("unsupported store backend for clearing: %s", backend)
	}
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
