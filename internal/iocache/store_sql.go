package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for measurement storage.
const (
	measurementsTable = "loc_measurements"
	metaTable         = "loc_store_meta"
)

const metaLastUpdated = "last_updated"

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// sqlBackend stores one row per (repository, date) plus a key/value meta table.
type sqlBackend struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
	connStr    string
}

// newSQLBackend opens and pings the database and creates the tables if needed.
func newSQLBackend(backend schema.DatabaseBackend, connStr string) (*sqlBackend, error) {
	driverName, err := driverFor(backend)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}
	if backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	for _, query := range createTableQueries(backend) {
		if _, err := db.Exec(query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create measurement tables: %w", err)
		}
	}

	return &sqlBackend{db: db, backend: backend, driverName: driverName, connStr: connStr}, nil
}

// driverFor maps a backend to its registered database/sql driver name.
func driverFor(backend schema.DatabaseBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "sqlite", nil
	case schema.MySQLBackend:
		return "mysql", nil
	case schema.PostgreSQLBackend:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported SQL backend: %s", backend)
	}
}

// createTableQueries returns the DDL shared by every backend; the types are
// portable across SQLite, MySQL and PostgreSQL.
func createTableQueries(backend schema.DatabaseBackend) []string {
	return []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				repo_name VARCHAR(255) NOT NULL,
				measured_on CHAR(10) NOT NULL,
				total BIGINT NOT NULL,
				languages TEXT NOT NULL,
				commit_id VARCHAR(64),
				PRIMARY KEY (repo_name, measured_on)
			)`, quoteTableName(measurementsTable, backend)),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				meta_key VARCHAR(64) NOT NULL PRIMARY KEY,
				meta_value TEXT NOT NULL
			)`, quoteTableName(metaTable, backend)),
	}
}

func (b *sqlBackend) load() (*schema.HistoryStore, error) {
	store := schema.NewHistoryStore()

	query := fmt.Sprintf("SELECT repo_name, measured_on, total, languages, commit_id FROM %s",
		quoteTableName(measurementsTable, b.backend))
	rows, err := b.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to read measurements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			repo, date, languages string
			total                 int64
			commit                sql.NullString
		)
		if err := rows.Scan(&repo, &date, &total, &languages, &commit); err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		m := schema.Measurement{Date: date, Total: int(total), Languages: map[string]int{}, Commit: commit.String}
		if err := json.Unmarshal([]byte(languages), &m.Languages); err != nil {
			contract.LogWarn(fmt.Sprintf("ignoring languages of %s@%s", repo, date), err)
			m.Languages = map[string]int{}
		}
		h, ok := store.Repos[repo]
		if !ok {
			h = schema.NewRepoHistory()
			store.Repos[repo] = h
		}
		h.Measurements[date] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate measurements: %w", err)
	}

	var ts string
	metaQuery := fmt.Sprintf("SELECT meta_value FROM %s WHERE meta_key = %s",
		quoteTableName(metaTable, b.backend), b.placeholder(1))
	err = b.db.QueryRow(metaQuery, metaLastUpdated).Scan(&ts)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, fmt.Errorf("failed to read store metadata: %w", err)
	default:
		if t, parseErr := time.Parse(time.RFC3339Nano, ts); parseErr == nil {
			store.LastUpdated = t
		}
	}
	return store, nil
}

// save upserts only the measurements changed since the previous save, in one transaction.
func (b *sqlBackend) save(data *schema.HistoryStore, dirty map[measurementKey]struct{}) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := b.upsertMeasurementQuery()
	for key := range dirty {
		h, ok := data.Repos[key.repo]
		if !ok {
			continue
		}
		m, ok := h.Measurements[key.date]
		if !ok {
			continue
		}
		languages := m.Languages
		if languages == nil {
			languages = map[string]int{}
		}
		encoded, err := json.Marshal(languages)
		if err != nil {
			return fmt.Errorf("failed to encode languages of %s@%s: %w", key.repo, key.date, err)
		}
		commit := sql.NullString{String: m.Commit, Valid: m.Commit != ""}
		if _, err := tx.Exec(upsert, key.repo, key.date, int64(m.Total), string(encoded), commit); err != nil {
			return fmt.Errorf("failed to store %s@%s: %w", key.repo, key.date, err)
		}
	}

	if _, err := tx.Exec(b.upsertMetaQuery(), metaLastUpdated, data.LastUpdated.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to store metadata: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit measurements: %w", err)
	}
	return nil
}

// placeholder returns the n-th parameter placeholder for the backend.
func (b *sqlBackend) placeholder(n int) string {
	if b.backend == schema.PostgreSQLBackend {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// upsertMeasurementQuery returns the UPSERT query for the backend.
func (b *sqlBackend) upsertMeasurementQuery() string {
	table := quoteTableName(measurementsTable, b.backend)
	switch b.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (repo_name, measured_on, total, languages, commit_id) VALUES (?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE total = new.total, languages = new.languages, commit_id = new.commit_id`, table)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (repo_name, measured_on, total, languages, commit_id) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (repo_name, measured_on) DO UPDATE SET total = EXCLUDED.total, languages = EXCLUDED.languages, commit_id = EXCLUDED.commit_id`, table)
	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (repo_name, measured_on, total, languages, commit_id) VALUES (?, ?, ?, ?, ?)`, table)
	}
}

// upsertMetaQuery returns the UPSERT query for the meta table.
func (b *sqlBackend) upsertMetaQuery() string {
	table := quoteTableName(metaTable, b.backend)
	switch b.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (meta_key, meta_value) VALUES (?, ?) AS new
			ON DUPLICATE KEY UPDATE meta_value = new.meta_value`, table)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (meta_key, meta_value) VALUES ($1, $2)
			ON CONFLICT (meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value`, table)
	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (meta_key, meta_value) VALUES (?, ?)`, table)
	}
}

// status reports the backend, its location and an approximate size.
func (b *sqlBackend) status() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:   string(b.backend),
		Location:  redactConnString(b.backend, b.connStr),
		Connected: b.db != nil,
	}
	if b.db == nil {
		return status, nil
	}

	switch b.backend {
	case schema.SQLiteBackend:
		row := b.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		if err := row.Scan(&status.SizeBytes); err != nil {
			status.SizeBytes = 0
		}
	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(b.connStr)
		if err != nil || cfg.DBName == "" {
			break
		}
		row := b.db.QueryRow("SELECT COALESCE(SUM(data_length + index_length), 0) FROM information_schema.tables WHERE table_schema = ? AND table_name IN (?, ?)",
			cfg.DBName, measurementsTable, metaTable)
		if err := row.Scan(&status.SizeBytes); err != nil {
			status.SizeBytes = 0
		}
	case schema.PostgreSQLBackend:
		row := b.db.QueryRow("SELECT pg_total_relation_size($1) + pg_total_relation_size($2)", measurementsTable, metaTable)
		if err := row.Scan(&status.SizeBytes); err != nil {
			status.SizeBytes = 0
		}
	}
	return status, nil
}

// Close closes the underlying DB connection.
func (b *sqlBackend) close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// redactConnString hides credentials from connection strings shown to users.
func redactConnString(backend schema.DatabaseBackend, connStr string) string {
	switch backend {
	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(connStr)
		if err != nil {
			return "mysql"
		}
		return fmt.Sprintf("%s/%s", cfg.Addr, cfg.DBName)
	case schema.PostgreSQLBackend:
		return passwordPattern.ReplaceAllString(connStr, "password=****")
	default:
		return connStr
	}
}

var passwordPattern = regexp.MustCompile(`password=\S+`)

// validateTableName rejects anything that is not a plain SQL identifier.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$)", name)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// clearSQLTables connects to the SQL database and drops the given tables if they exist.
func clearSQLTables(backend schema.DatabaseBackend, connStr string, tables ...string) error {
	driverName, err := driverFor(backend)
	if err != nil {
		return err
	}
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	for _, table := range tables {
		if err := validateTableName(table); err != nil {
			return err
		}
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
