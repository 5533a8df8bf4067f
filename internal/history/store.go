package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/minigraph/internal/contract"
	"github.com/huangsam/minigraph/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// historyTable is the name of the table holding entity history.
const historyTable = "minigraph_history"

// migrationsTable is the version table maintained by golang-migrate.
const migrationsTable = "schema_migrations"

// SQLStore handles durable history storage using various database backends.
type SQLStore struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
}

var _ contract.HistoryStore = &SQLStore{} // Compile-time check

// NewStore initializes and returns a new history store based on the backend type.
func NewStore(tableName string, backend schema.DatabaseBackend, connStr string) (*SQLStore, error) {
	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	if backend == schema.NoneBackend {
		// Return a no-op store for disabled persistence
		return &SQLStore{tableName: tableName, backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	// Create the table schema
	if _, err := db.Exec(getCreateTableQuery(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return &SQLStore{db: db, tableName: tableName, backend: backend}, nil
}

// driverName returns the database/sql driver registered for the backend.
func driverName(backend schema.DatabaseBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "sqlite", nil
	case schema.MySQLBackend:
		return "mysql", nil
	case schema.PostgreSQLBackend:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported history backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}
}

// openDB opens and pings a connection pool for the backend.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	driver, err := driverName(backend)
	if err != nil {
		return nil, err
	}

	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetDBFilePath()
	}
	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s history store: %w", backend, err)
	}
	if backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check connection format: user:password@tcp(host:port)/dbname"
		case schema.PostgreSQLBackend:
			connDetail = "Check connection format: host=localhost port=5432 user=postgres dbname=mydb"
		default:
			connDetail = "Ensure the directory is writable"
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}
	return db, nil
}

// getCreateTableQuery returns the CREATE TABLE query for the given backend.
// The column types are shared by all backends and match the first migration.
func getCreateTableQuery(tableName string, backend schema.DatabaseBackend) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			entity VARCHAR(255) NOT NULL,
			ts_ms BIGINT NOT NULL,
			state VARCHAR(255) NOT NULL,
			PRIMARY KEY (entity, ts_ms)
		);
	`, quoteTableName(tableName, backend))
}

// rebind rewrites ? placeholders into the positional form of the backend.
func rebind(backend schema.DatabaseBackend, query string) string {
	if backend != schema.PostgreSQLBackend {
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

// getUpsertQuery returns the UPSERT query for the backend.
func (s *SQLStore) getUpsertQuery() string {
	quotedTableName := quoteTableName(s.tableName, s.backend)
	switch s.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (entity, ts_ms, state) VALUES (?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE state = new.state`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (entity, ts_ms, state) VALUES ($1, $2, $3)
			ON CONFLICT (entity, ts_ms) DO UPDATE SET state = EXCLUDED.state`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (entity, ts_ms, state) VALUES (?, ?, ?)`, quotedTableName)
	}
}

// Append records samples for entity in a single transaction.
func (s *SQLStore) Append(ctx context.Context, entity string, samples []schema.HistorySample) (int, error) {
	if s.db == nil || len(samples) == 0 {
		return 0, nil
	}
	if entity == "" {
		return 0, errors.New("entity cannot be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.getUpsertQuery())
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, sample := range samples {
		if _, err := stmt.ExecContext(ctx, entity, sample.Timestamp.UnixMilli(), sample.State); err != nil {
			return 0, fmt.Errorf("failed to insert sample at %s: %w", sample.Timestamp.Format(time.RFC3339), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit samples: %w", err)
	}
	return len(samples), nil
}

// Fetch returns the samples of entity recorded in [start, end], oldest first.
func (s *SQLStore) Fetch(ctx context.Context, entity string, start, end time.Time) ([]schema.HistorySample, error) {
	if s.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT ts_ms, state FROM %s WHERE entity = ? AND ts_ms >= ? AND ts_ms <= ? ORDER BY ts_ms`,
		quoteTableName(s.tableName, s.backend))
	rows, err := s.db.QueryContext(ctx, rebind(s.backend, query), entity, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to query history of %s: %w", entity, err)
	}
	defer func() { _ = rows.Close() }()

	var samples []schema.HistorySample
	for rows.Next() {
		var ts int64
		var state string
		if err := rows.Scan(&ts, &state); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		samples = append(samples, schema.NewSample(time.UnixMilli(ts).UTC(), state))
	}
	return samples, rows.Err()
}

// Last returns the newest sample of entity recorded strictly before t.
func (s *SQLStore) Last(ctx context.Context, entity string, t time.Time) (schema.HistorySample, bool, error) {
	if s.db == nil {
		return schema.HistorySample{}, false, nil
	}

	query := fmt.Sprintf(`SELECT ts_ms, state FROM %s WHERE entity = ? AND ts_ms < ? ORDER BY ts_ms DESC LIMIT 1`,
		quoteTableName(s.tableName, s.backend))
	var ts int64
	var state string
	err := s.db.QueryRowContext(ctx, rebind(s.backend, query), entity, t.UnixMilli()).Scan(&ts, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.HistorySample{}, false, nil
	}
	if err != nil {
		return schema.HistorySample{}, false, fmt.Errorf("failed to query last state of %s: %w", entity, err)
	}
	return schema.NewSample(time.UnixMilli(ts).UTC(), state), true, nil
}

// Entities summarizes every entity with recorded history, ordered by name.
func (s *SQLStore) Entities(ctx context.Context) ([]schema.EntitySummary, error) {
	if s.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT entity, COUNT(*), MIN(ts_ms), MAX(ts_ms) FROM %s GROUP BY entity ORDER BY entity`,
		quoteTableName(s.tableName, s.backend))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []schema.EntitySummary
	for rows.Next() {
		var e schema.EntitySummary
		var oldest, newest int64
		if err := rows.Scan(&e.Entity, &e.Samples, &oldest, &newest); err != nil {
			return nil, fmt.Errorf("failed to scan entity row: %w", err)
		}
		e.Oldest = time.UnixMilli(oldest).UTC()
		e.Newest = time.UnixMilli(newest).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// Clear removes the history of entity, or of every entity when entity is empty.
func (s *SQLStore) Clear(ctx context.Context, entity string) (int64, error) {
	if s.db == nil {
		return 0, nil
	}

	quotedTableName := quoteTableName(s.tableName, s.backend)
	var res sql.Result
	var err error
	if entity == "" {
		res, err = s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", quotedTableName))
	} else {
		query := rebind(s.backend, fmt.Sprintf("DELETE FROM %s WHERE entity = ?", quotedTableName))
		res, err = s.db.ExecContext(ctx, query, entity)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying DB connection.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (s *SQLStore) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:   string(s.backend),
		Connected: s.db != nil,
	}
	if s.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(s.tableName, s.backend)
	countQuery := fmt.Sprintf("SELECT COUNT(*), COUNT(DISTINCT entity) FROM %s", quotedTableName)
	if err := s.db.QueryRow(countQuery).Scan(&status.TotalSamples, &status.TotalEntities); err != nil {
		return status, fmt.Errorf("failed to count samples: %w", err)
	}

	if status.TotalSamples > 0 {
		var oldest, newest int64
		rangeQuery := fmt.Sprintf("SELECT MIN(ts_ms), MAX(ts_ms) FROM %s", quotedTableName)
		if err := s.db.QueryRow(rangeQuery).Scan(&oldest, &newest); err != nil {
			return status, fmt.Errorf("failed to get sample range: %w", err)
		}
		status.OldestSample = time.UnixMilli(oldest).UTC()
		status.NewestSample = time.UnixMilli(newest).UTC()
	}

	// The version table only exists once migrations have run
	versionQuery := fmt.Sprintf("SELECT version, dirty FROM %s LIMIT 1", quoteTableName(migrationsTable, s.backend))
	var version int64
	var dirty bool
	if err := s.db.QueryRow(versionQuery).Scan(&version, &dirty); err == nil && version > 0 {
		status.MigrationLevel = uint(version)
		status.MigrationsDirty = dirty
	}

	return status, nil
}
