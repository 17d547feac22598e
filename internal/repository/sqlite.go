package repository

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/roundops/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS operation_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			event_id TEXT NOT NULL,
			round_no INTEGER NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL,
			recorded INTEGER NOT NULL DEFAULT 0,
			total INTEGER NOT NULL DEFAULT 0,
			error_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_operation_log_event ON operation_log(event_id, created_at)`,
	}
	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	_, err := r.db.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		models.ModeSettingKey, string(models.ModeAuto))
	return err
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting updates a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// ==================== Operation Log Methods ====================

// RecordOperation appends one finished operation and returns its id
func (r *Repository) RecordOperation(ctx context.Context, rec models.OperationRecord) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO operation_log (kind, event_id, round_no, outcome, recorded, total, error_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Kind, rec.EventID, rec.RoundNo, rec.Outcome, rec.Recorded, rec.Total, rec.ErrorCount, rec.CreatedAt.UTC())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListOperations returns the newest operations first. An empty eventID
// lists every event.
func (r *Repository) ListOperations(ctx context.Context, eventID string, limit int) ([]models.OperationRecord, error) {
	query := `SELECT id, kind, event_id, round_no, outcome, recorded, total, error_count, created_at FROM operation_log`
	var args []any
	if eventID != "" {
		query += ` WHERE event_id = ?`
		args = append(args, eventID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []models.OperationRecord
	for rows.Next() {
		var op models.OperationRecord
		if err := rows.Scan(&op.ID, &op.Kind, &op.EventID, &op.RoundNo, &op.Outcome, &op.Recorded, &op.Total, &op.ErrorCount, &op.CreatedAt); err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// OperationStats counts logged operations per outcome
func (r *Repository) OperationStats(ctx context.Context, eventID string) (map[string]int, error) {
	query := `SELECT outcome, COUNT(*) FROM operation_log`
	var args []any
	if eventID != "" {
		query += ` WHERE event_id = ?`
		args = append(args, eventID)
	}
	query += ` GROUP BY outcome`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		stats[outcome] = n
	}
	return stats, rows.Err()
}

// ==================== Database Management Methods ====================

// validTables defines which tables can be safely cleared
var validTables = map[string]bool{
	"settings": true, "operation_log": true,
}

// ClearTable clears all data from a whitelisted table
func (r *Repository) ClearTable(ctx context.Context, table string) error {
	if !validTables[table] {
		return ErrInvalidTable
	}
	_, err := r.db.ExecContext(ctx, "DELETE FROM "+table)
	return err
}
