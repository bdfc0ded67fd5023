package history

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02 15:04:05"

// Entry is one recorded submission. Result rows are never stored, only the
// kind of result that came back.
type Entry struct {
	ID            string    `json:"id"`
	Section       string    `json:"section"`
	Input         string    `json:"input"`
	SQLQuery      string    `json:"sql_query,omitempty"`
	Success       bool      `json:"success"`
	Error         string    `json:"error,omitempty"`
	ExecutionTime *float64  `json:"execution_time,omitempty"`
	ResultKind    string    `json:"result_kind,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store persists submissions in a local sqlite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the history DB under dataDir/history.db.
func Open(dataDir string) (*Store, error) {
	return OpenDSN(filepath.Join(dataDir, "history.db"))
}

// OpenDSN opens (or creates) a history DB using the given sqlite DSN/path.
// Tests may pass ":memory:" to avoid touching disk.
func OpenDSN(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// a :memory: database lives and dies with its connection
	db.SetMaxOpenConns(1)

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS history (
	id TEXT PRIMARY KEY,
	section TEXT NOT NULL,
	input TEXT NOT NULL,
	sql_query TEXT,
	success INTEGER NOT NULL,
	error TEXT,
	execution_time REAL,
	result_kind TEXT,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS history_created_at ON history (created_at);
`)
	if err != nil {
		return fmt.Errorf("create history table: %w", err)
	}
	return nil
}

// Close closes the underlying DB.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add records e, filling in ID and CreatedAt when they are empty. The
// stored entry is returned.
func (s *Store) Add(e Entry) (Entry, error) {
	if s == nil || s.db == nil {
		return Entry{}, fmt.Errorf("history store not initialized")
	}
	if e.Section == "" {
		return Entry{}, fmt.Errorf("section is required")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	e.CreatedAt = e.CreatedAt.UTC().Truncate(time.Second)

	var execTime sql.NullFloat64
	if e.ExecutionTime != nil {
		execTime = sql.NullFloat64{Float64: *e.ExecutionTime, Valid: true}
	}

	_, err := s.db.Exec(`
INSERT INTO history (id, section, input, sql_query, success, error, execution_time, result_kind, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, e.ID, e.Section, e.Input, e.SQLQuery, e.Success, e.Error, execTime, e.ResultKind, e.CreatedAt.Format(timeLayout))
	if err != nil {
		return Entry{}, fmt.Errorf("persist history entry: %w", err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("history store not initialized")
	}
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.Query(`
SELECT id, section, input, COALESCE(sql_query, ''), success, COALESCE(error, ''), execution_time, COALESCE(result_kind, ''), created_at
FROM history
ORDER BY created_at DESC, rowid DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var (
			e        Entry
			execTime sql.NullFloat64
			created  string
		)
		if err := rows.Scan(&e.ID, &e.Section, &e.Input, &e.SQLQuery, &e.Success, &e.Error, &execTime, &e.ResultKind, &created); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if execTime.Valid {
			v := execTime.Float64
			e.ExecutionTime = &v
		}
		if ts, err := time.Parse(timeLayout, created); err == nil {
			e.CreatedAt = ts
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Clear removes every entry and reports how many were deleted.
func (s *Store) Clear() (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("history store not initialized")
	}
	res, err := s.db.Exec(`DELETE FROM history`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}
