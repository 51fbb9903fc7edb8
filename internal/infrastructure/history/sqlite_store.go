// Package history persists pipeline runs for auditing.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/ports"
)

// SQLiteStore records every pipeline run, approved or not, in a SQLite
// database. Rejections are part of the audit trail, so they are saved
// with Executed false rather than skipped.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates or opens the ledger database at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init ledger schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT,
		session_id TEXT,
		proposal_id TEXT,
		task TEXT,
		command TEXT,
		approved INTEGER,
		category TEXT,
		reasoning TEXT,
		state TEXT,
		executed INTEGER,
		exit_code INTEGER,
		timed_out INTEGER,
		verified INTEGER,
		duration_ms INTEGER
	);`)
	return err
}

// Save inserts one run record.
func (s *SQLiteStore) Save(record domain.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := record.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.Exec(`INSERT INTO runs
		(timestamp, session_id, proposal_id, task, command, approved, category, reasoning, state, executed, exit_code, timed_out, verified, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.Format(time.RFC3339),
		record.SessionID,
		record.ProposalID,
		record.Task,
		record.Command,
		boolToInt(record.Approved),
		string(record.Category),
		record.Reasoning,
		string(record.State),
		boolToInt(record.Executed),
		record.ExitCode,
		boolToInt(record.TimedOut),
		boolToInt(record.Verified),
		record.DurationMS,
	)
	return err
}

// Records returns run entries, newest first. A positive limit caps the
// result; a non-empty search filters on task and command.
func (s *SQLiteStore) Records(limit int, search string) ([]domain.RunRecord, error) {
	builder := strings.Builder{}
	builder.WriteString("SELECT timestamp, session_id, proposal_id, task, command, approved, category, reasoning, state, executed, exit_code, timed_out, verified, duration_ms FROM runs")
	var args []interface{}
	if search != "" {
		builder.WriteString(" WHERE task LIKE ? OR command LIKE ?")
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	builder.WriteString(" ORDER BY datetime(timestamp) DESC, id DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.RunRecord
	for rows.Next() {
		var rec domain.RunRecord
		var ts, category, state string
		var approved, executed, timedOut, verified int
		if err := rows.Scan(&ts, &rec.SessionID, &rec.ProposalID, &rec.Task, &rec.Command,
			&approved, &category, &rec.Reasoning, &state,
			&executed, &rec.ExitCode, &timedOut, &verified, &rec.DurationMS); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Category = domain.RejectionCategory(category)
		rec.State = domain.TaskState(state)
		rec.Approved = approved == 1
		rec.Executed = executed == 1
		rec.TimedOut = timedOut == 1
		rec.Verified = verified == 1
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database location.
func (s *SQLiteStore) Path() string {
	return s.path
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.RunLedger = (*SQLiteStore)(nil)
