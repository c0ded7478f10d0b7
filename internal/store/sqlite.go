package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/comigor/chatlogger-go/internal/logger"
	"github.com/comigor/chatlogger-go/internal/record"
)

// SQLiteStore stores each record as a JSON document row. The database is
// opened lazily and the table created on first use. Recency is the insertion time.
type SQLiteStore struct {
	path string

	once    sync.Once
	db      *sql.DB
	initErr error

	now func() time.Time
}

// NewSQLiteStore returns a store backed by the database file at path.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path, now: time.Now}
}

// init opens the SQLite database and creates the records table if it doesn't exist.
func (s *SQLiteStore) init() {
	db, err := sql.Open("sqlite", "file:"+s.path+"?_pragma=busy_timeout(10000)")
	if err != nil {
		s.initErr = fmt.Errorf("open sqlite: %w", err)
		logger.L.Warn("sqlite open failed", "path", s.path, "error", err)
		return
	}
	if _, err = db.Exec(`CREATE TABLE IF NOT EXISTS records (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        conversation_id TEXT,
        project_name TEXT,
        data TEXT NOT NULL,
        created_at INTEGER NOT NULL
    );`); err != nil {
		db.Close()
		s.initErr = fmt.Errorf("create records table: %w", err)
		logger.L.Warn("sqlite table creation failed", "path", s.path, "error", err)
		return
	}
	s.db = db
	logger.L.Info("sqlite record store initialized", "path", s.path)
}

func (s *SQLiteStore) open() (*sql.DB, error) {
	s.once.Do(s.init)
	return s.db, s.initErr
}

// Append inserts rec and returns its key.
func (s *SQLiteStore) Append(ctx context.Context, rec record.ConversationRecord) (string, error) {
	db, err := s.open()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO records (conversation_id, project_name, data, created_at) VALUES (?,?,?,?);`,
		rec.ConversationID, rec.ProjectName, string(data), s.now().UnixNano())
	if err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}
	return fmt.Sprintf("%s#%d", s.path, id), nil
}

// List returns every record, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT id, data, created_at FROM records ORDER BY created_at DESC, id DESC;`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			id      int64
			data    string
			created int64
		)
		if err := rows.Scan(&id, &data, &created); err != nil {
			logger.L.Warn("skipping unreadable record row", "error", err)
			continue
		}
		entries = append(entries, Entry{
			Key:     rowKey(id),
			ModTime: time.Unix(0, created),
			Data:    []byte(data),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return entries, nil
}

// rowKey pads id so SortNewestFirst's string tie-break follows insertion order.
func rowKey(id int64) string {
	return fmt.Sprintf("%020d", id)
}

// Close releases the database handle if it was opened.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
