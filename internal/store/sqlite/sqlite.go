// Package sqlite provides SQLite storage for the local message table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/inovacc/gitboard/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store implements the store.Store interface using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex

	// lastTimestamp is the newest timestamp handed out; timestamps never
	// regress within one store even if the wall clock does.
	lastTimestamp string
}

// New creates a new SQLite store with the given database path.
func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite doesn't handle multiple writers well
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	// Run migrations
	migrator := NewMigrator(db)
	if err := migrator.MigrateUp(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks if the database is accessible.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// StoreMessage persists a new message and returns the stored row. The insert
// is a single statement: the full row exists afterwards or nothing does.
func (s *Store) StoreMessage(ctx context.Context, content, author string) (*model.Message, error) {
	if content == "" {
		return nil, model.NewValidationError("message content must not be empty")
	}

	if author == "" {
		author = model.DefaultAuthor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := model.Now()
	if ts < s.lastTimestamp {
		ts = s.lastTimestamp
	}

	s.lastTimestamp = ts

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (content, author, timestamp)
		VALUES (?, ?, ?)
	`, content, author, ts)
	if err != nil {
		return nil, fmt.Errorf("inserting message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading inserted id: %w", err)
	}

	return s.getMessage(ctx, id)
}

// GetMessage returns the message with the given id, or model.ErrNotFound.
func (s *Store) GetMessage(ctx context.Context, id int64) (*model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getMessage(ctx, id)
}

func (s *Store) getMessage(ctx context.Context, id int64) (*model.Message, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, content, author, timestamp, remote_reference
		FROM messages
		WHERE id = ?
	`, id)

	msg, err := scanMessage(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("querying message %d: %w", id, err)
	}

	return msg, nil
}

// ListMessages returns up to limit messages ordered by timestamp descending.
func (s *Store) ListMessages(ctx context.Context, limit int) ([]model.Message, error) {
	if limit <= 0 {
		return nil, model.NewValidationError("limit must be positive, got %d", limit)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, author, timestamp, remote_reference
		FROM messages
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []model.Message

	for rows.Next() {
		msg, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}

		messages = append(messages, *msg)
	}

	return messages, rows.Err()
}

// SetRemoteRef records the remote reference of a mirrored message. It reports
// whether a row with that id existed.
func (s *Store) SetRemoteRef(ctx context.Context, id int64, ref string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE messages
		SET remote_reference = ?
		WHERE id = ?
	`, ref, id)
	if err != nil {
		return false, fmt.Errorf("updating remote reference: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}

	return n > 0, nil
}

// scanMessage reads one messages row via the given scan function.
func scanMessage(scan func(dest ...any) error) (*model.Message, error) {
	var (
		msg model.Message
		ref sql.NullString
	)

	if err := scan(&msg.ID, &msg.Content, &msg.Author, &msg.Timestamp, &ref); err != nil {
		return nil, err
	}

	msg.Source = model.SourceLocal
	msg.RemoteRef = ref.String

	return &msg, nil
}
