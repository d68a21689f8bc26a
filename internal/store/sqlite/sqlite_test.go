package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/inovacc/gitboard/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestStoreMessage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	msg, err := s.StoreMessage(ctx, "hello", "Bob")
	if err != nil {
		t.Fatalf("storing message: %v", err)
	}

	if msg.ID != 1 {
		t.Errorf("id = %d, want 1", msg.ID)
	}

	if msg.Content != "hello" || msg.Author != "Bob" {
		t.Errorf("got %q by %q, want %q by %q", msg.Content, msg.Author, "hello", "Bob")
	}

	if msg.Source != model.SourceLocal {
		t.Errorf("source = %q, want %q", msg.Source, model.SourceLocal)
	}

	if msg.Timestamp == "" {
		t.Error("timestamp not assigned")
	}

	if msg.RemoteRef != "" {
		t.Errorf("remote ref = %q, want empty", msg.RemoteRef)
	}
}

func TestStoreMessageEmptyContent(t *testing.T) {
	s := newTestStore(t)

	_, err := s.StoreMessage(context.Background(), "", "Bob")
	if !model.IsValidation(err) {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestStoreMessageDefaultAuthor(t *testing.T) {
	s := newTestStore(t)

	msg, err := s.StoreMessage(context.Background(), "hello", "")
	if err != nil {
		t.Fatalf("storing message: %v", err)
	}

	if msg.Author != model.DefaultAuthor {
		t.Errorf("author = %q, want %q", msg.Author, model.DefaultAuthor)
	}
}

func TestStoreMessageOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var prev *model.Message

	for i, content := range []string{"first", "second", "third"} {
		msg, err := s.StoreMessage(ctx, content, "Bob")
		if err != nil {
			t.Fatalf("storing message %d: %v", i, err)
		}

		if msg.ID != int64(i+1) {
			t.Errorf("id = %d, want %d", msg.ID, i+1)
		}

		if prev != nil && msg.Timestamp < prev.Timestamp {
			t.Errorf("timestamp %q regressed below %q", msg.Timestamp, prev.Timestamp)
		}

		prev = msg
	}
}

func TestListMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, content := range []string{"first", "second", "third"} {
		if _, err := s.StoreMessage(ctx, content, "Bob"); err != nil {
			t.Fatalf("storing message: %v", err)
		}
	}

	messages, err := s.ListMessages(ctx, 10)
	if err != nil {
		t.Fatalf("listing messages: %v", err)
	}

	if len(messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(messages))
	}

	if messages[0].Content != "third" || messages[2].Content != "first" {
		t.Errorf("unexpected order: %q ... %q", messages[0].Content, messages[2].Content)
	}

	for i := 1; i < len(messages); i++ {
		if messages[i].Timestamp > messages[i-1].Timestamp {
			t.Errorf("messages not in descending timestamp order at %d", i)
		}
	}

	truncated, err := s.ListMessages(ctx, 2)
	if err != nil {
		t.Fatalf("listing messages: %v", err)
	}

	if len(truncated) != 2 {
		t.Errorf("got %d messages, want 2", len(truncated))
	}
}

func TestListMessagesInvalidLimit(t *testing.T) {
	s := newTestStore(t)

	for _, limit := range []int{0, -1} {
		if _, err := s.ListMessages(context.Background(), limit); !model.IsValidation(err) {
			t.Errorf("limit %d: got %v, want validation error", limit, err)
		}
	}
}

func TestGetMessageNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetMessage(context.Background(), 42)
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("got %v, want %v", err, model.ErrNotFound)
	}
}

func TestSetRemoteRef(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	msg, err := s.StoreMessage(ctx, "hello", "Bob")
	if err != nil {
		t.Fatalf("storing message: %v", err)
	}

	ok, err := s.SetRemoteRef(ctx, msg.ID, "https://example.com/commit/1")
	if err != nil || !ok {
		t.Fatalf("setting remote ref: ok=%v err=%v", ok, err)
	}

	got, err := s.GetMessage(ctx, msg.ID)
	if err != nil {
		t.Fatalf("getting message: %v", err)
	}

	if got.RemoteRef != "https://example.com/commit/1" {
		t.Errorf("remote ref = %q", got.RemoteRef)
	}

	// Last write wins.
	ok, err = s.SetRemoteRef(ctx, msg.ID, "https://example.com/commit/2")
	if err != nil || !ok {
		t.Fatalf("resetting remote ref: ok=%v err=%v", ok, err)
	}

	ok, err = s.SetRemoteRef(ctx, 999, "https://example.com/none")
	if err != nil {
		t.Fatalf("setting remote ref on missing row: %v", err)
	}

	if ok {
		t.Error("expected ok=false for missing row")
	}
}

func TestMigrator(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer func() { _ = db.Close() }()

	m := NewMigrator(db)

	if err := m.MigrateUp(); err != nil {
		t.Fatalf("migrating up: %v", err)
	}

	// Idempotent.
	if err := m.MigrateUp(); err != nil {
		t.Fatalf("migrating up again: %v", err)
	}

	version, err := m.CurrentVersion()
	if err != nil {
		t.Fatalf("getting version: %v", err)
	}

	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}

	if err := m.MigrateDown(); err != nil {
		t.Fatalf("migrating down: %v", err)
	}

	version, err = m.CurrentVersion()
	if err != nil {
		t.Fatalf("getting version: %v", err)
	}

	if version != 0 {
		t.Errorf("version after rollback = %d, want 0", version)
	}

	if err := m.MigrateUp(); err != nil {
		t.Fatalf("re-migrating up: %v", err)
	}
}
