package bolt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/inovacc/gitboard/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.bolt"))
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestStoreAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, content := range []string{"first", "second", "third"} {
		msg, err := s.StoreMessage(ctx, content, "Bob")
		if err != nil {
			t.Fatalf("storing message: %v", err)
		}

		if msg.ID != int64(i+1) {
			t.Errorf("id = %d, want %d", msg.ID, i+1)
		}
	}

	messages, err := s.ListMessages(ctx, 2)
	if err != nil {
		t.Fatalf("listing messages: %v", err)
	}

	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}

	if messages[0].Content != "third" || messages[1].Content != "second" {
		t.Errorf("unexpected order: %q, %q", messages[0].Content, messages[1].Content)
	}
}

func TestValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.StoreMessage(ctx, "", "Bob"); !model.IsValidation(err) {
		t.Errorf("empty content: got %v, want validation error", err)
	}

	if _, err := s.ListMessages(ctx, 0); !model.IsValidation(err) {
		t.Errorf("zero limit: got %v, want validation error", err)
	}
}

func TestGetMessage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stored, err := s.StoreMessage(ctx, "hello", "")
	if err != nil {
		t.Fatalf("storing message: %v", err)
	}

	got, err := s.GetMessage(ctx, stored.ID)
	if err != nil {
		t.Fatalf("getting message: %v", err)
	}

	if got.Content != "hello" || got.Author != model.DefaultAuthor {
		t.Errorf("got %q by %q", got.Content, got.Author)
	}

	if _, err := s.GetMessage(ctx, 99); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("got %v, want %v", err, model.ErrNotFound)
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

	ok, err = s.SetRemoteRef(ctx, 99, "https://example.com/none")
	if err != nil {
		t.Fatalf("setting remote ref on missing row: %v", err)
	}

	if ok {
		t.Error("expected ok=false for missing row")
	}
}
