// Package bolt provides BoltDB storage for the local message table.
//
// Rows are stored as JSON under big-endian id keys so a reverse cursor walk
// visits newest rows first. Ids come from the bucket sequence, which never
// reuses a value.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/inovacc/gitboard/internal/model"

	"go.etcd.io/bbolt"
)

const bucketMessages = "messages" // key: big-endian id -> Message JSON

// Store implements the store.Store interface using BoltDB.
type Store struct {
	db *bbolt.DB

	mu sync.Mutex

	// lastTimestamp is the newest timestamp handed out; timestamps never
	// regress within one store even if the wall clock does.
	lastTimestamp string
}

// New creates a new BoltDB store with the given database path.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketMessages))

		return err
	}); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks if the database is accessible.
func (s *Store) Ping() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return nil
	})
}

// StoreMessage persists a new message and returns the stored row.
func (s *Store) StoreMessage(_ context.Context, content, author string) (*model.Message, error) {
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

	msg := &model.Message{
		Content:   content,
		Author:    author,
		Timestamp: ts,
		Source:    model.SourceLocal,
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketMessages))

		id, err := b.NextSequence()
		if err != nil {
			return err
		}

		msg.ID = int64(id)

		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}

		return b.Put(itob(msg.ID), data)
	})
	if err != nil {
		return nil, fmt.Errorf("storing message: %w", err)
	}

	return msg, nil
}

// GetMessage returns the message with the given id, or model.ErrNotFound.
func (s *Store) GetMessage(_ context.Context, id int64) (*model.Message, error) {
	var msg *model.Message

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketMessages)).Get(itob(id))
		if data == nil {
			return model.ErrNotFound
		}

		msg = &model.Message{}

		return json.Unmarshal(data, msg)
	})
	if err != nil {
		return nil, err
	}

	return msg, nil
}

// ListMessages returns up to limit messages ordered by timestamp descending.
func (s *Store) ListMessages(_ context.Context, limit int) ([]model.Message, error) {
	if limit <= 0 {
		return nil, model.NewValidationError("limit must be positive, got %d", limit)
	}

	var messages []model.Message

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketMessages)).ForEach(func(_, v []byte) error {
			var msg model.Message
			if err := json.Unmarshal(v, &msg); err != nil {
				return err
			}

			messages = append(messages, msg)

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	sort.Slice(messages, func(i, j int) bool {
		if messages[i].Timestamp != messages[j].Timestamp {
			return messages[i].Timestamp > messages[j].Timestamp
		}

		return messages[i].ID > messages[j].ID
	})

	if len(messages) > limit {
		messages = messages[:limit]
	}

	return messages, nil
}

// SetRemoteRef records the remote reference of a mirrored message. It reports
// whether a row with that id existed.
func (s *Store) SetRemoteRef(_ context.Context, id int64, ref string) (bool, error) {
	found := false

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketMessages))

		data := b.Get(itob(id))
		if data == nil {
			return nil
		}

		var msg model.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return err
		}

		msg.RemoteRef = ref

		updated, err := json.Marshal(&msg)
		if err != nil {
			return err
		}

		found = true

		return b.Put(itob(id), updated)
	})
	if err != nil {
		return false, fmt.Errorf("updating remote reference: %w", err)
	}

	return found, nil
}

func itob(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))

	return key
}
