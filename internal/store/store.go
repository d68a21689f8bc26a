// Package store defines the durable local message store contract and the
// backend selection used by the rest of the application.
//
// The [Store] interface is the single source of truth for write
// acknowledgment: a message exists once StoreMessage returns. Two backends
// implement it, SQLite (default) and BoltDB, selected by configuration.
package store

import (
	"context"
	"fmt"

	"github.com/inovacc/gitboard/internal/model"
	"github.com/inovacc/gitboard/internal/store/bolt"
	"github.com/inovacc/gitboard/internal/store/sqlite"
)

// Store defines the local message store operations used by the app.
//
// Implementations must assign strictly increasing ids, keep timestamps
// non-decreasing in creation order, and make each operation an independent
// atomic unit; no partial row is ever observable.
type Store interface {
	Ping() error
	StoreMessage(ctx context.Context, content, author string) (*model.Message, error)
	GetMessage(ctx context.Context, id int64) (*model.Message, error)
	ListMessages(ctx context.Context, limit int) ([]model.Message, error)
	SetRemoteRef(ctx context.Context, id int64, ref string) (bool, error)
	Close() error
}

// Open initializes the store backend named by cfg.StoreBackend at
// cfg.StorePath.
func Open(cfg *model.Config) (Store, error) {
	switch cfg.StoreBackend {
	case "sqlite":
		return sqlite.New(cfg.StorePath)
	case "bolt":
		return bolt.New(cfg.StorePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
