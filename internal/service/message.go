// Package service orchestrates the dual-write and merged-read paths over the
// local store and the mirror registry.
package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/inovacc/gitboard/internal/mirror"
	"github.com/inovacc/gitboard/internal/model"
	"github.com/inovacc/gitboard/internal/store"

	"golang.org/x/sync/errgroup"
)

// DefaultListLimit is used when a caller does not name a limit.
const DefaultListLimit = 100

// MessageService persists messages durably and mirrors them best effort.
type MessageService struct {
	store    store.Store
	registry *mirror.Registry
	logger   *slog.Logger
}

// NewMessageService wires a service over the given store and registry.
func NewMessageService(st store.Store, registry *mirror.Registry, logger *slog.Logger) *MessageService {
	if logger == nil {
		logger = slog.Default()
	}

	return &MessageService{
		store:    st,
		registry: registry,
		logger:   logger,
	}
}

// Post stores a message durably and then mirrors it. The local write is the
// commit point: a mirror failure is logged and the local result is returned
// unchanged, with its remote reference left unset.
func (s *MessageService) Post(ctx context.Context, content, author, target string) (*model.Message, error) {
	if content == "" {
		return nil, model.NewValidationError("message content must not be empty")
	}

	// An unknown target is a validation failure, caught before any I/O.
	if target != "" {
		if _, err := s.registry.Resolve(target); err != nil {
			return nil, err
		}
	}

	msg, err := s.store.StoreMessage(ctx, content, author)
	if err != nil {
		return nil, err
	}

	// Mirroring is opportunistic; with no repositories configured the local
	// write stands on its own.
	if s.registry.Len() == 0 {
		return msg, nil
	}

	ref, repo, err := s.registry.Write(ctx, msg.Content, msg.Author, target)
	if err != nil {
		s.logger.Warn("mirror write failed",
			slog.Int64("id", msg.ID),
			slog.String("error", err.Error()),
		)

		return msg, nil
	}

	ok, err := s.store.SetRemoteRef(ctx, msg.ID, ref)
	if err != nil {
		s.logger.Warn("failed to record remote reference",
			slog.Int64("id", msg.ID),
			slog.String("error", err.Error()),
		)

		return msg, nil
	}

	if ok {
		msg.RemoteRef = ref
	}

	s.logger.Info("message mirrored",
		slog.Int64("id", msg.ID),
		slog.String("repo", repo.FullName()),
	)

	return msg, nil
}

// List merges the local table and every mirror into one feed of at most limit
// messages, newest first. The local shard and the mirror fan-out run
// concurrently and are joined before merging. On equal timestamps local rows
// sort before mirror rows, then registration order; that tie order is an
// implementation detail, not a contract.
func (s *MessageService) List(ctx context.Context, limit int) ([]model.Message, error) {
	if limit <= 0 {
		return nil, model.NewValidationError("limit must be positive, got %d", limit)
	}

	var local, remote []model.Message

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Local store failures always surface.
		msgs, err := s.store.ListMessages(gctx, limit)
		if err != nil {
			return err
		}

		local = msgs

		return nil
	})

	g.Go(func() error {
		msgs, err := s.registry.FetchAll(gctx, limit)
		if err != nil {
			return err
		}

		remote = msgs

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]model.Message, 0, len(local)+len(remote))
	merged = append(merged, local...)
	merged = append(merged, remote...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp > merged[j].Timestamp
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}

	return merged, nil
}
