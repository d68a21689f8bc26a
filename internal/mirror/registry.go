package mirror

import (
	"context"
	"log/slog"
	"time"

	"github.com/inovacc/gitboard/internal/model"

	"golang.org/x/sync/errgroup"
)

// DefaultFetchTimeout bounds each repository's contribution to a merged read.
const DefaultFetchTimeout = 10 * time.Second

// Registry holds the ordered mirror list and coordinates fan-out reads. The
// first mirror added is the default write target.
type Registry struct {
	mirrors []Mirror
	timeout time.Duration
	logger  *slog.Logger
}

// NewRegistry creates an empty registry. A non-positive timeout falls back to
// DefaultFetchTimeout.
func NewRegistry(timeout time.Duration, logger *slog.Logger) *Registry {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		timeout: timeout,
		logger:  logger,
	}
}

// Add appends a mirror. Registration order defines write-default priority and
// has no bearing on read ordering.
func (r *Registry) Add(m Mirror) {
	r.mirrors = append(r.mirrors, m)
}

// Len returns the number of registered mirrors.
func (r *Registry) Len() int {
	return len(r.mirrors)
}

// FetchAll gathers messages from every mirror concurrently and merges them
// into one timestamp-descending list of at most limit entries. All fetches
// are joined before merging; a failing or slow mirror contributes nothing and
// never aborts the others.
func (r *Registry) FetchAll(ctx context.Context, limit int) ([]model.Message, error) {
	if limit <= 0 {
		return nil, model.NewValidationError("limit must be positive, got %d", limit)
	}

	shards := make([][]model.Message, len(r.mirrors))

	var g errgroup.Group

	for i, m := range r.mirrors {
		g.Go(func() error {
			shardCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			msgs, err := m.Fetch(shardCtx, limit)
			if err != nil {
				// The shard is reduced to empty; the merge goes on.
				r.logger.Warn("mirror fetch failed",
					slog.String("repo", m.Config().FullName()),
					slog.String("error", err.Error()),
				)

				return nil
			}

			shards[i] = msgs

			return nil
		})
	}

	// Shard errors never surface, so this join is purely a barrier.
	_ = g.Wait()

	var merged []model.Message
	for _, shard := range shards {
		merged = append(merged, shard...)
	}

	sortByTimestampDesc(merged)

	if len(merged) > limit {
		merged = merged[:limit]
	}

	return merged, nil
}

// Write stores a message in the target repository ("owner/name"), or in the
// first registered one when target is empty. A failure is never retried
// against another repository.
func (r *Registry) Write(ctx context.Context, content, author, target string) (string, model.RepositoryConfig, error) {
	m, err := r.Resolve(target)
	if err != nil {
		return "", model.RepositoryConfig{}, err
	}

	ref, err := m.Store(ctx, content, author)
	if err != nil {
		return "", model.RepositoryConfig{}, err
	}

	return ref, m.Config(), nil
}

// Resolve maps a "owner/name" target to a registered mirror, or returns the
// default write target when target is empty.
func (r *Registry) Resolve(target string) (Mirror, error) {
	if target == "" {
		if len(r.mirrors) == 0 {
			return nil, model.NewValidationError("no repositories configured")
		}

		return r.mirrors[0], nil
	}

	for _, m := range r.mirrors {
		if m.Config().FullName() == target {
			return m, nil
		}
	}

	return nil, model.NewValidationError("unknown repository %q", target)
}
