// Package mirror translates messages to and from JSON blobs held in remote
// repository content stores, and coordinates reads across all of them.
//
// Every backend sits behind the single [Mirror] interface: bootstrap the
// target directory, write one blob, read them all back. Blobs are immutable
// once written; this package never updates or deletes them.
package mirror

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/inovacc/gitboard/internal/model"
)

// Mirror maps messages to and from blobs in one remote content store.
type Mirror interface {
	// EnsureReady bootstraps the target directory if the backend has never
	// seen it. Repeated calls are harmless.
	EnsureReady(ctx context.Context) error

	// Store writes one message as a JSON blob and returns an opaque
	// reference to the created resource.
	Store(ctx context.Context, content, author string) (string, error)

	// Fetch lists and parses up to limit messages, newest first. A mirror
	// that does not exist yet yields an empty result, not an error.
	Fetch(ctx context.Context, limit int) ([]model.Message, error)

	// Config returns the repository this mirror reads and writes.
	Config() model.RepositoryConfig
}

// MirrorError wraps a remote-backend failure. Callers decide whether it is
// fatal; on the write path it never is.
type MirrorError struct {
	Repo string
	Op   string
	Err  error
}

func (e *MirrorError) Error() string {
	return fmt.Sprintf("mirror %s: %s: %v", e.Repo, e.Op, e.Err)
}

func (e *MirrorError) Unwrap() error {
	return e.Err
}

// blobRecord is the JSON shape of one mirrored message.
type blobRecord struct {
	Content   string `json:"content"`
	Author    string `json:"author"`
	Timestamp string `json:"timestamp"`
}

// blobName derives a blob file name from a timestamp. Colons are illegal in
// some path contexts so they become dashes; the name still sorts in
// chronological order.
func blobName(timestamp string) string {
	return strings.ReplaceAll(timestamp, ":", "-") + ".json"
}

// sortByTimestampDesc orders newest first. The sort is stable so entries with
// equal timestamps keep their concatenation order.
func sortByTimestampDesc(messages []model.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp > messages[j].Timestamp
	})
}
