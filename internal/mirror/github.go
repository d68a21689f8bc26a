package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/inovacc/gitboard/internal/model"

	"github.com/google/go-github/v82/github"
	"golang.org/x/oauth2"
)

// placeholderFile is the bootstrap entry created inside an empty message
// directory. Fetch skips it.
const placeholderFile = ".gitkeep"

// GitHubMirror stores message blobs through the GitHub contents API.
type GitHubMirror struct {
	client *github.Client
	cfg    model.RepositoryConfig
	logger *slog.Logger
}

// NewGitHubMirror creates a mirror for one repository authenticated with token.
func NewGitHubMirror(token string, cfg model.RepositoryConfig, logger *slog.Logger) *GitHubMirror {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)

	return NewGitHubMirrorWithClient(github.NewClient(tc), cfg, logger)
}

// NewGitHubMirrorWithClient creates a mirror around an existing client, so
// tests can point it at a fake backend.
func NewGitHubMirrorWithClient(client *github.Client, cfg model.RepositoryConfig, logger *slog.Logger) *GitHubMirror {
	if logger == nil {
		logger = slog.Default()
	}

	return &GitHubMirror{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Config returns the repository this mirror reads and writes.
func (m *GitHubMirror) Config() model.RepositoryConfig {
	return m.cfg
}

// EnsureReady checks the message directory and creates a placeholder entry
// when the backend reports it missing.
func (m *GitHubMirror) EnsureReady(ctx context.Context) error {
	_, _, _, err := m.client.Repositories.GetContents(ctx, m.cfg.Owner, m.cfg.Name, m.cfg.MessagePath,
		&github.RepositoryContentGetOptions{Ref: m.cfg.Branch})
	if err == nil {
		return nil
	}

	if !isNotFound(err) {
		return &MirrorError{Repo: m.cfg.FullName(), Op: "checking message directory", Err: err}
	}

	m.logger.Info("bootstrapping message directory",
		slog.String("repo", m.cfg.FullName()),
		slog.String("path", m.cfg.MessagePath),
	)

	opts := &github.RepositoryContentFileOptions{
		Message: github.String("Initialize message directory"),
		Content: []byte{},
		Branch:  github.String(m.cfg.Branch),
	}

	_, _, err = m.client.Repositories.CreateFile(ctx, m.cfg.Owner, m.cfg.Name,
		path.Join(m.cfg.MessagePath, placeholderFile), opts)
	if err != nil {
		// A concurrent bootstrap may have won the race.
		if isAlreadyExists(err) {
			return nil
		}

		return &MirrorError{Repo: m.cfg.FullName(), Op: "creating message directory", Err: err}
	}

	return nil
}

// Store writes one message blob named after its timestamp and returns the
// commit URL of the created resource.
func (m *GitHubMirror) Store(ctx context.Context, content, author string) (string, error) {
	if author == "" {
		author = model.DefaultAuthor
	}

	record := blobRecord{
		Content:   content,
		Author:    author,
		Timestamp: model.Now(),
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", &MirrorError{Repo: m.cfg.FullName(), Op: "encoding message", Err: err}
	}

	if err := m.EnsureReady(ctx); err != nil {
		return "", err
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.String(fmt.Sprintf("Add message from %s", author)),
		Content: data,
		Branch:  github.String(m.cfg.Branch),
	}

	// Two writes in the same nanosecond collide on the file name; the
	// backend resolves that last-write-wins.
	name := path.Join(m.cfg.MessagePath, blobName(record.Timestamp))

	resp, _, err := m.client.Repositories.CreateFile(ctx, m.cfg.Owner, m.cfg.Name, name, opts)
	if err != nil {
		return "", &MirrorError{Repo: m.cfg.FullName(), Op: "storing message", Err: err}
	}

	ref := resp.Commit.GetHTMLURL()
	if ref == "" {
		ref = resp.Content.GetHTMLURL()
	}

	return ref, nil
}

// Fetch lists the message directory and parses every blob, newest first.
// Unparseable blobs are skipped with a warning; a missing directory is an
// empty mirror, not an error.
func (m *GitHubMirror) Fetch(ctx context.Context, limit int) ([]model.Message, error) {
	if limit <= 0 {
		return nil, model.NewValidationError("limit must be positive, got %d", limit)
	}

	_, entries, _, err := m.client.Repositories.GetContents(ctx, m.cfg.Owner, m.cfg.Name, m.cfg.MessagePath,
		&github.RepositoryContentGetOptions{Ref: m.cfg.Branch})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}

		return nil, &MirrorError{Repo: m.cfg.FullName(), Op: "listing messages", Err: err}
	}

	var messages []model.Message

	for _, entry := range entries {
		if entry.GetType() != "file" || !strings.HasSuffix(entry.GetName(), ".json") {
			continue
		}

		msg, err := m.fetchBlob(ctx, entry.GetPath())
		if err != nil {
			m.logger.Warn("skipping unreadable message blob",
				slog.String("repo", m.cfg.FullName()),
				slog.String("path", entry.GetPath()),
				slog.String("error", err.Error()),
			)

			continue
		}

		messages = append(messages, *msg)
	}

	sortByTimestampDesc(messages)

	if len(messages) > limit {
		messages = messages[:limit]
	}

	return messages, nil
}

// fetchBlob reads and parses a single message blob.
func (m *GitHubMirror) fetchBlob(ctx context.Context, blobPath string) (*model.Message, error) {
	file, _, _, err := m.client.Repositories.GetContents(ctx, m.cfg.Owner, m.cfg.Name, blobPath,
		&github.RepositoryContentGetOptions{Ref: m.cfg.Branch})
	if err != nil {
		return nil, err
	}

	if file == nil {
		return nil, fmt.Errorf("expected a file at %s", blobPath)
	}

	raw, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding content: %w", err)
	}

	var record blobRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("parsing message blob: %w", err)
	}

	if record.Content == "" || record.Timestamp == "" {
		return nil, fmt.Errorf("message blob missing required fields")
	}

	if record.Author == "" {
		record.Author = model.DefaultAuthor
	}

	return &model.Message{
		Content:   record.Content,
		Author:    record.Author,
		Timestamp: record.Timestamp,
		Source:    m.cfg.FullName(),
		RemoteRef: file.GetHTMLURL(),
	}, nil
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode == http.StatusNotFound
	}

	return false
}

func isAlreadyExists(err error) bool {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode == http.StatusUnprocessableEntity
	}

	return false
}
