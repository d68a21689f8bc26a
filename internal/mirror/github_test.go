package mirror

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/inovacc/gitboard/internal/model"

	"github.com/google/go-github/v82/github"
	"github.com/stretchr/testify/require"
)

// fakeContentsAPI emulates the slice of the GitHub contents API the mirror
// uses: directory listing, file reads, and file creation.
type fakeContentsAPI struct {
	mu      sync.Mutex
	files   map[string]string // repo path -> raw content
	creates int
}

func newFakeContentsAPI() *fakeContentsAPI {
	return &fakeContentsAPI{files: map[string]string{}}
}

func (f *fakeContentsAPI) put(path, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = content
}

func (f *fakeContentsAPI) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates
}

func (f *fakeContentsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const prefix = "/repos/octo/board/contents/"

	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}

	contentPath := strings.TrimPrefix(r.URL.Path, prefix)

	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		f.handleGet(w, contentPath)
	case http.MethodPut:
		f.handlePut(w, r, contentPath)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeContentsAPI) handleGet(w http.ResponseWriter, contentPath string) {
	if raw, ok := f.files[contentPath]; ok {
		writeBody(w, map[string]any{
			"type":     "file",
			"name":     contentPath[strings.LastIndex(contentPath, "/")+1:],
			"path":     contentPath,
			"content":  base64.StdEncoding.EncodeToString([]byte(raw)),
			"encoding": "base64",
			"html_url": "https://example.com/blob/" + contentPath,
		})

		return
	}

	var entries []map[string]any

	for p := range f.files {
		if strings.HasPrefix(p, contentPath+"/") {
			entries = append(entries, map[string]any{
				"type":     "file",
				"name":     p[strings.LastIndex(p, "/")+1:],
				"path":     p,
				"html_url": "https://example.com/blob/" + p,
			})
		}
	}

	if len(entries) == 0 {
		w.WriteHeader(http.StatusNotFound)
		writeBody(w, map[string]string{"message": "Not Found"})

		return
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i]["path"].(string) < entries[j]["path"].(string)
	})

	writeBody(w, entries)
}

func (f *fakeContentsAPI) handlePut(w http.ResponseWriter, r *http.Request, contentPath string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var req struct {
		Content string `json:"content"`
	}

	if err := json.Unmarshal(body, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	f.files[contentPath] = string(raw)
	f.creates++

	writeBody(w, map[string]any{
		"content": map[string]any{
			"path":     contentPath,
			"html_url": "https://example.com/blob/" + contentPath,
		},
		"commit": map[string]any{
			"html_url": fmt.Sprintf("https://example.com/commit/%d", f.creates),
		},
	})
}

func writeBody(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestMirror(t *testing.T, api *fakeContentsAPI) *GitHubMirror {
	t.Helper()

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client := github.NewClient(nil)

	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)

	client.BaseURL = base
	client.UploadURL = base

	cfg := model.RepositoryConfig{
		Owner:       "octo",
		Name:        "board",
		Branch:      "main",
		MessagePath: "messages",
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewGitHubMirrorWithClient(client, cfg, logger)
}

func seedBlob(api *fakeContentsAPI, timestamp, content, author string) {
	record := blobRecord{Content: content, Author: author, Timestamp: timestamp}
	raw, _ := json.MarshalIndent(record, "", "  ")
	api.put("messages/"+blobName(timestamp), string(raw))
}

func TestEnsureReadyBootstrapsOnce(t *testing.T) {
	api := newFakeContentsAPI()
	m := newTestMirror(t, api)
	ctx := context.Background()

	require.NoError(t, m.EnsureReady(ctx))
	require.Equal(t, 1, api.createCount())
	require.Contains(t, api.files, "messages/"+placeholderFile)

	// The directory exists now, so nothing further is created.
	require.NoError(t, m.EnsureReady(ctx))
	require.Equal(t, 1, api.createCount())
}

func TestFetchMissingDirectory(t *testing.T) {
	m := newTestMirror(t, newFakeContentsAPI())

	messages, err := m.Fetch(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestFetchInvalidLimit(t *testing.T) {
	m := newTestMirror(t, newFakeContentsAPI())

	_, err := m.Fetch(context.Background(), 0)
	require.True(t, model.IsValidation(err))
}

func TestStoreAndFetch(t *testing.T) {
	api := newFakeContentsAPI()
	m := newTestMirror(t, api)
	ctx := context.Background()

	ref, err := m.Store(ctx, "hello", "Bob")
	require.NoError(t, err)
	require.NotEmpty(t, ref)

	// One create for the bootstrap placeholder, one for the blob.
	require.Equal(t, 2, api.createCount())

	var blobPath string

	for p := range api.files {
		if strings.HasSuffix(p, ".json") {
			blobPath = p
		}
	}

	require.NotEmpty(t, blobPath)
	require.NotContains(t, blobPath, ":")

	messages, err := m.Fetch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	got := messages[0]
	require.Equal(t, "hello", got.Content)
	require.Equal(t, "Bob", got.Author)
	require.Equal(t, "octo/board", got.Source)
	require.NotEmpty(t, got.Timestamp)
	require.NotEmpty(t, got.RemoteRef)
}

func TestStoreDefaultAuthor(t *testing.T) {
	api := newFakeContentsAPI()
	m := newTestMirror(t, api)

	_, err := m.Store(context.Background(), "hello", "")
	require.NoError(t, err)

	messages, err := m.Fetch(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, model.DefaultAuthor, messages[0].Author)
}

func TestFetchSkipsUnparseableBlobs(t *testing.T) {
	api := newFakeContentsAPI()
	api.put("messages/.gitkeep", "")
	api.put("messages/notes.txt", "not a message")
	api.put("messages/2024-03-01T10-00-00.000000000Z.json", "{broken")
	api.put("messages/2024-03-02T10-00-00.000000000Z.json", `{"author":"Bob"}`)
	seedBlob(api, "2024-03-03T10:00:00.000000000Z", "good one", "Ann")
	seedBlob(api, "2024-03-04T10:00:00.000000000Z", "good two", "Bob")

	m := newTestMirror(t, api)

	messages, err := m.Fetch(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "good two", messages[0].Content)
	require.Equal(t, "good one", messages[1].Content)
}

func TestFetchOrderAndTruncation(t *testing.T) {
	api := newFakeContentsAPI()
	seedBlob(api, "2024-03-01T10:00:00.000000000Z", "oldest", "Ann")
	seedBlob(api, "2024-03-03T10:00:00.000000000Z", "newest", "Ann")
	seedBlob(api, "2024-03-02T10:00:00.000000000Z", "middle", "Ann")

	m := newTestMirror(t, api)

	messages, err := m.Fetch(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "newest", messages[0].Content)
	require.Equal(t, "middle", messages[1].Content)
}

func TestBlobName(t *testing.T) {
	got := blobName("2024-03-01T10:00:00.000000000Z")
	want := "2024-03-01T10-00-00.000000000Z.json"

	if got != want {
		t.Errorf("blobName = %q, want %q", got, want)
	}
}
