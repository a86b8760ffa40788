package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chatdocs/internal/core/ports/driving"
)

type fakeRepo struct {
	branch string
	files  map[string]string
}

type fakeGitHub struct {
	server    *httptest.Server
	blobCalls atomic.Int32
}

func newFakeGitHub(t *testing.T, repo fakeRepo) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{}

	blobs := make(map[string]string, len(repo.files))
	tree := []map[string]any{
		{"path": "docs", "type": "tree", "sha": "dir1"},
		{"path": "docs/img/logo.png", "type": "blob", "sha": "png1"},
	}
	for p, content := range repo.files {
		sha := BlobSHA([]byte(content))
		blobs[sha] = content
		tree = append(tree, map[string]any{"path": p, "type": "blob", "sha": sha, "size": len(content)})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/LoopKit/loopdocs", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"name": "loopdocs", "default_branch": repo.branch})
	})
	mux.HandleFunc("GET /repos/LoopKit/loopdocs/git/trees/{ref}", func(w http.ResponseWriter, r *http.Request) {
		ref := r.PathValue("ref")
		if ref != repo.branch && ref != "v1.0" {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		w.Header().Set(HeaderRateRemaining, "4999")
		w.Header().Set(HeaderRateLimit, "5000")
		writeJSON(w, map[string]any{"sha": "tree1", "truncated": false, "tree": tree})
	})
	mux.HandleFunc("GET /repos/LoopKit/loopdocs/git/blobs/{sha}", func(w http.ResponseWriter, r *http.Request) {
		f.blobCalls.Add(1)
		content, ok := blobs[r.PathValue("sha")]
		if !ok {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{
			"sha":      r.PathValue("sha"),
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(content)),
		})
	})
	mux.HandleFunc("GET /repos/LoopKit/missing", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestFetcher(t *testing.T, f *fakeGitHub) *Fetcher {
	t.Helper()
	client, err := NewClient(context.Background(), ClientConfig{
		BaseURL: f.server.URL,
		Rate:    1000,
	})
	require.NoError(t, err)
	return NewFetcher(client)
}

var loopdocs = fakeRepo{
	branch: "main",
	files: map[string]string{
		"docs/index.md":              "# Loop\n\nWelcome.",
		"docs/build/step-1.md":       "# Step 1\n\nGet a Mac.",
		"docs/faqs/loop-faqs.md":     "# FAQs",
		"README.md":                  "# Repo readme",
		"docs/assets/styles.css":     "body {}",
		"docs/translations/index.md": "# Traduction",
	},
}

func TestFetcher_Fetch(t *testing.T) {
	gh := newFakeGitHub(t, loopdocs)
	dest := t.TempDir()

	var progress []int
	result, err := newTestFetcher(t, gh).Fetch(context.Background(), driving.FetchRequest{
		Prefix:   "docs",
		Dest:     dest,
		Progress: func(done, _ int) { progress = append(progress, done) },
	})

	require.NoError(t, err)
	assert.Equal(t, "main", result.Ref)
	assert.Equal(t, 4, result.Files)
	assert.Equal(t, 0, result.Unchanged)
	assert.Equal(t, []int{1, 2, 3, 4}, progress)

	data, err := os.ReadFile(filepath.Join(dest, "build", "step-1.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Step 1\n\nGet a Mac.", string(data))

	assert.FileExists(t, filepath.Join(dest, "index.md"))
	assert.NoFileExists(t, filepath.Join(dest, "README.md"))
	assert.NoFileExists(t, filepath.Join(dest, "assets", "styles.css"))
	assert.NoFileExists(t, filepath.Join(dest, "img", "logo.png"))
}

func TestFetcher_Fetch_SkipsUnchanged(t *testing.T) {
	gh := newFakeGitHub(t, loopdocs)
	dest := t.TempDir()
	fetcher := newTestFetcher(t, gh)

	_, err := fetcher.Fetch(context.Background(), driving.FetchRequest{Prefix: "docs", Dest: dest})
	require.NoError(t, err)
	require.Equal(t, int32(4), gh.blobCalls.Load())

	require.NoError(t, os.WriteFile(filepath.Join(dest, "index.md"), []byte("local edit"), 0o644))

	result, err := fetcher.Fetch(context.Background(), driving.FetchRequest{Prefix: "docs", Dest: dest})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Files)
	assert.Equal(t, 3, result.Unchanged)
	assert.Equal(t, int32(5), gh.blobCalls.Load())
}

func TestFetcher_Fetch_WholeTree(t *testing.T) {
	gh := newFakeGitHub(t, loopdocs)
	dest := t.TempDir()

	result, err := newTestFetcher(t, gh).Fetch(context.Background(), driving.FetchRequest{
		Ref:  "v1.0",
		Dest: dest,
	})

	require.NoError(t, err)
	assert.Equal(t, "v1.0", result.Ref)
	assert.Equal(t, 5, result.Files)
	assert.FileExists(t, filepath.Join(dest, "README.md"))
	assert.FileExists(t, filepath.Join(dest, "docs", "index.md"))
}

func TestFetcher_Fetch_RefNotFound(t *testing.T) {
	gh := newFakeGitHub(t, loopdocs)

	_, err := newTestFetcher(t, gh).Fetch(context.Background(), driving.FetchRequest{
		Ref:  "no-such-branch",
		Dest: t.TempDir(),
	})

	assert.ErrorIs(t, err, ErrRefNotFound)
	assert.True(t, IsNotFound(err))
}

func TestFetcher_Fetch_RepoNotFound(t *testing.T) {
	gh := newFakeGitHub(t, loopdocs)

	_, err := newTestFetcher(t, gh).Fetch(context.Background(), driving.FetchRequest{
		Repo: "missing",
		Dest: t.TempDir(),
	})

	assert.ErrorIs(t, err, ErrRepoNotFound)
}

func TestFetcher_Fetch_EmptyDest(t *testing.T) {
	gh := newFakeGitHub(t, loopdocs)

	_, err := newTestFetcher(t, gh).Fetch(context.Background(), driving.FetchRequest{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "destination is empty")
}

func TestSafeJoin(t *testing.T) {
	got, err := safeJoin("/dest", "build/step.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/dest", "build", "step.md"), got)

	for _, bad := range []string{"", "/etc/passwd", "../escape.md", "a/../../b.md"} {
		_, err := safeJoin("/dest", bad)
		assert.ErrorIs(t, err, ErrUnsafePath, bad)
	}
}

func TestStripPrefix(t *testing.T) {
	assert.Equal(t, "a/b.md", stripPrefix("docs/a/b.md", "docs"))
	assert.Equal(t, "a/b.md", stripPrefix("docs/a/b.md", "/docs/"))
	assert.Equal(t, "docs/a/b.md", stripPrefix("docs/a/b.md", ""))
}

func TestIsMarkdown(t *testing.T) {
	assert.True(t, isMarkdown("docs/a.md"))
	assert.True(t, isMarkdown("docs/A.MD"))
	assert.True(t, isMarkdown("notes.markdown"))
	assert.False(t, isMarkdown("docs/a.png"))
	assert.False(t, isMarkdown("Makefile"))
}

func TestBlobSHA(t *testing.T) {
	// git hash-object of an empty file and of "hello\n".
	assert.Equal(t, "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391", BlobSHA(nil))
	assert.Equal(t, "ce013625030ba8dba906f756967f9e9ca394464a", BlobSHA([]byte("hello\n")))
}
