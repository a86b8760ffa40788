package github

import (
	"context"
	"crypto/sha1" //nolint:gosec // git object ids are SHA-1
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/chatdocs/internal/core/ports/driving"
	"github.com/custodia-labs/chatdocs/internal/logger"
)

// Default corpus location.
const (
	DefaultOwner  = "LoopKit"
	DefaultRepo   = "loopdocs"
	DefaultPrefix = "docs"
)

// Verify interface compliance.
var _ driving.CorpusFetcher = (*Fetcher)(nil)

// Fetcher downloads the markdown files of a repository.
type Fetcher struct {
	client *Client
}

// NewFetcher creates a fetcher using client.
func NewFetcher(client *Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch writes every markdown blob of the repository below req.Dest.
func (f *Fetcher) Fetch(ctx context.Context, req driving.FetchRequest) (*driving.FetchResult, error) {
	owner, repo := req.Owner, req.Repo
	if owner == "" {
		owner = DefaultOwner
	}
	if repo == "" {
		repo = DefaultRepo
	}
	if req.Dest == "" {
		return nil, fmt.Errorf("fetch %s/%s: destination is empty", owner, repo)
	}

	ref := req.Ref
	if ref == "" {
		repository, err := f.client.GetRepository(ctx, owner, repo)
		if err != nil {
			return nil, err
		}
		ref = repository.GetDefaultBranch()
	}

	logger.Section("Fetch")
	logger.Debug("fetching %s/%s@%s into %s", owner, repo, ref, req.Dest)

	tree, err := f.client.GetTree(ctx, owner, repo, ref)
	if err != nil {
		return nil, err
	}
	if tree.GetTruncated() {
		logger.Warn("tree for %s/%s@%s is truncated; some files will be missing", owner, repo, ref)
	}

	entries := markdownEntries(tree.Entries, req.Prefix)
	result := &driving.FetchResult{Ref: ref}

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		rel := stripPrefix(entry.GetPath(), req.Prefix)
		target, err := safeJoin(req.Dest, rel)
		if err != nil {
			return result, err
		}

		if sameBlob(target, entry.GetSHA()) {
			result.Unchanged++
		} else {
			content, err := f.fetchBlobContent(ctx, owner, repo, entry.GetSHA())
			if err != nil {
				return result, fmt.Errorf("fetch %s: %w", entry.GetPath(), err)
			}
			if err := writeFile(target, content); err != nil {
				return result, err
			}
			result.Files++
			result.Bytes += int64(len(content))
		}

		if req.Progress != nil {
			req.Progress(i+1, len(entries))
		}
	}

	logger.Debug("fetched %d files (%d unchanged)", result.Files, result.Unchanged)
	return result, nil
}

// fetchBlobContent fetches the content of a blob and decodes it.
func (f *Fetcher) fetchBlobContent(ctx context.Context, owner, repo, sha string) ([]byte, error) {
	blob, err := f.client.GetBlob(ctx, owner, repo, sha)
	if err != nil {
		return nil, err
	}

	if blob.GetEncoding() == "base64" {
		content := strings.ReplaceAll(blob.GetContent(), "\n", "")
		return base64.StdEncoding.DecodeString(content)
	}
	return []byte(blob.GetContent()), nil
}

// markdownEntries returns the markdown blobs below prefix.
func markdownEntries(entries []*gh.TreeEntry, prefix string) []*gh.TreeEntry {
	prefix = strings.Trim(prefix, "/")
	out := make([]*gh.TreeEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.GetType() != "blob" {
			continue
		}
		p := entry.GetPath()
		if !isMarkdown(p) {
			continue
		}
		if prefix != "" && !strings.HasPrefix(p, prefix+"/") {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func isMarkdown(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}

func stripPrefix(p, prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return p
	}
	return strings.TrimPrefix(p, prefix+"/")
}

// safeJoin joins a slash-separated repository path onto dest, refusing
// paths that would escape it.
func safeJoin(dest, rel string) (string, error) {
	if rel == "" || path.IsAbs(rel) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, rel)
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrUnsafePath, rel)
		}
	}
	return filepath.Join(dest, filepath.FromSlash(rel)), nil
}

func writeFile(target string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

// sameBlob reports whether the file at target has the given git blob SHA.
func sameBlob(target, sha string) bool {
	if sha == "" {
		return false
	}
	content, err := os.ReadFile(target)
	if err != nil {
		return false
	}
	return BlobSHA(content) == sha
}

// BlobSHA returns the git object id of content stored as a blob.
func BlobSHA(content []byte) string {
	h := sha1.New() //nolint:gosec // git object ids are SHA-1
	h.Write([]byte("blob " + strconv.Itoa(len(content)) + "\x00"))
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}
