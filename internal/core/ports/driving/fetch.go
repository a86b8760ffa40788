package driving

import "context"

// FetchRequest identifies a repository whose markdown should be downloaded.
type FetchRequest struct {
	// Owner is the repository owner (e.g. "LoopKit").
	Owner string

	// Repo is the repository name (e.g. "loopdocs").
	Repo string

	// Ref is a branch, tag or commit. Empty selects the default branch.
	Ref string

	// Prefix limits the fetch to files below this repository directory.
	// The prefix is stripped from written paths. Empty fetches the whole tree.
	Prefix string

	// Dest is the local directory to write into.
	Dest string

	// Progress, when set, is called after each file is written.
	Progress func(done, total int)
}

// FetchResult summarises a fetch.
type FetchResult struct {
	// Files is the number of files written.
	Files int `json:"files"`

	// Unchanged is the number of files already up to date locally.
	Unchanged int `json:"unchanged"`

	// Bytes is the total size written.
	Bytes int64 `json:"bytes"`

	// Ref is the resolved branch or commit.
	Ref string `json:"ref"`
}

// CorpusFetcher downloads a documentation corpus.
type CorpusFetcher interface {
	// Fetch writes every markdown file of the repository below Dest.
	Fetch(ctx context.Context, req FetchRequest) (*FetchResult, error)
}
