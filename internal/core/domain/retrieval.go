package domain

import "time"

// DefaultK is the number of chunks retrieved per query.
const DefaultK = 3

// RetrievedChunk is a single retrieval hit.
type RetrievedChunk struct {
	// Chunk is the stored chunk, without its embedding.
	Chunk Chunk `json:"chunk"`

	// Score is the cosine similarity to the query vector, in [-1, 1].
	// Higher is more similar.
	Score float64 `json:"score"`
}

// RetrievalResult is the ordered outcome of one retrieval.
// Chunks are sorted by descending score with ties in insertion order.
type RetrievalResult struct {
	// Query is the natural-language query that was embedded.
	Query string `json:"query"`

	// Chunks holds at most k hits.
	Chunks []RetrievedChunk `json:"chunks"`
}

// Len returns the number of retrieved chunks.
func (r *RetrievalResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Chunks)
}

// Sources returns the distinct source identifiers in first-seen order.
func (r *RetrievalResult) Sources() []string {
	if r == nil {
		return []string{}
	}
	seen := make(map[string]bool, len(r.Chunks))
	sources := make([]string, 0, len(r.Chunks))
	for i := range r.Chunks {
		src := r.Chunks[i].Chunk.Source()
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true
		sources = append(sources, src)
	}
	return sources
}

// Answer is the synthesized response to a query.
type Answer struct {
	// Query is the question that was asked.
	Query string `json:"query"`

	// Text is the language-model output, verbatim.
	Text string `json:"answer"`

	// Sources lists distinct source identifiers in first-seen retrieval order.
	Sources []string `json:"sources"`

	// Retrieved holds the chunks used as grounding context.
	Retrieved []RetrievedChunk `json:"retrieved,omitempty"`
}

// IndexStats summarises the persisted vector index.
type IndexStats struct {
	// Location is the on-disk path of the index.
	Location string `json:"location"`

	// Count is the number of indexed records.
	Count int `json:"count"`

	// Sources is the number of distinct source identifiers.
	Sources int `json:"sources"`

	// EmbeddingModel is the model the index was built with.
	EmbeddingModel string `json:"embedding_model"`

	// Dimensions is the vector size the index was built with.
	Dimensions int `json:"dimensions"`

	// UpdatedAt is when records were last added.
	UpdatedAt time.Time `json:"updated_at"`
}

// IngestStats reports the outcome of one ingestion run.
type IngestStats struct {
	// Documents is the number of markdown files loaded.
	Documents int `json:"documents"`

	// Chunks is the number of chunks produced.
	Chunks int `json:"chunks"`

	// Added is the number of records appended to the index.
	Added int `json:"added"`

	// Skipped is the number of chunks already present in the index.
	Skipped int `json:"skipped"`

	// Rebuilt is true when the index was cleared first.
	Rebuilt bool `json:"rebuilt"`

	// Duration is the wall-clock time of the run.
	Duration time.Duration `json:"duration"`
}
