package driving

import (
	"context"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
)

// RetrieverService finds the chunks most relevant to a query.
type RetrieverService interface {
	// Retrieve embeds the query and returns up to k chunks, best first.
	// k <= 0 selects the configured default.
	Retrieve(ctx context.Context, query string, k int) (*domain.RetrievalResult, error)
}

// AnswerService synthesises an answer from retrieved context.
type AnswerService interface {
	// Answer sends the query and retrieved chunk texts to the language model.
	// The model output is returned verbatim with the distinct cited sources.
	Answer(ctx context.Context, query string, retrieved *domain.RetrievalResult) (*domain.Answer, error)
}

// AskService runs the full question answering pipeline.
type AskService interface {
	// Ask retrieves, answers and, when transcript is non-nil, appends the turn.
	// A failed ask appends nothing.
	Ask(ctx context.Context, query string, k int, transcript TranscriptRecorder) (*domain.Answer, error)
}

// TranscriptRecorder is the subset of a transcript log needed by Ask.
type TranscriptRecorder interface {
	Append(ctx context.Context, turn domain.Turn) error
}
