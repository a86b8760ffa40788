package driven

import (
	"context"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
)

// TranscriptLog is an append-only record of question and answer turns.
// It is owned by the caller; services never keep hidden session state.
type TranscriptLog interface {
	// Append records a completed turn.
	Append(ctx context.Context, turn domain.Turn) error

	// Turns returns every recorded turn, oldest first.
	Turns(ctx context.Context) ([]domain.Turn, error)
}
