package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
)

// Ensure TranscriptLog implements the interface.
var _ driven.TranscriptLog = (*TranscriptLog)(nil)

// TranscriptLog keeps turns in memory for the life of the process.
type TranscriptLog struct {
	mu    sync.RWMutex
	turns []domain.Turn
}

// NewTranscriptLog creates an empty transcript.
func NewTranscriptLog() *TranscriptLog {
	return &TranscriptLog{}
}

// Append records a turn.
func (t *TranscriptLog) Append(_ context.Context, turn domain.Turn) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = append(t.turns, turn)
	return nil
}

// Turns returns a copy of every turn, oldest first.
func (t *TranscriptLog) Turns(_ context.Context) ([]domain.Turn, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.Turn, len(t.turns))
	copy(out, t.turns)
	return out, nil
}
