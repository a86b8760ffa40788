package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
)

// Ensure TranscriptLog implements the interface.
var _ driven.TranscriptLog = (*TranscriptLog)(nil)

// maxTurnLine bounds a single JSON line including its newline; answers are a
// few KB at most. Append and Turns share it so every written line reads back.
const maxTurnLine = 1 << 20

// TranscriptLog appends turns to a JSON-lines file.
// Existing lines are never rewritten.
type TranscriptLog struct {
	mu   sync.Mutex
	path string
}

// NewTranscriptLog creates a transcript at path.
// If path is empty, defaults to ~/.chatdocs/history.jsonl.
func NewTranscriptLog(path string) (*TranscriptLog, error) {
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "history.jsonl")
	}
	return &TranscriptLog{path: path}, nil
}

// Path returns the transcript file location.
func (t *TranscriptLog) Path() string {
	return t.path
}

// Append writes one turn as a single line.
// A turn too large to be read back is rejected with domain.ErrInvalidInput.
func (t *TranscriptLog) Append(_ context.Context, turn domain.Turn) error {
	line, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}
	if len(line) >= maxTurnLine {
		return fmt.Errorf("%w: turn is %d bytes, transcript lines are limited to %d",
			domain.ErrInvalidInput, len(line), maxTurnLine-1)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(t.path), 0700); err != nil {
		return fmt.Errorf("create transcript directory: %w", err)
	}
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// Turns reads every turn, oldest first. A missing file is an empty transcript.
func (t *TranscriptLog) Turns(ctx context.Context) ([]domain.Turn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Turn{}, nil
		}
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	turns := make([]domain.Turn, 0)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxTurnLine)
	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lineNo++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var turn domain.Turn
		if err := json.Unmarshal(scanner.Bytes(), &turn); err != nil {
			return nil, fmt.Errorf("parse transcript line %d: %w", lineNo, err)
		}
		turns = append(turns, turn)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return turns, nil
}
