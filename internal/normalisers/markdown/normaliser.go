package markdown

import (
	"context"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
	"github.com/custodia-labs/chatdocs/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/custodia-labs/chatdocs/document"))

// Normaliser turns markdown files into documents.
// Content is kept byte-for-byte so that chunks stay exact substrings of the file,
// except that invalid UTF-8 sequences are replaced with U+FFFD.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Normalise converts a raw markdown file to a document.
func (n *Normaliser) Normalise(_ context.Context, raw *driven.RawFile) (*domain.Document, error) {
	if raw == nil || raw.SourceID == "" {
		return nil, domain.ErrInvalidInput
	}

	content := string(raw.Content)
	if !utf8.ValidString(content) {
		logger.Warn("%s is not valid UTF-8; replacing invalid bytes", raw.SourceID)
		content = strings.ToValidUTF8(content, string(utf8.RuneError))
	}

	return &domain.Document{
		ID:       DocumentID(raw.SourceID),
		SourceID: raw.SourceID,
		URI:      raw.URI,
		Title:    extractMarkdownTitle(content, raw.SourceID),
		Content:  content,
		Metadata: map[string]any{
			domain.MetadataSource: raw.SourceID,
			"format":              "markdown",
		},
		ModifiedAt: raw.ModifiedAt,
	}, nil
}

// DocumentID derives the stable document identifier for a source path.
func DocumentID(sourceID string) string {
	return uuid.NewSHA1(namespace, []byte(sourceID)).String()
}

// extractMarkdownTitle returns the first H1 heading, or the file name without extension.
// Headings inside fenced code blocks are ignored.
func extractMarkdownTitle(content, sourceID string) string {
	inFence := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if strings.HasPrefix(line, "# ") {
			if title := strings.TrimSpace(strings.TrimPrefix(line, "#")); title != "" {
				return title
			}
		}
	}

	filename := path.Base(sourceID)
	filename = strings.TrimSuffix(filename, path.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
