package mcp

import (
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driving"
)

// Ports aggregates the services required by the MCP server.
type Ports struct {
	// Retriever finds relevant chunks. Required.
	Retriever driving.RetrieverService

	// Ask answers questions. The ask tool is only registered when set.
	Ask driving.AskService

	// Index exposes index statistics.
	Index driving.IndexService

	// Transcript records the session's turns. It lives as long as the server.
	Transcript driven.TranscriptLog
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retriever == nil {
		return ErrMissingRetriever
	}
	return nil
}
