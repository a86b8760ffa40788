package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the question or keywords to look up in the documentation"`
	K     int    `json:"k,omitempty" jsonschema:"number of chunks to return (default from settings)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Query  string        `json:"query"`
	Chunks []ChunkOutput `json:"chunks"`
	Count  int           `json:"count"`
}

// ChunkOutput is a single retrieved chunk.
type ChunkOutput struct {
	Source   string  `json:"source"`
	Position int     `json:"position"`
	Score    float64 `json:"score"`
	Content  string  `json:"content"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query string `json:"query" jsonschema:"the question to answer from the documentation"`
	K     int    `json:"k,omitempty" jsonschema:"number of chunks used as context (default from settings)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Find the documentation chunks most relevant to a query, best first",
	}, s.handleRetrieve)

	if s.ports.Ask != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question using only the documentation, citing source files",
		}, s.handleAsk)
	}
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	result, err := s.ports.Retriever.Retrieve(ctx, input.Query, input.K)
	if err != nil {
		return nil, RetrieveOutput{}, fmt.Errorf("retrieve: %w", err)
	}

	output := RetrieveOutput{
		Query:  result.Query,
		Chunks: make([]ChunkOutput, len(result.Chunks)),
		Count:  result.Len(),
	}
	for i := range result.Chunks {
		output.Chunks[i] = toChunkOutput(result.Chunks[i])
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation. Successful turns are recorded
// in the server's transcript.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Ask.Ask(ctx, input.Query, input.K, s.ports.Transcript)
	if err != nil {
		return nil, AskOutput{}, fmt.Errorf("ask: %w", err)
	}

	return nil, AskOutput{
		Answer:  answer.Text,
		Sources: answer.Sources,
	}, nil
}

func toChunkOutput(rc domain.RetrievedChunk) ChunkOutput {
	return ChunkOutput{
		Source:   rc.Chunk.Source(),
		Position: rc.Chunk.Position,
		Score:    rc.Score,
		Content:  rc.Chunk.Content,
	}
}
