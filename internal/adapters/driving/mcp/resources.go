package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for chatdocs resources.
	uriScheme = "chatdocs://"

	// StatsURI is the index statistics resource.
	StatsURI = uriScheme + "index/stats"

	// TranscriptURI is the session transcript resource.
	TranscriptURI = uriScheme + "transcript"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         StatsURI,
		Name:        "index-stats",
		Description: "Record count, source count and embedding model of the vector index",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	s.server.AddResource(&mcp.Resource{
		URI:         TranscriptURI,
		Name:        "transcript",
		Description: "Questions answered in this session, oldest first",
		MIMEType:    "application/json",
	}, s.handleTranscriptResource)
}

// handleStatsResource returns the index statistics.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Index == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	stats, err := s.ports.Index.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("index stats: %w", err)
	}

	return jsonResource(req.Params.URI, stats)
}

// handleTranscriptResource returns every turn recorded by the ask tool.
func (s *Server) handleTranscriptResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Transcript == nil {
		return jsonResource(req.Params.URI, []any{})
	}

	turns, err := s.ports.Transcript.Turns(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}

	return jsonResource(req.Params.URI, turns)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
