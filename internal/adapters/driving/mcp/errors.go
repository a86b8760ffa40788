// Package mcp provides an MCP (Model Context Protocol) server adapter for chatdocs.
// It lets AI assistants retrieve documentation chunks and ask grounded questions.
package mcp

import "errors"

// ErrMissingRetriever is returned when the retriever service is not provided.
var ErrMissingRetriever = errors.New("mcp: retriever service is required")
