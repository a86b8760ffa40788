// Package memory provides in-memory implementations of driven ports.
// They back tests and the MCP server's per-process transcript, and serve
// as a throwaway vector index when the persist dir is ":memory:".
package memory

// Location is the persist dir value that selects the in-memory index.
const Location = ":memory:"
