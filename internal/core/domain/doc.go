// Package domain defines the core entities of the chatdocs retrieval pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: raw markdown text plus its source identifier
//   - Chunk: a bounded window of a document, the unit of embedding and retrieval
//   - RetrievalResult: the ranked chunks returned for a query
//   - Answer: synthesized text plus the distinct sources it was grounded on
//   - Turn: one question/answer exchange in a session transcript
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
