// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentLoader: Reads the markdown corpus from disk
//   - PostProcessorPipeline: Splits documents into chunks
//   - EmbeddingService: Turns text into vectors
//   - VectorIndex / VectorIndexFactory: Persists and searches chunk vectors (SQLite)
//   - LLMService: Synthesises answers from retrieved context
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - TranscriptLog: Records question and answer turns. Without it, ask keeps no history.
//   - PromptStore: User-editable prompt templates. Without it, embedded defaults apply.
//   - ModelLister: Implemented by LLM services that can enumerate models.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
