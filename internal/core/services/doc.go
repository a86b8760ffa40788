// Package services implements the driving ports: ingestion, retrieval,
// answer synthesis and index inspection.
//
// Services depend only on driven port interfaces. Providers, storage and
// loaders are injected by the composition root.
package services
