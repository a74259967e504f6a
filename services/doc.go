// Package services provides the mint's persistence layer: the spent-secret
// ledger that enforces single-use of notes.
//
// Two implementations are provided: an in-memory store for tests and the
// demo, and a PostgreSQL-backed store for deployments. Both expose the same
// first-spend-wins semantics: MarkSpent succeeds exactly once per secret.
package services
