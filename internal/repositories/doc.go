// Package repositories implements SQLite persistence for the task aggregate.
//
// Tasks are stored one-document-per-row: the full aggregate is serialized to
// JSON in the document column, so any mutation — batch media deletes
// included — commits atomically as a single row write. The status and
// archived columns mirror aggregate fields for indexed filtering; the
// version column backs optimistic concurrency (updates match on the loaded
// version and fail with a conflict when another writer got there first).
//
// Sequence numbers provide stable, human-readable ordering (e.g., task #42)
// independent of UUIDs and creation timestamps. The [NextSequence] function
// atomically increments per-table sequence counters in dedicated sequence
// tables.
package repositories
