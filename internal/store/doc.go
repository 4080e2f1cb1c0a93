// Package store provides SQLite-backed storage for scene documents.
//
// Each scene is stored under a path key as its JSON document (see
// scene.MarshalDocument). Every save also appends a revision, so the
// history of a path can be listed and older revisions loaded back.
//
// # Critical Patterns
//
// Logical time:
//   - Revisions are numbered by a per-path seq INTEGER, NEVER timestamps
//   - Saving a document identical to the latest revision appends nothing
//
// Deterministic results:
//   - List orders by path, Revisions by seq
//
// All-or-nothing loads:
//   - A document that fails to decode, or names definitions the database
//     does not know, is rejected as a whole
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
