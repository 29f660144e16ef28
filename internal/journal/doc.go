// Package journal persists a history of render runs in SQLite.
//
// Only the coordinating process writes to the journal: one row per run when it
// starts, one row per worker once that worker has exited, and a final status
// update when the run completes. Workers never open the database, so the
// process layer keeps its no-shared-state model. The store uses WAL mode and
// retries SQLITE_BUSY so that `mandelmovie runs` can read while a render is in
// progress.
package journal
