// Package store keeps a local SQLite history of cluster-member snapshots.
//
// Every successful members fetch can be saved as a snapshot: a uuid, the
// wall-clock time it was taken, and the decoded member records verbatim.
// `corro-cli history` lists past snapshots and `members --cached` serves
// the latest one when the corrosion binary is unreachable.
//
// Database configuration:
//   - WAL mode for concurrent reads during writes
//   - synchronous=NORMAL
//   - 5-second busy timeout
//   - foreign keys on (snapshot_members cascade with their snapshot)
package store
