// Package checkpoint persists crawl progress so an interrupted crawl can be
// resumed.
//
// A checkpoint is a single snapshot of two sets: the prefixes already
// visited and the distinct suggestions found so far. Every Save replaces
// the previous snapshot; the last completed Save wins.
//
// Two backends implement Store:
//   - FileStore: a JSON document {"visited": [...], "results": [...]},
//     gzip-compressed when the path ends in ".gz". Writes go to a temporary
//     file that is renamed over the target.
//   - SQLiteStore: two tables in a SQLite database (modernc.org/sqlite).
//     Both sets only grow, so each Save inserts the entries the database
//     does not have yet.
//
// Loading a checkpoint that exists but cannot be decoded fails with
// ErrCorruptCheckpoint. Callers must treat that as fatal instead of
// silently starting from an empty state.
package checkpoint
