// Package store persists animations and their frame lists in SQLite.
//
// The Store owns the animations table (title, settings, and derived frame
// metadata) and the frames table keyed by (animation_id, ordinal). Every frame
// mutation runs in a transaction that recomputes frame_count from the frames
// table, so the cached count cannot drift from the list. Frame lists are
// always read ordinal-ascending.
//
// The store never touches frame files. Callers pair it with the blobstore and
// decide which files to remove.
//
// Schema changes bump the version in schema.go; users delete the database to
// adopt the new schema.
package store
