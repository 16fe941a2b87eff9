// Package ingest turns validated uploads into stored frames.
//
// A Pipeline runs validation, ordinal parsing, blob persistence, dimension
// probing, and the store update for one file at a time. Calls that touch the
// same animation are serialized so frame_count and the frame list always
// agree. Best-effort steps that fail (probing, removing a replaced file) mark
// the result Degraded instead of failing the request.
package ingest
