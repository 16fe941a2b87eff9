// Package frames holds the data model shared by ingestion, storage, and
// playback: frame entries, the ordinal-sorted frame list, animation settings,
// and the rules that recover a frame ordinal from an uploaded file name.
//
// Everything here is pure. Storage and transport live in their own packages
// and exchange these types.
package frames
