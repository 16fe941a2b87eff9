// Package logs reads the daemon log file for `scrollreel logs`.
//
// Tail returns the last N lines together with the byte offset that follows
// them; Follow polls from an offset and hands new lines to a callback until
// the context ends.
package logs
